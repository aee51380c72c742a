package usecase

import (
	"context"
	"strings"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/email"
	"placement-backend/pkg/logger"

	"github.com/google/uuid"
)

// Mailer sends notification emails.
type Mailer interface {
	IsConfigured() bool
	SendNotification(to string, data email.NotificationEmailData) error
}

type notificationUsecase struct {
	repo     domain.NotificationRepository
	profiles domain.ProfileRepository
	settings domain.SettingsRepository
	mailer   Mailer
	activity domain.ActivityRecorder
	events   domain.EventPublisher
	now      func() time.Time
}

func NewNotificationUsecase(
	repo domain.NotificationRepository,
	profiles domain.ProfileRepository,
	settings domain.SettingsRepository,
	mailer Mailer,
	activity domain.ActivityRecorder,
	events domain.EventPublisher,
) domain.NotificationUsecase {
	return &notificationUsecase{
		repo:     repo,
		profiles: profiles,
		settings: settings,
		mailer:   mailer,
		activity: activity,
		events:   events,
		now:      time.Now,
	}
}

func validNotificationType(t string) bool {
	switch t {
	case domain.NotificationInfo, domain.NotificationSuccess, domain.NotificationWarning, domain.NotificationError:
		return true
	}
	return false
}

func checkNotificationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.BadRequest("Invalid notification id")
	}
	return nil
}

// publishTo delivers an event only to one profile's subscribers.
func (u *notificationUsecase) publishTo(ctx context.Context, profileID, typ string, record any, oldID string) {
	publishScoped(ctx, u.events, eventScope{audience: []string{profileID}}, domain.TableNotifications, typ, record, oldID)
}

func (u *notificationUsecase) List(ctx context.Context, actor domain.Actor, unreadOnly bool, page domain.Page) (*domain.PaginatedResult[domain.Notification], error) {
	page = page.Normalize()
	items, total, err := u.repo.List(ctx, actor.ID, unreadOnly, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(items, total, page), nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	return u.repo.UnreadCount(ctx, actor.ID)
}

func (u *notificationUsecase) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	if err := checkNotificationID(id); err != nil {
		return err
	}
	if err := u.repo.MarkRead(ctx, actor.ID, id); err != nil {
		return notFound(err, "Notification")
	}
	u.publishTo(ctx, actor.ID, domain.EventUpdate, map[string]any{"id": id, "is_read": true}, "")
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	n, err := u.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.publishTo(ctx, actor.ID, domain.EventUpdate, map[string]any{"all_read": true}, "")
	}
	return n, nil
}

func (u *notificationUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := checkNotificationID(id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, actor.ID, id); err != nil {
		return notFound(err, "Notification")
	}
	u.publishTo(ctx, actor.ID, domain.EventDelete, nil, id)
	return nil
}

func (u *notificationUsecase) DeleteAll(ctx context.Context, actor domain.Actor) (int64, error) {
	n, err := u.repo.DeleteAll(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.publishTo(ctx, actor.ID, domain.EventDelete, nil, "*")
	}
	return n, nil
}

// Notify stores a notification for one profile, pushes it to their stream and emails them when mail is configured.
func (u *notificationUsecase) Notify(ctx context.Context, profileID, typ, title, message string, link *string) error {
	if typ == "" {
		typ = domain.NotificationInfo
	}
	if !validNotificationType(typ) {
		return apperror.BadRequest("Invalid notification type")
	}
	n := &domain.Notification{
		ProfileID: profileID,
		Type:      typ,
		Title:     strings.TrimSpace(title),
		Message:   strings.TrimSpace(message),
		Link:      link,
	}
	if err := u.repo.Create(ctx, n); err != nil {
		return notFound(err, "Profile")
	}
	u.publishTo(ctx, profileID, domain.EventInsert, n, "")
	u.sendEmail(ctx, n)
	return nil
}

func (u *notificationUsecase) sendEmail(ctx context.Context, n *domain.Notification) {
	if u.mailer == nil || !u.mailer.IsConfigured() {
		return
	}
	p, err := u.profiles.GetByID(ctx, n.ProfileID)
	if err != nil || p.IsDisabled || p.Email == "" {
		return
	}
	data := email.NotificationEmailData{RecipientName: p.FullName, Title: n.Title, Message: n.Message}
	if n.Link != nil {
		data.Link = *n.Link
	}
	go func() {
		if err := u.mailer.SendNotification(p.Email, data); err != nil {
			logger.Log.Warn("notification email failed", "profile_id", p.ID, "error", err)
		}
	}()
}

// Broadcast sends the same notification to every active profile of a role.
func (u *notificationUsecase) Broadcast(ctx context.Context, actor domain.Actor, role, typ, title, message string, link *string) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if !domain.ValidRole(role) {
		return 0, apperror.BadRequest("Invalid role")
	}
	if typ == "" {
		typ = domain.NotificationInfo
	}
	if !validNotificationType(typ) {
		return 0, apperror.BadRequest("Invalid notification type")
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return 0, apperror.BadRequest("Title and message are required")
	}

	ids, err := u.profiles.ListIDsByRole(ctx, role)
	if err != nil {
		return 0, err
	}
	ns := make([]domain.Notification, 0, len(ids))
	for _, id := range ids {
		ns = append(ns, domain.Notification{ProfileID: id, Type: typ, Title: title, Message: message, Link: link})
	}
	n, err := u.repo.CreateMany(ctx, ns)
	if err != nil {
		return 0, err
	}
	for i := range ns {
		u.publishTo(ctx, ns[i].ProfileID, domain.EventInsert, &ns[i], "")
	}
	recordActivity(ctx, u.activity, actor, "broadcast", "notification", role, map[string]any{"title": title, "recipients": n})
	return n, nil
}

// PurgeExpired removes read notifications older than the configured retention.
func (u *notificationUsecase) PurgeExpired(ctx context.Context) (int64, error) {
	s, err := loadSettings(ctx, u.settings)
	if err != nil {
		return 0, err
	}
	days := s.NotificationRetentionDays
	if days < 1 {
		days = domain.DefaultSettings().NotificationRetentionDays
	}
	return u.repo.PurgeReadBefore(ctx, u.now().AddDate(0, 0, -days))
}
