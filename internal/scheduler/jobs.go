package scheduler

import (
	"context"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/logger"

	"github.com/google/uuid"
)

const (
	PresencePruneSpec     = "0 * * * * *"
	NotificationPurgeSpec = "0 0 2 * * *"
	DriveReminderSpec     = "0 0 * * * *"
	CloseExpiredJobsSpec  = "0 */5 * * * *"

	DriveReminderWindow = 24 * time.Hour
)

type statsRefresher interface {
	RefreshStats(ctx context.Context) (*domain.AttendanceStats, error)
}

type notificationPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type driveReminder interface {
	SendReminders(ctx context.Context, within time.Duration) (int, error)
}

type jobCloser interface {
	CloseExpiredJobs(ctx context.Context) (int, error)
}

// Services are the use cases the placement jobs drive.
type Services struct {
	Attendance     statsRefresher
	Presence       domain.PresenceTracker
	Notifications  notificationPurger
	Drives         driveReminder
	Jobs           jobCloser
	Events         domain.EventPublisher
	AttendanceSpec string
}

// PlacementJobs returns the recurring jobs of the placement portal.
func PlacementJobs(svc Services) []Job {
	return []Job{
		{
			Name: "attendance_stats_refresh",
			Spec: svc.AttendanceSpec,
			Run: func(ctx context.Context) error {
				_, err := svc.Attendance.RefreshStats(ctx)
				return err
			},
		},
		{
			Name: "presence_prune",
			Spec: PresencePruneSpec,
			Run: func(ctx context.Context) error {
				if _, err := svc.Presence.Prune(ctx); err != nil {
					return err
				}
				active, err := svc.Presence.ActiveUsers(ctx)
				if err != nil {
					return err
				}
				if svc.Events != nil {
					svc.Events.Publish(ctx, domain.ChangeEvent{
						ID:              uuid.NewString(),
						Table:           domain.TableActiveUsers,
						Type:            domain.EventSnapshot,
						Record:          active,
						CommitTimestamp: time.Now().UTC(),
					})
				}
				return nil
			},
		},
		{
			Name: "notification_purge",
			Spec: NotificationPurgeSpec,
			Run: func(ctx context.Context) error {
				n, err := svc.Notifications.PurgeExpired(ctx)
				if err == nil && n > 0 {
					logger.Log.Info("purged read notifications", "count", n)
				}
				return err
			},
		},
		{
			Name: "drive_reminders",
			Spec: DriveReminderSpec,
			Run: func(ctx context.Context) error {
				n, err := svc.Drives.SendReminders(ctx, DriveReminderWindow)
				if n > 0 {
					logger.Log.Info("sent drive reminders", "count", n)
				}
				return err
			},
		},
		{
			Name: "close_expired_jobs",
			Spec: CloseExpiredJobsSpec,
			Run: func(ctx context.Context) error {
				n, err := svc.Jobs.CloseExpiredJobs(ctx)
				if n > 0 {
					logger.Log.Info("closed expired jobs", "count", n)
				}
				return err
			},
		},
	}
}
