package usecase

import (
	"context"
	"strings"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/cache"

	"github.com/go-playground/validator/v10"
)

const (
	settingsCacheKey = "settings:current"
	settingsCacheTTL = 30 * time.Second
)

type settingsUsecase struct {
	repo     domain.SettingsRepository
	cache    cache.Cache
	validate *validator.Validate
	activity domain.ActivityRecorder
	events   domain.EventPublisher
}

func NewSettingsUsecase(repo domain.SettingsRepository, c cache.Cache, validate *validator.Validate, activity domain.ActivityRecorder, events domain.EventPublisher) domain.SettingsUsecase {
	return &settingsUsecase{
		repo:     repo,
		cache:    c,
		validate: validate,
		activity: activity,
		events:   events,
	}
}

// GetSettings is read on every mutating request by the maintenance gate, so it is cached briefly.
func (u *settingsUsecase) GetSettings(ctx context.Context) (*domain.SystemSettings, error) {
	var cached domain.SystemSettings
	if err := cache.GetJSON(ctx, u.cache, settingsCacheKey, &cached); err == nil {
		return &cached, nil
	}

	s, err := loadSettings(ctx, u.repo)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, u.cache, settingsCacheKey, s, settingsCacheTTL); err != nil {
		logWarn("cache settings failed", err)
	}
	return s, nil
}

func (u *settingsUsecase) UpdateSettings(ctx context.Context, actor domain.Actor, s *domain.SystemSettings) (*domain.SystemSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	s.InstituteName = strings.TrimSpace(s.InstituteName)
	s.PlacementSeason = strings.TrimSpace(s.PlacementSeason)
	if err := validateStruct(u.validate, s); err != nil {
		return nil, err
	}
	updatedBy := actor.ID
	s.UpdatedBy = &updatedBy
	if err := u.repo.Upsert(ctx, s); err != nil {
		return nil, err
	}
	if err := u.cache.Delete(ctx, settingsCacheKey); err != nil {
		logWarn("invalidate settings cache failed", err)
	}
	publish(ctx, u.events, domain.TableSettings, domain.EventUpdate, s, "")
	recordActivity(ctx, u.activity, actor, "update", "system_settings", "1", map[string]any{"maintenance_mode": s.MaintenanceMode})
	return s, nil
}
