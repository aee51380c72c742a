package domain

import (
	"context"
	"time"
)

// SystemSettings is the single-row portal configuration (id = 1).
type SystemSettings struct {
	InstituteName              string    `json:"institute_name" validate:"required,max=150"`
	PlacementSeason            string    `json:"placement_season" validate:"max=40"`
	MaxApplicationsPerStudent  int       `json:"max_applications_per_student" validate:"gte=1,lte=100"`
	AllowPlacedStudentsToApply bool      `json:"allow_placed_students_to_apply"`
	DefaultMinCGPA             float64   `json:"default_min_cgpa" validate:"gte=0,lte=10"`
	NotificationRetentionDays  int       `json:"notification_retention_days" validate:"gte=1,lte=365"`
	MaintenanceMode            bool      `json:"maintenance_mode"`
	UpdatedBy                  *string   `json:"updated_by,omitempty"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

func DefaultSettings() SystemSettings {
	return SystemSettings{
		InstituteName:             "Placement Cell",
		MaxApplicationsPerStudent: 10,
		DefaultMinCGPA:            6.0,
		NotificationRetentionDays: 30,
	}
}

type SettingsRepository interface {
	Get(ctx context.Context) (*SystemSettings, error)
	Upsert(ctx context.Context, s *SystemSettings) error
}

type SettingsUsecase interface {
	GetSettings(ctx context.Context) (*SystemSettings, error)
	UpdateSettings(ctx context.Context, actor Actor, s *SystemSettings) (*SystemSettings, error)
}
