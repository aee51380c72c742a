package postgres

import (
	"context"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) domain.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*domain.SystemSettings, error) {
	var s domain.SystemSettings
	err := r.db.QueryRow(ctx, `
		SELECT institute_name, placement_season, max_applications_per_student, allow_placed_students_to_apply,
		       default_min_cgpa::float8, notification_retention_days, maintenance_mode, updated_by, updated_at
		FROM system_settings WHERE id = 1`,
	).Scan(&s.InstituteName, &s.PlacementSeason, &s.MaxApplicationsPerStudent, &s.AllowPlacedStudentsToApply,
		&s.DefaultMinCGPA, &s.NotificationRetentionDays, &s.MaintenanceMode, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s *domain.SystemSettings) error {
	query := `INSERT INTO system_settings (id, institute_name, placement_season, max_applications_per_student,
                  allow_placed_students_to_apply, default_min_cgpa, notification_retention_days,
                  maintenance_mode, updated_by, updated_at)
              VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, NOW())
              ON CONFLICT (id) DO UPDATE SET
                  institute_name = EXCLUDED.institute_name,
                  placement_season = EXCLUDED.placement_season,
                  max_applications_per_student = EXCLUDED.max_applications_per_student,
                  allow_placed_students_to_apply = EXCLUDED.allow_placed_students_to_apply,
                  default_min_cgpa = EXCLUDED.default_min_cgpa,
                  notification_retention_days = EXCLUDED.notification_retention_days,
                  maintenance_mode = EXCLUDED.maintenance_mode,
                  updated_by = EXCLUDED.updated_by,
                  updated_at = NOW()
              RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		s.InstituteName, s.PlacementSeason, s.MaxApplicationsPerStudent, s.AllowPlacedStudentsToApply,
		s.DefaultMinCGPA, s.NotificationRetentionDays, s.MaintenanceMode, s.UpdatedBy,
	).Scan(&s.UpdatedAt)
	return mapErr(err)
}
