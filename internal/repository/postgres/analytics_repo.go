package postgres

import (
	"context"
	"time"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type analyticsRepo struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) domain.AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) Counts(ctx context.Context, now time.Time) (*domain.Counts, error) {
	var c domain.Counts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM students WHERE is_placed),
			(SELECT COUNT(*) FROM companies WHERE status = 'active'),
			(SELECT COUNT(*) FROM jobs WHERE status = 'open' AND deadline >= $1),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM campus_drives WHERE status = 'scheduled' AND drive_date >= $1)`, now,
	).Scan(&c.TotalStudents, &c.PlacedStudents, &c.TotalCompanies, &c.OpenJobs, &c.TotalApplications, &c.UpcomingDrives)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
