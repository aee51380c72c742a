package usecase

import (
	"context"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/logger"
)

// Pinger is satisfied by *pgxpool.Pool and the storage client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function such as redis.HealthCheck to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	db       Pinger
	optional map[string]Pinger
	timeout  time.Duration
}

// NewHealthUsecase reports "down" when db fails and "degraded" when any optional
// dependency (redis, storage) is configured but unreachable. Nil optionals are skipped.
func NewHealthUsecase(db Pinger, optional map[string]Pinger) domain.HealthUsecase {
	return &healthUsecase{db: db, optional: optional, timeout: 2 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) *domain.HealthReport {
	report := &domain.HealthReport{Status: "healthy", Checks: map[string]string{}}

	if err := u.ping(ctx, u.db); err != nil {
		logger.Log.Error("health check: database unreachable", "error", err)
		report.Checks["database"] = "down"
		report.Status = "down"
	} else {
		report.Checks["database"] = "up"
	}

	for name, p := range u.optional {
		if p == nil {
			report.Checks[name] = "disabled"
			continue
		}
		if err := u.ping(ctx, p); err != nil {
			logger.Log.Warn("health check: dependency unreachable", "dependency", name, "error", err)
			report.Checks[name] = "down"
			if report.Status == "healthy" {
				report.Status = "degraded"
			}
			continue
		}
		report.Checks[name] = "up"
	}
	return report
}

func (u *healthUsecase) ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return p.Ping(ctx)
}
