package usecase

import (
	"context"

	"placement-backend/internal/domain"
	"placement-backend/pkg/logger"
)

type activityUsecase struct {
	repo domain.ActivityRepository
}

func NewActivityUsecase(repo domain.ActivityRepository) domain.ActivityUsecase {
	return &activityUsecase{repo: repo}
}

// Record never fails the caller; errors are only logged.
func (u *activityUsecase) Record(ctx context.Context, actorID, action, entity, entityID string, details map[string]any) {
	l := &domain.ActivityLog{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}
	if actorID != "" {
		l.ActorID = &actorID
	}
	if err := u.repo.Create(ctx, l); err != nil {
		logger.Log.Warn("record activity failed", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

func (u *activityUsecase) ListActivity(ctx context.Context, actor domain.Actor, f domain.ActivityFilter) (*domain.PaginatedResult[domain.ActivityLog], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	f.Page = f.Page.Normalize()
	logs, total, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(logs, total, f.Page), nil
}

func (u *activityUsecase) RecentActivity(ctx context.Context, actor domain.Actor, n int) ([]domain.ActivityLog, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if n < 1 {
		n = 10
	}
	if n > 50 {
		n = 50
	}
	logs, _, err := u.repo.List(ctx, domain.ActivityFilter{Page: domain.Page{Page: 1, PageSize: n}})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.ActivityLog{}
	}
	return logs, nil
}
