package domain

import (
	"context"
	"time"
)

type ActivityLog struct {
	ID        int64          `json:"id"`
	ActorID   *string        `json:"actor_id,omitempty"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`

	ActorName *string `json:"actor_name,omitempty"`
}

type ActivityFilter struct {
	ActorID string
	Entity  string
	Action  string
	Since   *time.Time
	Page    Page
}

type ActivityRepository interface {
	Create(ctx context.Context, l *ActivityLog) error
	List(ctx context.Context, f ActivityFilter) ([]ActivityLog, int64, error)
}

// ActivityRecorder is what other use cases depend on to leave an audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID, action, entity, entityID string, details map[string]any)
}

type ActivityUsecase interface {
	ActivityRecorder
	ListActivity(ctx context.Context, actor Actor, f ActivityFilter) (*PaginatedResult[ActivityLog], error)
	RecentActivity(ctx context.Context, actor Actor, n int) ([]ActivityLog, error)
}
