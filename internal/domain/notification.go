package domain

import (
	"context"
	"time"
)

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      *string   `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	CreateMany(ctx context.Context, ns []Notification) (int64, error)
	List(ctx context.Context, profileID string, unreadOnly bool, page Page) ([]Notification, int64, error)
	UnreadCount(ctx context.Context, profileID string) (int64, error)
	MarkRead(ctx context.Context, profileID, id string) error
	MarkAllRead(ctx context.Context, profileID string) (int64, error)
	Delete(ctx context.Context, profileID, id string) error
	DeleteAll(ctx context.Context, profileID string) (int64, error)
	PurgeReadBefore(ctx context.Context, before time.Time) (int64, error)
}

type NotificationUsecase interface {
	List(ctx context.Context, actor Actor, unreadOnly bool, page Page) (*PaginatedResult[Notification], error)
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
	MarkRead(ctx context.Context, actor Actor, id string) error
	MarkAllRead(ctx context.Context, actor Actor) (int64, error)
	Delete(ctx context.Context, actor Actor, id string) error
	DeleteAll(ctx context.Context, actor Actor) (int64, error)
	Notify(ctx context.Context, profileID, typ, title, message string, link *string) error
	Broadcast(ctx context.Context, actor Actor, role, typ, title, message string, link *string) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
