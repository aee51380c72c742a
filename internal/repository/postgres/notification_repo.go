package postgres

import (
	"context"
	"time"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

const notificationColumns = `id, profile_id, type, title, message, link, is_read, created_at`

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(&n.ID, &n.ProfileID, &n.Type, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (profile_id, type, title, message, link, is_read, created_at)
              VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
              RETURNING ` + notificationColumns
	got, err := scanNotification(r.db.QueryRow(ctx, query, n.ProfileID, n.Type, n.Title, n.Message, n.Link))
	if err != nil {
		return err
	}
	*n = *got
	return nil
}

// CreateMany bulk-inserts with COPY.
func (r *notificationRepo) CreateMany(ctx context.Context, ns []domain.Notification) (int64, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	now := time.Now()
	return r.db.CopyFrom(ctx,
		pgx.Identifier{"notifications"},
		[]string{"profile_id", "type", "title", "message", "link", "is_read", "created_at"},
		pgx.CopyFromSlice(len(ns), func(i int) ([]any, error) {
			n := ns[i]
			return []any{n.ProfileID, n.Type, n.Title, n.Message, n.Link, false, now}, nil
		}),
	)
}

func (r *notificationRepo) List(ctx context.Context, profileID string, unreadOnly bool, page domain.Page) ([]domain.Notification, int64, error) {
	var w where
	w.add("profile_id = ?", profileID)
	if unreadOnly {
		w.add("NOT is_read")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + w.clause() +
		` ORDER BY created_at DESC LIMIT ` + w.next(page.PageSize) + ` OFFSET ` + w.next(page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

func (r *notificationRepo) UnreadCount(ctx context.Context, profileID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE profile_id = $1 AND NOT is_read`, profileID).Scan(&n)
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, profileID, id string) error {
	return affected(r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND profile_id = $2`, id, profileID))
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, profileID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE profile_id = $1 AND NOT is_read`, profileID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, profileID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND profile_id = $2`, id, profileID))
}

func (r *notificationRepo) DeleteAll(ctx context.Context, profileID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE profile_id = $1`, profileID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) PurgeReadBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE is_read AND created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
