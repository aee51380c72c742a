package postgres

import (
	"context"
	"encoding/json"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type activityRepo struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) domain.ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, l *domain.ActivityLog) error {
	details := l.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	query := `INSERT INTO activity_logs (actor_id, action, entity, entity_id, details, created_at)
              VALUES ($1, $2, $3, $4, $5::jsonb, NOW())
              RETURNING id, created_at`
	return mapErr(r.db.QueryRow(ctx, query, l.ActorID, l.Action, l.Entity, l.EntityID, string(raw)).
		Scan(&l.ID, &l.CreatedAt))
}

func activityListWhere(f domain.ActivityFilter) *where {
	w := &where{}
	if f.ActorID != "" {
		w.add("l.actor_id = ?", f.ActorID)
	}
	if f.Entity != "" {
		w.add("l.entity = ?", f.Entity)
	}
	if f.Action != "" {
		w.add("l.action = ?", f.Action)
	}
	if f.Since != nil {
		w.add("l.created_at >= ?", *f.Since)
	}
	return w
}

func (r *activityRepo) List(ctx context.Context, f domain.ActivityFilter) ([]domain.ActivityLog, int64, error) {
	w := activityListWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs l`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT l.id, l.actor_id, l.action, l.entity, l.entity_id, l.details, l.created_at, p.full_name
              FROM activity_logs l
              LEFT JOIN profiles p ON p.id = l.actor_id` + w.clause() +
		` ORDER BY l.created_at DESC, l.id DESC LIMIT ` + w.next(f.Page.PageSize) + ` OFFSET ` + w.next(f.Page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		var raw []byte
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.Entity, &l.EntityID, &raw, &l.CreatedAt, &l.ActorName); err != nil {
			return nil, 0, err
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &l.Details)
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
