package postgres

import (
	"context"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, email, full_name, role, avatar_url, is_disabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.IsDisabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// Upsert inserts the profile or refreshes email and name. Role and disabled flag are never overwritten.
func (r *profileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (id, email, full_name, role, created_at, updated_at)
              VALUES ($1, $2, $3, $4, NOW(), NOW())
              ON CONFLICT (id) DO UPDATE SET
                  email = EXCLUDED.email,
                  full_name = CASE WHEN EXCLUDED.full_name = '' THEN profiles.full_name ELSE EXCLUDED.full_name END,
                  updated_at = NOW()
              RETURNING ` + profileColumns
	got, err := scanProfile(r.db.QueryRow(ctx, query, p.ID, p.Email, p.FullName, p.Role))
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (r *profileRepo) List(ctx context.Context, role string, page domain.Page) ([]domain.Profile, int64, error) {
	var w where
	if role != "" {
		w.add("role = ?", role)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + w.clause() +
		` ORDER BY created_at DESC LIMIT ` + w.next(page.PageSize) + ` OFFSET ` + w.next(page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}

func (r *profileRepo) ListIDsByRole(ctx context.Context, role string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM profiles WHERE role = $1 AND NOT is_disabled`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *profileRepo) UpdateOwn(ctx context.Context, id, fullName string, avatarURL *string) (*domain.Profile, error) {
	query := `UPDATE profiles SET full_name = $2, avatar_url = $3, updated_at = NOW()
              WHERE id = $1 RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, id, fullName, avatarURL))
}

func (r *profileRepo) SetRole(ctx context.Context, id, role string) (*domain.Profile, error) {
	query := `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, id, role))
}

func (r *profileRepo) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.Profile, error) {
	query := `UPDATE profiles SET is_disabled = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, id, disabled))
}

func (r *profileRepo) CountByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{domain.RoleAdmin: 0, domain.RoleStudent: 0, domain.RoleRecruiter: 0}
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
