package postgres

import (
	"context"
	"fmt"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationSelect = `
	SELECT a.id, a.job_id, a.student_id, a.cover_letter, a.resume_url, a.status, a.remarks,
	       a.created_at, a.updated_at,
	       j.title, j.company_id, COALESCE(c.name, ''), s.full_name, s.roll_number, s.profile_id
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN students s ON s.id = a.student_id
	LEFT JOIN companies c ON c.id = j.company_id`

func scanApplication(row rowScanner) (*domain.JobApplication, error) {
	var a domain.JobApplication
	err := row.Scan(
		&a.ID, &a.JobID, &a.StudentID, &a.CoverLetter, &a.ResumeURL, &a.Status, &a.Remarks,
		&a.CreatedAt, &a.UpdatedAt,
		&a.JobTitle, &a.CompanyID, &a.CompanyName, &a.StudentName, &a.StudentRollNumber, &a.StudentProfileID,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *applicationRepo) Create(ctx context.Context, app *domain.JobApplication) error {
	query := `INSERT INTO applications (job_id, student_id, cover_letter, resume_url, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, app.JobID, app.StudentID, app.CoverLetter, app.ResumeURL, app.Status).
		Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	return mapErr(err)
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	return scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
}

func applicationListWhere(f domain.ApplicationFilter) *where {
	w := &where{}
	if f.JobID > 0 {
		w.add("a.job_id = ?", f.JobID)
	}
	if f.StudentID > 0 {
		w.add("a.student_id = ?", f.StudentID)
	}
	if f.CompanyID > 0 {
		w.add("j.company_id = ?", f.CompanyID)
	}
	if f.Status != "" {
		w.add("a.status = ?", f.Status)
	}
	return w
}

func (r *applicationRepo) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.JobApplication, int64, error) {
	w := applicationListWhere(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id` + w.clause()
	if err := r.db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := applicationSelect + w.clause() + ` ORDER BY a.created_at DESC, a.id DESC LIMIT ` +
		w.next(f.Page.PageSize) + ` OFFSET ` + w.next(f.Page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []domain.JobApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *a)
	}
	return apps, total, rows.Err()
}

func (r *applicationRepo) Exists(ctx context.Context, jobID, studentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = $1 AND student_id = $2)`, jobID, studentID,
	).Scan(&exists)
	return exists, err
}

// CountActiveByStudent counts applications that have not been rejected.
func (r *applicationRepo) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE student_id = $1 AND status <> 'rejected'`, studentID,
	).Scan(&n)
	return n, err
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, expectedStatus, status string, remarks *string, placement *domain.PlacementUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE applications SET status = $3, remarks = COALESCE($4, remarks), updated_at = NOW()
         WHERE id = $1 AND status = $2`,
		id, expectedStatus, status, remarks)
	if err := affected(tag, err); err != nil {
		return err
	}

	if placement != nil {
		tag, err = tx.Exec(ctx,
			`UPDATE students SET is_placed = TRUE, placed_company_id = $2, package_lpa = $3, updated_at = NOW()
             WHERE id = $1`,
			placement.StudentID, placement.CompanyID, placement.PackageLPA)
		if err := affected(tag, err); err != nil {
			return fmt.Errorf("mark student placed: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *applicationRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id))
}

func (r *applicationRepo) CountByStatus(ctx context.Context, batchYear int) (map[string]int64, error) {
	query, args := countByStatusQuery(batchYear)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64, len(domain.ApplicationStatuses))
	for _, s := range domain.ApplicationStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func countByStatusQuery(batchYear int) (string, []any) {
	if batchYear <= 0 {
		return `SELECT status, COUNT(*) FROM applications GROUP BY status`, nil
	}
	return `SELECT a.status, COUNT(*) FROM applications a
		JOIN students s ON s.id = a.student_id
		WHERE s.batch_year = $1
		GROUP BY a.status`, []any{batchYear}
}
