package postgres

import (
	"context"
	"strings"
	"time"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `
	j.id, j.company_id, j.title, j.description, j.job_type, j.location, j.package_lpa, j.min_cgpa,
	j.eligible_departments, j.skills, j.openings, j.deadline, j.status, j.created_at, j.updated_at,
	COALESCE(c.name, 'Unknown Company'), c.logo_url`

const jobSelect = `SELECT ` + jobColumns + `
	FROM jobs j
	LEFT JOIN companies c ON c.id = j.company_id`

func scanJob(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.JobType, &j.Location, &j.PackageLPA, &j.MinCGPA,
		pq.Array(&j.EligibleDepartments), pq.Array(&j.Skills), &j.Openings, &j.Deadline, &j.Status,
		&j.CreatedAt, &j.UpdatedAt, &j.CompanyName, &j.CompanyLogoURL,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	if j.EligibleDepartments == nil {
		j.EligibleDepartments = []string{}
	}
	if j.Skills == nil {
		j.Skills = []string{}
	}
	return &j, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (company_id, title, description, job_type, location, package_lpa, min_cgpa,
                  eligible_departments, skills, openings, deadline, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text[], $9::text[], $10, $11, $12, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		job.CompanyID, job.Title, job.Description, job.JobType, job.Location, job.PackageLPA, job.MinCGPA,
		pq.Array(job.EligibleDepartments), pq.Array(job.Skills), job.Openings, job.Deadline, job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	return mapErr(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	return scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
}

// jobListWhere mirrors domain.JobFilter.Matches in SQL plus the company/status/department constraints.
func jobListWhere(f domain.JobFilter) *where {
	w := &where{}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := containsPattern(term)
		w.add("(j.title ILIKE ? OR j.description ILIKE ? OR COALESCE(c.name, '') ILIKE ? OR j.location ILIKE ?)",
			like, like, like, like)
	}
	if f.JobType != "" {
		w.add("j.job_type = ?", f.JobType)
	}
	if f.CompanyID > 0 {
		w.add("j.company_id = ?", f.CompanyID)
	}
	if f.Status != "" {
		w.add("j.status = ?", f.Status)
	}
	if f.Department != "" {
		w.add("(cardinality(j.eligible_departments) = 0 OR ? ILIKE ANY(j.eligible_departments))", f.Department)
	}
	return w
}

func (r *jobRepo) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, int64, error) {
	w := jobListWhere(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM jobs j LEFT JOIN companies c ON c.id = j.company_id` + w.clause()
	if err := r.db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := jobSelect + w.clause() + ` ORDER BY j.created_at DESC, j.id DESC LIMIT ` +
		w.next(f.Page.PageSize) + ` OFFSET ` + w.next(f.Page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, total, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE jobs SET title = $2, description = $3, job_type = $4, location = $5, package_lpa = $6,
                  min_cgpa = $7, eligible_departments = $8::text[], skills = $9::text[], openings = $10,
                  deadline = $11, status = $12, updated_at = NOW()
              WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		job.ID, job.Title, job.Description, job.JobType, job.Location, job.PackageLPA,
		job.MinCGPA, pq.Array(job.EligibleDepartments), pq.Array(job.Skills), job.Openings,
		job.Deadline, job.Status,
	).Scan(&job.UpdatedAt)
	return mapErr(err)
}

func (r *jobRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return affected(r.db.Exec(ctx, `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id))
}

func (r *jobRepo) CloseExpired(ctx context.Context, now time.Time) ([]domain.Job, error) {
	query := `WITH closed AS (
	              UPDATE jobs SET status = 'closed', updated_at = NOW()
	              WHERE status = 'open' AND deadline < $1
	              RETURNING *)
	          SELECT ` + jobColumns + `
	          FROM closed j
	          LEFT JOIN companies c ON c.id = j.company_id
	          ORDER BY j.id`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}
