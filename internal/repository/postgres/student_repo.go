package postgres

import (
	"context"
	"strings"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type studentRepo struct {
	db *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) domain.StudentRepository {
	return &studentRepo{db: db}
}

const studentSelect = `
	SELECT s.id, s.profile_id, s.roll_number, s.full_name, s.email, s.phone, s.department,
	       s.batch_year, s.cgpa, s.skills, s.resume_url, s.photo_url, s.is_placed,
	       s.placed_company_id, s.package_lpa, s.created_at, s.updated_at, c.name
	FROM students s
	LEFT JOIN companies c ON c.id = s.placed_company_id`

func scanStudent(row rowScanner) (*domain.Student, error) {
	var s domain.Student
	err := row.Scan(
		&s.ID, &s.ProfileID, &s.RollNumber, &s.FullName, &s.Email, &s.Phone, &s.Department,
		&s.BatchYear, &s.CGPA, pq.Array(&s.Skills), &s.ResumeURL, &s.PhotoURL, &s.IsPlaced,
		&s.PlacedCompanyID, &s.PackageLPA, &s.CreatedAt, &s.UpdatedAt, &s.PlacedCompanyName,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	if s.Skills == nil {
		s.Skills = []string{}
	}
	return &s, nil
}

func (r *studentRepo) Create(ctx context.Context, s *domain.Student) error {
	query := `INSERT INTO students (profile_id, roll_number, full_name, email, phone, department, batch_year,
                  cgpa, skills, resume_url, photo_url, is_placed, placed_company_id, package_lpa, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::text[], $10, $11, $12, $13, $14, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		s.ProfileID, s.RollNumber, s.FullName, s.Email, s.Phone, s.Department, s.BatchYear,
		s.CGPA, pq.Array(s.Skills), s.ResumeURL, s.PhotoURL, s.IsPlaced, s.PlacedCompanyID, s.PackageLPA,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

func (r *studentRepo) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, studentSelect+` WHERE s.id = $1`, id))
}

func (r *studentRepo) GetByProfileID(ctx context.Context, profileID string) (*domain.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, studentSelect+` WHERE s.profile_id = $1`, profileID))
}

func (r *studentRepo) Update(ctx context.Context, s *domain.Student) error {
	query := `UPDATE students SET profile_id = $2, roll_number = $3, full_name = $4, email = $5, phone = $6,
                  department = $7, batch_year = $8, cgpa = $9, skills = $10::text[], resume_url = $11, photo_url = $12,
                  is_placed = $13, placed_company_id = $14, package_lpa = $15, updated_at = NOW()
              WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		s.ID, s.ProfileID, s.RollNumber, s.FullName, s.Email, s.Phone,
		s.Department, s.BatchYear, s.CGPA, pq.Array(s.Skills), s.ResumeURL, s.PhotoURL,
		s.IsPlaced, s.PlacedCompanyID, s.PackageLPA,
	).Scan(&s.UpdatedAt)
	return mapErr(err)
}

func (r *studentRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id))
}

// studentSearchWhere builds the filter clause for Search.
func studentSearchWhere(f domain.StudentFilter) *where {
	w := &where{}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := containsPattern(term)
		w.add("(s.full_name ILIKE ? OR s.roll_number ILIKE ? OR s.email ILIKE ?)", like, like, like)
	}
	if len(f.Departments) > 0 {
		w.add("s.department = ANY(?::text[])", pq.Array(f.Departments))
	}
	if f.BatchYear > 0 {
		w.add("s.batch_year = ?", f.BatchYear)
	}
	if f.MinCGPA != nil {
		w.add("s.cgpa >= ?", *f.MinCGPA)
	}
	if f.IsPlaced != nil {
		w.add("s.is_placed = ?", *f.IsPlaced)
	}
	if len(f.Skills) > 0 {
		w.add("s.skills && ?::text[]", pq.Array(f.Skills))
	}
	return w
}

// studentOrder whitelists sort columns.
func studentOrder(sortBy, sortOrder string) string {
	column := "s.created_at"
	switch sortBy {
	case "name":
		column = "s.full_name"
	case "cgpa":
		column = "s.cgpa"
	case "batch_year":
		column = "s.batch_year"
	case "roll_number":
		column = "s.roll_number"
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	return " ORDER BY " + column + " " + dir + ", s.id ASC"
}

func (r *studentRepo) Search(ctx context.Context, f domain.StudentFilter) ([]domain.Student, int64, error) {
	w := studentSearchWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students s`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := studentSelect + w.clause() + studentOrder(f.SortBy, f.SortOrder) +
		` LIMIT ` + w.next(f.Page.PageSize) + ` OFFSET ` + w.next(f.Page.Offset())
	students, err := r.queryStudents(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepo) ListForAnalytics(ctx context.Context, batchYear int, departments []string) ([]domain.Student, error) {
	w := studentSearchWhere(domain.StudentFilter{BatchYear: batchYear, Departments: departments})
	return r.queryStudents(ctx, studentSelect+w.clause()+` ORDER BY s.department, s.roll_number`, w.args...)
}

func (r *studentRepo) queryStudents(ctx context.Context, query string, args ...any) ([]domain.Student, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}
