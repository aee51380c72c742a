package postgres

import (
	"context"
	"time"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type driveRepo struct {
	db *pgxpool.Pool
}

func NewDriveRepository(db *pgxpool.Pool) domain.DriveRepository {
	return &driveRepo{db: db}
}

const driveSelect = `
	SELECT d.id, d.company_id, d.title, d.description, d.venue, d.drive_date, d.registration_deadline,
	       d.eligible_departments, d.min_cgpa, d.status, d.created_at, d.updated_at,
	       COALESCE(c.name, ''),
	       (SELECT COUNT(*) FROM drive_registrations r WHERE r.drive_id = d.id)
	FROM campus_drives d
	LEFT JOIN companies c ON c.id = d.company_id`

func scanDrive(row rowScanner) (*domain.CampusDrive, error) {
	var d domain.CampusDrive
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Title, &d.Description, &d.Venue, &d.DriveDate, &d.RegistrationDeadline,
		pq.Array(&d.EligibleDepartments), &d.MinCGPA, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.CompanyName, &d.RegistrationCount,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	if d.EligibleDepartments == nil {
		d.EligibleDepartments = []string{}
	}
	return &d, nil
}

func (r *driveRepo) Create(ctx context.Context, d *domain.CampusDrive) error {
	query := `INSERT INTO campus_drives (company_id, title, description, venue, drive_date, registration_deadline,
                  eligible_departments, min_cgpa, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7::text[], $8, $9, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		d.CompanyID, d.Title, d.Description, d.Venue, d.DriveDate, d.RegistrationDeadline,
		pq.Array(d.EligibleDepartments), d.MinCGPA, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapErr(err)
}

func (r *driveRepo) GetByID(ctx context.Context, id int64) (*domain.CampusDrive, error) {
	return scanDrive(r.db.QueryRow(ctx, driveSelect+` WHERE d.id = $1`, id))
}

func (r *driveRepo) List(ctx context.Context, f domain.DriveFilter, now time.Time) ([]domain.CampusDrive, int64, error) {
	var w where
	if f.Status != "" {
		w.add("d.status = ?", f.Status)
	}
	if f.CompanyID > 0 {
		w.add("d.company_id = ?", f.CompanyID)
	}
	order := ` ORDER BY d.drive_date DESC, d.id DESC`
	if f.Upcoming {
		w.add("d.drive_date >= ?", now)
		w.add("d.status IN ('scheduled', 'ongoing')")
		order = ` ORDER BY d.drive_date ASC, d.id ASC`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM campus_drives d`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := driveSelect + w.clause() + order + ` LIMIT ` + w.next(f.Page.PageSize) + ` OFFSET ` + w.next(f.Page.Offset())
	drives, err := r.queryDrives(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return drives, total, nil
}

func (r *driveRepo) Update(ctx context.Context, d *domain.CampusDrive) error {
	query := `UPDATE campus_drives SET title = $2, description = $3, venue = $4, drive_date = $5,
                  registration_deadline = $6, eligible_departments = $7::text[], min_cgpa = $8, updated_at = NOW()
              WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		d.ID, d.Title, d.Description, d.Venue, d.DriveDate, d.RegistrationDeadline,
		pq.Array(d.EligibleDepartments), d.MinCGPA,
	).Scan(&d.UpdatedAt)
	return mapErr(err)
}

func (r *driveRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return affected(r.db.Exec(ctx, `UPDATE campus_drives SET status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r *driveRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM campus_drives WHERE id = $1`, id))
}

func (r *driveRepo) Register(ctx context.Context, driveID, studentID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO drive_registrations (drive_id, student_id, registered_at) VALUES ($1, $2, NOW())`,
		driveID, studentID)
	return mapErr(err)
}

func (r *driveRepo) Unregister(ctx context.Context, driveID, studentID int64) error {
	return affected(r.db.Exec(ctx,
		`DELETE FROM drive_registrations WHERE drive_id = $1 AND student_id = $2`, driveID, studentID))
}

func (r *driveRepo) IsRegistered(ctx context.Context, driveID, studentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM drive_registrations WHERE drive_id = $1 AND student_id = $2)`,
		driveID, studentID,
	).Scan(&exists)
	return exists, err
}

func (r *driveRepo) ListRegistrations(ctx context.Context, driveID int64) ([]domain.DriveRegistration, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.drive_id, r.student_id, r.registered_at, s.full_name, s.roll_number, s.department, s.profile_id
		FROM drive_registrations r
		JOIN students s ON s.id = r.student_id
		WHERE r.drive_id = $1
		ORDER BY s.roll_number`, driveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.DriveRegistration
	for rows.Next() {
		var reg domain.DriveRegistration
		if err := rows.Scan(&reg.DriveID, &reg.StudentID, &reg.RegisteredAt, &reg.StudentName,
			&reg.StudentRollNumber, &reg.Department, &reg.StudentProfileID); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *driveRepo) StartingBetween(ctx context.Context, from, to time.Time) ([]domain.CampusDrive, error) {
	return r.queryDrives(ctx,
		driveSelect+` WHERE d.status = 'scheduled' AND d.drive_date >= $1 AND d.drive_date < $2 ORDER BY d.drive_date`,
		from, to)
}

func (r *driveRepo) queryDrives(ctx context.Context, query string, args ...any) ([]domain.CampusDrive, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drives []domain.CampusDrive
	for rows.Next() {
		d, err := scanDrive(rows)
		if err != nil {
			return nil, err
		}
		drives = append(drives, *d)
	}
	return drives, rows.Err()
}
