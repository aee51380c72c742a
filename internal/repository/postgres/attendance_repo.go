package postgres

import (
	"context"
	"time"

	"placement-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type attendanceRepo struct {
	db *pgxpool.Pool
}

func NewAttendanceRepository(db *pgxpool.Pool) domain.AttendanceRepository {
	return &attendanceRepo{db: db}
}

const dateLayout = "2006-01-02"

// Upsert writes all records in one transaction; a later mark for the same
// student, drive and day replaces the earlier one.
func (r *attendanceRepo) Upsert(ctx context.Context, records []domain.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `INSERT INTO attendance (student_id, drive_id, attendance_date, status, marked_by, marked_at)
              VALUES ($1, $2, $3, $4, $5, NOW())
              ON CONFLICT (student_id, COALESCE(drive_id, 0), attendance_date)
              DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = NOW()
              RETURNING id, marked_at`

	batch := &pgx.Batch{}
	for i := range records {
		rec := &records[i]
		batch.Queue(query, rec.StudentID, rec.DriveID, rec.AttendanceDate.Format(dateLayout), rec.Status, rec.MarkedBy).
			QueryRow(func(row pgx.Row) error {
				return mapErr(row.Scan(&rec.ID, &rec.MarkedAt))
			})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapErr(err)
	}
	return tx.Commit(ctx)
}

func (r *attendanceRepo) List(ctx context.Context, date time.Time, driveID *int64) ([]domain.AttendanceRecord, error) {
	var w where
	w.add("a.attendance_date = ?", date.Format(dateLayout))
	if driveID != nil {
		w.add("a.drive_id = ?", *driveID)
	}

	query := `SELECT a.id, a.student_id, a.drive_id, a.attendance_date, a.status, a.marked_by, a.marked_at,
                     s.full_name, s.roll_number
              FROM attendance a
              JOIN students s ON s.id = a.student_id` + w.clause() + ` ORDER BY s.roll_number`
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.DriveID, &rec.AttendanceDate, &rec.Status,
			&rec.MarkedBy, &rec.MarkedAt, &rec.StudentName, &rec.StudentRollNumber); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DailyStats calls the get_attendance_stats database function.
func (r *attendanceRepo) DailyStats(ctx context.Context, date time.Time) (*domain.AttendanceStats, error) {
	day := date.Format(dateLayout)
	stats := domain.AttendanceStats{Date: day}
	err := r.db.QueryRow(ctx,
		`SELECT total_students, present, absent, late, unmarked, attendance_rate::float8 FROM get_attendance_stats($1::date)`, day,
	).Scan(&stats.TotalStudents, &stats.Present, &stats.Absent, &stats.Late, &stats.Unmarked, &stats.AttendanceRate)
	if err != nil {
		return nil, mapErr(err)
	}
	return &stats, nil
}

// StudentSummary calls the get_student_attendance database function.
func (r *attendanceRepo) StudentSummary(ctx context.Context, studentID int64) (*domain.StudentAttendanceSummary, error) {
	sum := domain.StudentAttendanceSummary{StudentID: studentID}
	err := r.db.QueryRow(ctx,
		`SELECT total_days, present, absent, late, attendance_rate::float8 FROM get_student_attendance($1)`, studentID,
	).Scan(&sum.TotalDays, &sum.Present, &sum.Absent, &sum.Late, &sum.AttendanceRate)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sum, nil
}
