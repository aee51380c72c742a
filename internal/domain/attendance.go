package domain

import (
	"context"
	"time"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

type AttendanceRecord struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id" validate:"required,gt=0"`
	DriveID        *int64    `json:"drive_id,omitempty"`
	AttendanceDate time.Time `json:"attendance_date"`
	Status         string    `json:"status" validate:"required,oneof=present absent late"`
	MarkedBy       *string   `json:"marked_by,omitempty"`
	MarkedAt       time.Time `json:"marked_at"`

	StudentName       string `json:"student_name,omitempty"`
	StudentRollNumber string `json:"student_roll_number,omitempty"`
}

// AttendanceStats is the row returned by get_attendance_stats.
type AttendanceStats struct {
	Date           string  `json:"date"`
	TotalStudents  int64   `json:"total_students"`
	Present        int64   `json:"present"`
	Absent         int64   `json:"absent"`
	Late           int64   `json:"late"`
	Unmarked       int64   `json:"unmarked"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// StudentAttendanceSummary is the row returned by get_student_attendance.
type StudentAttendanceSummary struct {
	StudentID      int64   `json:"student_id"`
	TotalDays      int64   `json:"total_days"`
	Present        int64   `json:"present"`
	Absent         int64   `json:"absent"`
	Late           int64   `json:"late"`
	AttendanceRate float64 `json:"attendance_rate"`
}

type AttendanceRepository interface {
	Upsert(ctx context.Context, records []AttendanceRecord) error
	List(ctx context.Context, date time.Time, driveID *int64) ([]AttendanceRecord, error)
	DailyStats(ctx context.Context, date time.Time) (*AttendanceStats, error)
	StudentSummary(ctx context.Context, studentID int64) (*StudentAttendanceSummary, error)
}

type AttendanceUsecase interface {
	MarkAttendance(ctx context.Context, actor Actor, records []AttendanceRecord) (*AttendanceStats, error)
	ListAttendance(ctx context.Context, actor Actor, date time.Time, driveID *int64) ([]AttendanceRecord, error)
	GetDailyStats(ctx context.Context, date time.Time) (*AttendanceStats, error)
	GetStudentSummary(ctx context.Context, actor Actor, studentID int64) (*StudentAttendanceSummary, error)
	// RefreshStats re-runs today's statistics and publishes them as a snapshot event.
	RefreshStats(ctx context.Context) (*AttendanceStats, error)
}
