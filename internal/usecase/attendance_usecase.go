package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
)

const maxAttendanceBatch = 500

type attendanceUsecase struct {
	attendance domain.AttendanceRepository
	drives     domain.DriveRepository
	students   domain.StudentRepository
	companies  domain.CompanyRepository
	events     domain.EventPublisher
	now        func() time.Time
}

func NewAttendanceUsecase(
	attendance domain.AttendanceRepository,
	drives domain.DriveRepository,
	students domain.StudentRepository,
	companies domain.CompanyRepository,
	events domain.EventPublisher,
) domain.AttendanceUsecase {
	return &attendanceUsecase{
		attendance: attendance,
		drives:     drives,
		students:   students,
		companies:  companies,
		events:     events,
		now:        time.Now,
	}
}

// MarkAttendance upserts a batch and returns the statistics of the marked day.
// Admins may mark any record; recruiters only records of drives their company runs.
func (u *attendanceUsecase) MarkAttendance(ctx context.Context, actor domain.Actor, records []domain.AttendanceRecord) (*domain.AttendanceStats, error) {
	if actor.IsStudent() {
		return nil, apperror.Forbidden("Students cannot mark attendance")
	}
	if len(records) == 0 {
		return nil, apperror.BadRequest("At least one attendance record is required")
	}
	if len(records) > maxAttendanceBatch {
		return nil, apperror.BadRequest(fmt.Sprintf("At most %d records can be marked at once", maxAttendanceBatch))
	}

	day := today(u.now())
	checked := make(map[int64]bool)
	for i := range records {
		r := &records[i]
		switch r.Status {
		case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceLate:
		default:
			return nil, apperror.BadRequest("Status must be present, absent or late")
		}
		if r.StudentID <= 0 {
			return nil, apperror.BadRequest("Student is required")
		}
		if r.AttendanceDate.IsZero() {
			r.AttendanceDate = day
		}
		r.AttendanceDate = today(r.AttendanceDate)
		if r.AttendanceDate.After(day) {
			return nil, apperror.BadRequest("Attendance cannot be marked for a future date")
		}

		if r.DriveID == nil {
			if !actor.IsAdmin() {
				return nil, apperror.Forbidden("Only admins can mark general attendance")
			}
		} else {
			if !checked[*r.DriveID] {
				d, err := u.drives.GetByID(ctx, *r.DriveID)
				if err != nil {
					return nil, notFound(err, "Drive")
				}
				if err := ownsCompany(ctx, u.companies, actor, d.CompanyID); err != nil {
					return nil, err
				}
				checked[*r.DriveID] = true
			}
			registered, err := u.drives.IsRegistered(ctx, *r.DriveID, r.StudentID)
			if err != nil {
				return nil, err
			}
			if !registered {
				return nil, apperror.BadRequest(fmt.Sprintf("Student %d is not registered for drive %d", r.StudentID, *r.DriveID))
			}
		}
		markedBy := actor.ID
		r.MarkedBy = &markedBy
	}

	if err := u.attendance.Upsert(ctx, records); err != nil {
		return nil, notFound(err, "Student")
	}
	publishScoped(ctx, u.events, eventScope{roles: domain.StaffRoles}, domain.TableAttendance, domain.EventInsert, records, "")

	stats, err := u.attendance.DailyStats(ctx, records[0].AttendanceDate)
	if err != nil {
		return nil, err
	}
	u.publishTodayStats(ctx, records, day, stats)
	return stats, nil
}

// publishTodayStats pushes today's counters when the batch touched today.
func (u *attendanceUsecase) publishTodayStats(ctx context.Context, records []domain.AttendanceRecord, day time.Time, stats *domain.AttendanceStats) {
	touched := slices.ContainsFunc(records, func(r domain.AttendanceRecord) bool {
		return r.AttendanceDate.Equal(day)
	})
	if !touched {
		return
	}
	if !records[0].AttendanceDate.Equal(day) {
		var err error
		if stats, err = u.attendance.DailyStats(ctx, day); err != nil {
			logWarn("load today's attendance stats failed", err)
			return
		}
	}
	publish(ctx, u.events, domain.TableAttendanceStats, domain.EventSnapshot, stats, "")
}

func (u *attendanceUsecase) ListAttendance(ctx context.Context, actor domain.Actor, date time.Time, driveID *int64) ([]domain.AttendanceRecord, error) {
	if actor.IsStudent() {
		return nil, apperror.Forbidden("Students cannot list attendance")
	}
	if driveID == nil && !actor.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can list general attendance")
	}
	if driveID != nil {
		d, err := u.drives.GetByID(ctx, *driveID)
		if err != nil {
			return nil, notFound(err, "Drive")
		}
		if err := ownsCompany(ctx, u.companies, actor, d.CompanyID); err != nil {
			return nil, err
		}
	}
	if date.IsZero() {
		date = u.now()
	}
	records, err := u.attendance.List(ctx, today(date), driveID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	return records, nil
}

func (u *attendanceUsecase) GetDailyStats(ctx context.Context, date time.Time) (*domain.AttendanceStats, error) {
	if date.IsZero() {
		date = u.now()
	}
	return u.attendance.DailyStats(ctx, today(date))
}

// GetStudentSummary lets students read only their own summary.
func (u *attendanceUsecase) GetStudentSummary(ctx context.Context, actor domain.Actor, studentID int64) (*domain.StudentAttendanceSummary, error) {
	if actor.IsStudent() {
		s, err := u.students.GetByProfileID(ctx, actor.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if s == nil || s.ID != studentID {
			return nil, apperror.Forbidden("You can only view your own attendance")
		}
	}
	return u.attendance.StudentSummary(ctx, studentID)
}

func (u *attendanceUsecase) RefreshStats(ctx context.Context) (*domain.AttendanceStats, error) {
	stats, err := u.attendance.DailyStats(ctx, today(u.now()))
	if err != nil {
		return nil, err
	}
	publish(ctx, u.events, domain.TableAttendanceStats, domain.EventSnapshot, stats, "")
	return stats, nil
}
