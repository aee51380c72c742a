package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type attendanceFixture struct {
	attendance *MockAttendanceRepo
	drives     *MockDriveRepo
	students   *MockStudentRepo
	companies  *MockCompanyRepo
	events     *recordingPublisher
	uc         domain.AttendanceUsecase
}

func newAttendanceFixture() *attendanceFixture {
	f := &attendanceFixture{
		attendance: new(MockAttendanceRepo),
		drives:     new(MockDriveRepo),
		students:   new(MockStudentRepo),
		companies:  new(MockCompanyRepo),
		events:     &recordingPublisher{},
	}
	f.uc = usecase.NewAttendanceUsecase(f.attendance, f.drives, f.students, f.companies, f.events)
	return f
}

func sameDay(day time.Time) any {
	return mock.MatchedBy(func(d time.Time) bool { return d.Equal(day) })
}

func TestMarkAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("Should forbid students", func(t *testing.T) {
		f := newAttendanceFixture()
		_, err := f.uc.MarkAttendance(ctx, studentActor, []domain.AttendanceRecord{{StudentID: 1, Status: domain.AttendancePresent}})
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should require at least one record", func(t *testing.T) {
		f := newAttendanceFixture()
		_, err := f.uc.MarkAttendance(ctx, adminActor, nil)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})

	t.Run("Should reject unknown statuses", func(t *testing.T) {
		f := newAttendanceFixture()
		_, err := f.uc.MarkAttendance(ctx, adminActor, []domain.AttendanceRecord{{StudentID: 1, Status: "excused"}})
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})

	t.Run("Should reject future dates", func(t *testing.T) {
		f := newAttendanceFixture()
		_, err := f.uc.MarkAttendance(ctx, adminActor, []domain.AttendanceRecord{{
			StudentID:      1,
			Status:         domain.AttendancePresent,
			AttendanceDate: time.Now().AddDate(0, 0, 2),
		}})
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
		assert.Contains(t, err.Error(), "future")
	})

	t.Run("Should keep general attendance for admins", func(t *testing.T) {
		f := newAttendanceFixture()
		_, err := f.uc.MarkAttendance(ctx, recruiterActor, []domain.AttendanceRecord{{StudentID: 1, Status: domain.AttendancePresent}})
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should require drive registration", func(t *testing.T) {
		f := newAttendanceFixture()
		f.drives.On("GetByID", mock.Anything, int64(4)).Return(&domain.CampusDrive{ID: 4, CompanyID: 5}, nil)
		f.companies.On("GetByOwnerID", mock.Anything, recruiterActor.ID).Return(&domain.Company{ID: 5}, nil)
		f.drives.On("IsRegistered", mock.Anything, int64(4), int64(1)).Return(false, nil)

		_, err := f.uc.MarkAttendance(ctx, recruiterActor, []domain.AttendanceRecord{{
			StudentID: 1,
			DriveID:   int64Ptr(4),
			Status:    domain.AttendancePresent,
		}})
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
		assert.Contains(t, err.Error(), "not registered for drive 4")
	})

	t.Run("Should upsert, stamp the marker and publish today's stats", func(t *testing.T) {
		f := newAttendanceFixture()
		stats := &domain.AttendanceStats{TotalStudents: 10, Present: 1, Late: 1}
		f.attendance.On("Upsert", mock.Anything, mock.MatchedBy(func(rs []domain.AttendanceRecord) bool {
			return len(rs) == 2 && rs[0].MarkedBy != nil && *rs[0].MarkedBy == adminActor.ID && !rs[1].AttendanceDate.IsZero()
		})).Return(nil)
		f.attendance.On("DailyStats", mock.Anything, mock.AnythingOfType("time.Time")).Return(stats, nil)

		got, err := f.uc.MarkAttendance(ctx, adminActor, []domain.AttendanceRecord{
			{StudentID: 1, Status: domain.AttendancePresent},
			{StudentID: 2, Status: domain.AttendanceLate},
		})
		require.NoError(t, err)
		assert.Equal(t, stats, got)
		assert.Equal(t, []string{"attendance:INSERT", "attendance_stats:SNAPSHOT"}, f.events.tables())
		assert.Equal(t, domain.StaffRoles, f.events.events[0].Roles)
		assert.False(t, f.events.events[0].VisibleTo(studentActor.ID, domain.RoleStudent))
	})

	t.Run("Should publish today's stats when any record is for today", func(t *testing.T) {
		f := newAttendanceFixture()
		day := time.Now().UTC().Truncate(24 * time.Hour)
		yesterday := day.AddDate(0, 0, -1)
		past := &domain.AttendanceStats{Date: yesterday.Format(time.DateOnly), Present: 4}
		current := &domain.AttendanceStats{Date: day.Format(time.DateOnly), Present: 1}
		f.attendance.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.attendance.On("DailyStats", mock.Anything, sameDay(yesterday)).Return(past, nil)
		f.attendance.On("DailyStats", mock.Anything, sameDay(day)).Return(current, nil)

		got, err := f.uc.MarkAttendance(ctx, adminActor, []domain.AttendanceRecord{
			{StudentID: 1, Status: domain.AttendancePresent, AttendanceDate: yesterday},
			{StudentID: 2, Status: domain.AttendancePresent, AttendanceDate: day},
		})
		require.NoError(t, err)
		assert.Equal(t, past, got)
		require.Equal(t, []string{"attendance:INSERT", "attendance_stats:SNAPSHOT"}, f.events.tables())
		assert.Equal(t, current, f.events.events[1].Record)
	})

	t.Run("Should not publish stats for a past day only", func(t *testing.T) {
		f := newAttendanceFixture()
		yesterday := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)
		f.attendance.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		f.attendance.On("DailyStats", mock.Anything, sameDay(yesterday)).Return(&domain.AttendanceStats{}, nil)

		_, err := f.uc.MarkAttendance(ctx, adminActor, []domain.AttendanceRecord{
			{StudentID: 1, Status: domain.AttendanceAbsent, AttendanceDate: yesterday},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"attendance:INSERT"}, f.events.tables())
	})
}

func TestGetStudentSummaryOwnership(t *testing.T) {
	f := newAttendanceFixture()
	f.students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(testStudent(), nil)
	f.attendance.On("StudentSummary", mock.Anything, int64(7)).Return(&domain.StudentAttendanceSummary{StudentID: 7, TotalDays: 4}, nil)

	_, err := f.uc.GetStudentSummary(context.Background(), studentActor, 8)
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	s, err := f.uc.GetStudentSummary(context.Background(), studentActor, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.TotalDays)
}

func TestRefreshStatsPublishesSnapshot(t *testing.T) {
	f := newAttendanceFixture()
	f.attendance.On("DailyStats", mock.Anything, mock.AnythingOfType("time.Time")).Return(&domain.AttendanceStats{Present: 3}, nil)

	_, err := f.uc.RefreshStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"attendance_stats:SNAPSHOT"}, f.events.tables())
}
