package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/internal/usecase"
	"placement-backend/pkg/cache"
	"placement-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func scheduledDrive() *domain.CampusDrive {
	return &domain.CampusDrive{
		ID:                   4,
		CompanyID:            5,
		Title:                "Acme Hiring Day",
		Venue:                "Main Auditorium",
		DriveDate:            time.Now().Add(7 * 24 * time.Hour),
		RegistrationDeadline: time.Now().Add(5 * 24 * time.Hour),
		MinCGPA:              7,
		Status:               domain.DriveStatusScheduled,
		CompanyName:          "Acme",
	}
}

func TestRegisterForDrive(t *testing.T) {
	ctx := context.Background()

	newUC := func() (*MockDriveRepo, *MockStudentRepo, *recordingPublisher, domain.DriveUsecase) {
		drives, students := new(MockDriveRepo), new(MockStudentRepo)
		events := &recordingPublisher{}
		uc := usecase.NewDriveUsecase(drives, students, new(MockCompanyRepo), nil, cache.NewMemoryCache(), validation.New(), nil, events)
		return drives, students, events, uc
	}

	t.Run("Should forbid non-students", func(t *testing.T) {
		_, _, _, uc := newUC()
		err := uc.Register(ctx, adminActor, 4)
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should close registration after the deadline", func(t *testing.T) {
		drives, students, _, uc := newUC()
		d := scheduledDrive()
		d.RegistrationDeadline = time.Now().Add(-time.Minute)
		students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(testStudent(), nil)
		drives.On("GetByID", mock.Anything, int64(4)).Return(d, nil)

		err := uc.Register(ctx, studentActor, 4)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
		assert.Contains(t, err.Error(), "deadline")
	})

	t.Run("Should close registration for cancelled drives", func(t *testing.T) {
		drives, students, _, uc := newUC()
		d := scheduledDrive()
		d.Status = domain.DriveStatusCancelled
		students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(testStudent(), nil)
		drives.On("GetByID", mock.Anything, int64(4)).Return(d, nil)

		err := uc.Register(ctx, studentActor, 4)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})

	t.Run("Should report duplicate registration as conflict", func(t *testing.T) {
		drives, students, _, uc := newUC()
		students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(testStudent(), nil)
		drives.On("GetByID", mock.Anything, int64(4)).Return(scheduledDrive(), nil)
		drives.On("Register", mock.Anything, int64(4), int64(7)).Return(domain.ErrConflict)

		err := uc.Register(ctx, studentActor, 4)
		assert.Equal(t, http.StatusConflict, errCode(t, err))
	})

	t.Run("Should register and publish the new count", func(t *testing.T) {
		drives, students, events, uc := newUC()
		d := scheduledDrive()
		d.RegistrationCount = 2
		students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(testStudent(), nil)
		drives.On("GetByID", mock.Anything, int64(4)).Return(d, nil)
		drives.On("Register", mock.Anything, int64(4), int64(7)).Return(nil)

		require.NoError(t, uc.Register(ctx, studentActor, 4))
		require.Len(t, events.events, 1)
		assert.Equal(t, 3, events.events[0].Record.(*domain.CampusDrive).RegistrationCount)
	})
}

func TestSendDriveReminders(t *testing.T) {
	ctx := context.Background()
	drives := new(MockDriveRepo)
	notifier := new(MockNotifier)
	sent := cache.NewMemoryCache()
	uc := usecase.NewDriveUsecase(drives, new(MockStudentRepo), new(MockCompanyRepo), notifier, sent, validation.New(), nil, nil)

	drives.On("StartingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]domain.CampusDrive{*scheduledDrive()}, nil)
	drives.On("ListRegistrations", mock.Anything, int64(4)).Return([]domain.DriveRegistration{
		{DriveID: 4, StudentID: 7, StudentProfileID: strPtr("s7")},
		{DriveID: 4, StudentID: 8},
	}, nil)
	notifier.On("Notify", mock.Anything, "s7", domain.NotificationInfo, "Upcoming campus drive", mock.Anything, mock.Anything).Return(nil).Once()

	n, err := uc.SendReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = uc.SendReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "reminders are sent once per drive and student")
	notifier.AssertExpectations(t)
}

func TestSendDriveRemindersRetriesFailedNotifications(t *testing.T) {
	ctx := context.Background()
	drives := new(MockDriveRepo)
	notifier := new(MockNotifier)
	uc := usecase.NewDriveUsecase(drives, new(MockStudentRepo), new(MockCompanyRepo), notifier, cache.NewMemoryCache(), validation.New(), nil, nil)

	drives.On("StartingBetween", mock.Anything, mock.Anything, mock.Anything).Return([]domain.CampusDrive{*scheduledDrive()}, nil)
	drives.On("ListRegistrations", mock.Anything, int64(4)).Return([]domain.DriveRegistration{
		{DriveID: 4, StudentID: 7, StudentProfileID: strPtr("s7")},
	}, nil)
	notifier.On("Notify", mock.Anything, "s7", domain.NotificationInfo, "Upcoming campus drive", mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused")).Once()
	notifier.On("Notify", mock.Anything, "s7", domain.NotificationInfo, "Upcoming campus drive", mock.Anything, mock.Anything).
		Return(nil).Once()

	n, err := uc.SendReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = uc.SendReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a failed reminder is retried on the next run")

	n, err = uc.SendReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	notifier.AssertExpectations(t)
}
