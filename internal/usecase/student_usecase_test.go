package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"placement-backend/internal/domain"
	"placement-backend/internal/realtime"
	"placement-backend/internal/usecase"
	"placement-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStudent() *domain.Student {
	return &domain.Student{
		RollNumber: " 21cs042 ",
		FullName:   " Asha Rao ",
		Email:      " Asha@College.edu ",
		Department: "CSE",
		BatchYear:  2025,
		CGPA:       8.4,
		Skills:     []string{"Go", " go ", "SQL"},
	}
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("Should only allow admins", func(t *testing.T) {
		uc := usecase.NewStudentUsecase(new(MockStudentRepo), validation.New(), nil, nil)
		err := uc.CreateStudent(ctx, recruiterActor, newStudent())
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should normalize and clear placement of unplaced students", func(t *testing.T) {
		students := new(MockStudentRepo)
		events := &recordingPublisher{}
		uc := usecase.NewStudentUsecase(students, validation.New(), nil, events)
		students.On("Create", mock.Anything, mock.AnythingOfType("*domain.Student")).Return(nil)

		s := newStudent()
		s.PackageLPA = f64Ptr(10)
		require.NoError(t, uc.CreateStudent(ctx, adminActor, s))
		assert.Equal(t, "21CS042", s.RollNumber)
		assert.Equal(t, "Asha Rao", s.FullName)
		assert.Equal(t, "asha@college.edu", s.Email)
		assert.Equal(t, []string{"Go", "SQL"}, s.Skills)
		assert.Nil(t, s.PackageLPA)
		assert.Equal(t, []string{"students:INSERT"}, events.tables())
	})

	t.Run("Should map duplicate roll numbers to 409", func(t *testing.T) {
		students := new(MockStudentRepo)
		uc := usecase.NewStudentUsecase(students, validation.New(), nil, nil)
		students.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

		err := uc.CreateStudent(ctx, adminActor, newStudent())
		assert.Equal(t, http.StatusConflict, errCode(t, err))
	})

	t.Run("Should reject an out of range CGPA", func(t *testing.T) {
		uc := usecase.NewStudentUsecase(new(MockStudentRepo), validation.New(), nil, nil)
		s := newStudent()
		s.CGPA = 11
		err := uc.CreateStudent(ctx, adminActor, s)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})
}

func TestGetStudentOwnership(t *testing.T) {
	students := new(MockStudentRepo)
	uc := usecase.NewStudentUsecase(students, validation.New(), nil, nil)
	students.On("GetByID", mock.Anything, int64(1)).Return(&domain.Student{ID: 1, ProfileID: strPtr("someone-else")}, nil)
	students.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrNotFound)

	_, err := uc.GetStudent(context.Background(), studentActor, 1)
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	s, err := uc.GetStudent(context.Background(), recruiterActor, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)

	_, err = uc.GetStudent(context.Background(), adminActor, 2)
	assert.Equal(t, http.StatusNotFound, errCode(t, err))
}

func TestUpsertMyStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create the record on first save", func(t *testing.T) {
		students := new(MockStudentRepo)
		events := &recordingPublisher{}
		uc := usecase.NewStudentUsecase(students, validation.New(), nil, events)
		students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(nil, domain.ErrNotFound)
		students.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Student) bool {
			return s.ProfileID != nil && *s.ProfileID == studentActor.ID && !s.IsPlaced
		})).Return(nil)

		in := newStudent()
		in.IsPlaced = true
		s, err := uc.UpsertMyStudent(ctx, studentActor, in)
		require.NoError(t, err)
		assert.False(t, s.IsPlaced)
		assert.Equal(t, []string{"students:INSERT"}, events.tables())
	})

	t.Run("Should keep placement fields on update", func(t *testing.T) {
		students := new(MockStudentRepo)
		uc := usecase.NewStudentUsecase(students, validation.New(), nil, nil)
		students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(&domain.Student{
			ID: 7, IsPlaced: true, PlacedCompanyID: int64Ptr(5), PackageLPA: f64Ptr(12.5),
		}, nil)
		students.On("Update", mock.Anything, mock.AnythingOfType("*domain.Student")).Return(nil)

		in := newStudent()
		in.PackageLPA = f64Ptr(99)
		s, err := uc.UpsertMyStudent(ctx, studentActor, in)
		require.NoError(t, err)
		assert.Equal(t, int64(7), s.ID)
		assert.True(t, s.IsPlaced)
		assert.Equal(t, 12.5, *s.PackageLPA)
	})

	t.Run("Should forbid non-students", func(t *testing.T) {
		uc := usecase.NewStudentUsecase(new(MockStudentRepo), validation.New(), nil, nil)
		_, err := uc.UpsertMyStudent(ctx, adminActor, newStudent())
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})
}

func TestStudentEventsReachOnlyOwnerAndStaff(t *testing.T) {
	ctx := context.Background()
	hub := realtime.NewHub(4)
	owner := hub.Subscribe(ctx, realtime.SubscribeOptions{ProfileID: studentActor.ID, Role: domain.RoleStudent})
	other := hub.Subscribe(ctx, realtime.SubscribeOptions{ProfileID: "student-2", Role: domain.RoleStudent})
	recruiter := hub.Subscribe(ctx, realtime.SubscribeOptions{ProfileID: recruiterActor.ID, Role: domain.RoleRecruiter})

	students := new(MockStudentRepo)
	uc := usecase.NewStudentUsecase(students, validation.New(), nil, hub)
	students.On("GetByProfileID", mock.Anything, studentActor.ID).Return(nil, domain.ErrNotFound)
	students.On("Create", mock.Anything, mock.AnythingOfType("*domain.Student")).Return(nil)

	_, err := uc.UpsertMyStudent(ctx, studentActor, newStudent())
	require.NoError(t, err)

	assert.Equal(t, domain.TableStudents, (<-owner.C).Table)
	assert.Equal(t, domain.TableStudents, (<-recruiter.C).Table)
	select {
	case ev := <-other.C:
		t.Fatalf("another student received %+v", ev)
	default:
	}
}

func TestSearchStudents(t *testing.T) {
	ctx := context.Background()
	students := new(MockStudentRepo)
	uc := usecase.NewStudentUsecase(students, validation.New(), nil, nil)

	_, err := uc.SearchStudents(ctx, studentActor, domain.StudentFilter{})
	assert.Equal(t, http.StatusForbidden, errCode(t, err))

	_, err = uc.SearchStudents(ctx, adminActor, domain.StudentFilter{MinCGPA: f64Ptr(12)})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	_, err = uc.SearchStudents(ctx, adminActor, domain.StudentFilter{SortOrder: "sideways"})
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	students.On("Search", mock.Anything, mock.MatchedBy(func(f domain.StudentFilter) bool {
		return len(f.Departments) == 1 && f.Page.Page == 1 && f.Page.PageSize == domain.DefaultPageSize
	})).Return([]domain.Student{{ID: 1}, {ID: 2}}, int64(2), nil)

	res, err := uc.SearchStudents(ctx, recruiterActor, domain.StudentFilter{Departments: []string{"CSE", "cse", " "}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Data, 2)
}

func TestDeleteStudentPublishesDelete(t *testing.T) {
	students := new(MockStudentRepo)
	events := &recordingPublisher{}
	uc := usecase.NewStudentUsecase(students, validation.New(), nil, events)
	students.On("Delete", mock.Anything, int64(3)).Return(nil)

	require.NoError(t, uc.DeleteStudent(context.Background(), adminActor, 3))
	require.Len(t, events.events, 1)
	assert.Equal(t, "3", events.events[0].OldRecordID)
}
