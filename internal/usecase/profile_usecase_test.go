package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"placement-backend/internal/domain"
	"placement-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSyncProfile(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := usecase.NewProfileUsecase(profiles, nil)

	t.Run("Should fail safely without a subject", func(t *testing.T) {
		_, err := uc.SyncProfile(context.Background(), "", "a@b.c", "A")
		assert.Equal(t, http.StatusUnauthorized, errCode(t, err))
	})

	t.Run("Should create new profiles as students", func(t *testing.T) {
		profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.ID == "u1" && p.Email == "asha@college.edu" && p.Role == domain.RoleStudent
		})).Return(nil).Once()

		p, err := uc.SyncProfile(context.Background(), "u1", " Asha@College.edu ", " Asha ")
		require.NoError(t, err)
		assert.Equal(t, "Asha", p.FullName)
		profiles.AssertExpectations(t)
	})
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Should only allow admins", func(t *testing.T) {
		uc := usecase.NewProfileUsecase(new(MockProfileRepo), nil)
		_, err := uc.AssignRole(ctx, recruiterActor, "u1", domain.RoleAdmin)
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should reject unknown roles", func(t *testing.T) {
		uc := usecase.NewProfileUsecase(new(MockProfileRepo), nil)
		_, err := uc.AssignRole(ctx, adminActor, "u1", "superuser")
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})

	t.Run("Should prevent self demotion", func(t *testing.T) {
		uc := usecase.NewProfileUsecase(new(MockProfileRepo), nil)
		_, err := uc.AssignRole(ctx, adminActor, adminActor.ID, domain.RoleStudent)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})

	t.Run("Should map a missing profile to 404", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		uc := usecase.NewProfileUsecase(profiles, nil)
		profiles.On("SetRole", mock.Anything, "u1", domain.RoleRecruiter).Return(nil, domain.ErrNotFound)

		_, err := uc.AssignRole(ctx, adminActor, "u1", domain.RoleRecruiter)
		assert.Equal(t, http.StatusNotFound, errCode(t, err))
	})
}

func TestSetDisabled(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := usecase.NewProfileUsecase(profiles, nil)

	_, err := uc.SetDisabled(context.Background(), adminActor, adminActor.ID, true)
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))

	profiles.On("SetDisabled", mock.Anything, "u1", true).Return(&domain.Profile{ID: "u1", IsDisabled: true}, nil)
	p, err := uc.SetDisabled(context.Background(), adminActor, "u1", true)
	require.NoError(t, err)
	assert.True(t, p.IsDisabled)
}

func TestUpdateOwnProfileValidatesName(t *testing.T) {
	uc := usecase.NewProfileUsecase(new(MockProfileRepo), nil)
	_, err := uc.UpdateOwnProfile(context.Background(), "u1", " A ", nil)
	assert.Equal(t, http.StatusBadRequest, errCode(t, err))
}
