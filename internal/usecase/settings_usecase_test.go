package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"placement-backend/internal/domain"
	"placement-backend/internal/usecase"
	"placement-backend/pkg/cache"
	"placement-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("Should fall back to defaults when the row is missing", func(t *testing.T) {
		repo := new(MockSettingsRepo)
		uc := usecase.NewSettingsUsecase(repo, cache.NewMemoryCache(), validation.New(), nil, nil)
		repo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound)

		s, err := uc.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultSettings().MaxApplicationsPerStudent, s.MaxApplicationsPerStudent)
	})

	t.Run("Should serve repeated reads from cache", func(t *testing.T) {
		repo := new(MockSettingsRepo)
		uc := usecase.NewSettingsUsecase(repo, cache.NewMemoryCache(), validation.New(), nil, nil)
		stored := domain.DefaultSettings()
		stored.MaintenanceMode = true
		repo.On("Get", mock.Anything).Return(&stored, nil).Once()

		for i := 0; i < 3; i++ {
			s, err := uc.GetSettings(ctx)
			require.NoError(t, err)
			assert.True(t, s.MaintenanceMode)
		}
		repo.AssertNumberOfCalls(t, "Get", 1)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("Should only allow admins", func(t *testing.T) {
		uc := usecase.NewSettingsUsecase(new(MockSettingsRepo), cache.NewMemoryCache(), validation.New(), nil, nil)
		s := domain.DefaultSettings()
		_, err := uc.UpdateSettings(ctx, recruiterActor, &s)
		assert.Equal(t, http.StatusForbidden, errCode(t, err))
	})

	t.Run("Should validate bounds", func(t *testing.T) {
		uc := usecase.NewSettingsUsecase(new(MockSettingsRepo), cache.NewMemoryCache(), validation.New(), nil, nil)
		s := domain.DefaultSettings()
		s.MaxApplicationsPerStudent = 0
		_, err := uc.UpdateSettings(ctx, adminActor, &s)
		assert.Equal(t, http.StatusBadRequest, errCode(t, err))
	})

	t.Run("Should persist, invalidate the cache and publish", func(t *testing.T) {
		repo := new(MockSettingsRepo)
		events := &recordingPublisher{}
		uc := usecase.NewSettingsUsecase(repo, cache.NewMemoryCache(), validation.New(), nil, events)

		old := domain.DefaultSettings()
		repo.On("Get", mock.Anything).Return(&old, nil).Once()
		_, err := uc.GetSettings(ctx)
		require.NoError(t, err)

		updated := domain.DefaultSettings()
		updated.MaintenanceMode = true
		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		_, err = uc.UpdateSettings(ctx, adminActor, &updated)
		require.NoError(t, err)
		require.NotNil(t, updated.UpdatedBy)
		assert.Equal(t, adminActor.ID, *updated.UpdatedBy)
		assert.Equal(t, []string{"system_settings:UPDATE"}, events.tables())

		repo.On("Get", mock.Anything).Return(&updated, nil).Once()
		s, err := uc.GetSettings(ctx)
		require.NoError(t, err)
		assert.True(t, s.MaintenanceMode)
	})
}
