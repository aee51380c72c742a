package usecase_test

import (
	"context"
	"errors"
	"testing"

	"placement-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func okPing(context.Context) error   { return nil }
func failPing(context.Context) error { return errors.New("unreachable") }

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Should be healthy with disabled optionals", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(usecase.PingFunc(okPing), map[string]usecase.Pinger{"redis": nil})
		r := uc.Check(ctx)
		assert.Equal(t, "healthy", r.Status)
		assert.Equal(t, "up", r.Checks["database"])
		assert.Equal(t, "disabled", r.Checks["redis"])
	})

	t.Run("Should degrade when an optional dependency fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(usecase.PingFunc(okPing), map[string]usecase.Pinger{
			"redis":   usecase.PingFunc(failPing),
			"storage": usecase.PingFunc(okPing),
		})
		r := uc.Check(ctx)
		assert.Equal(t, "degraded", r.Status)
		assert.Equal(t, "down", r.Checks["redis"])
		assert.Equal(t, "up", r.Checks["storage"])
	})

	t.Run("Should be down when the database fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(usecase.PingFunc(failPing), map[string]usecase.Pinger{
			"redis": usecase.PingFunc(failPing),
		})
		r := uc.Check(ctx)
		assert.Equal(t, "down", r.Status)
		assert.Equal(t, "down", r.Checks["database"])
	})
}
