package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		code int
	}{
		{"bad request", BadRequest("x"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("x"), http.StatusUnauthorized},
		{"forbidden", Forbidden("x"), http.StatusForbidden},
		{"not found", NotFound("x"), http.StatusNotFound},
		{"conflict", Conflict("x"), http.StatusConflict},
		{"unavailable", Unavailable("x"), http.StatusServiceUnavailable},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}

func TestAs(t *testing.T) {
	cause := errors.New("db down")
	wrapped := fmt.Errorf("listing jobs: %w", Internal(cause))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.ErrorIs(t, wrapped, cause)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
