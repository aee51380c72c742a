package middleware

import (
	"context"
	"net/http"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SettingsReader is satisfied by domain.SettingsUsecase.
type SettingsReader interface {
	GetSettings(ctx context.Context) (*domain.SystemSettings, error)
}

// MaintenanceMiddleware rejects writes from non-admins while maintenance mode is on.
// Reads stay available. Must run after AuthMiddleware.
func MaintenanceMiddleware(settings SettingsReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if c.GetString(string(domain.KeyUserRole)) == domain.RoleAdmin {
			c.Next()
			return
		}

		s, err := settings.GetSettings(c.Request.Context())
		if err != nil {
			logger.Log.Warn("maintenance check failed", "error", err)
			c.Next()
			return
		}
		if s.MaintenanceMode {
			response.Error(c, http.StatusServiceUnavailable, "The portal is under maintenance. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
