package middleware

import (
	"errors"
	"net/http"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if appErr, ok := apperror.As(err); ok {
			if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
				logger.Log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(string(domain.KeyRequestID)), "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		switch {
		case errors.Is(err, domain.ErrNotFound):
			response.Error(c, http.StatusNotFound, "Resource not found", nil)
		case errors.Is(err, domain.ErrConflict):
			response.Error(c, http.StatusConflict, "Resource already exists", nil)
		default:
			// Never expose internal error details to clients.
			logger.Log.Error("internal server error",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(string(domain.KeyRequestID)),
				"error", err,
			)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
