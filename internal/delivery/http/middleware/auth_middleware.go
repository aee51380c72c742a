package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/auth"
	"placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ProfileLoader resolves the caller's profile, creating it on first login.
type ProfileLoader interface {
	GetCurrentProfile(ctx context.Context, id string) (*domain.Profile, error)
	SyncProfile(ctx context.Context, id, email, fullName string) (*domain.Profile, error)
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie
	}
	// EventSource cannot set headers, so the stream endpoint accepts a query token.
	if strings.HasSuffix(c.FullPath(), "/realtime/stream") {
		return c.Query("access_token")
	}
	return ""
}

// AuthMiddleware verifies the access token and loads the profile.
// The role always comes from the profile row, never from the token.
func AuthMiddleware(verifier TokenVerifier, profiles ProfileLoader, presence domain.PresenceTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			logger.Log.Debug("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		profile, err := profiles.GetCurrentProfile(ctx, claims.Subject)
		if err != nil && isNotFound(err) {
			profile, err = profiles.SyncProfile(ctx, claims.Subject, claims.Email, "")
		}
		if err != nil {
			logger.Log.Error("load profile failed", "subject", claims.Subject, "error", err)
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}
		if profile.IsDisabled {
			response.Error(c, http.StatusForbidden, "Your account has been disabled", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), profile.ID)
		c.Set(string(domain.KeyUserEmail), profile.Email)
		c.Set(string(domain.KeyUserRole), profile.Role)

		if presence != nil {
			if err := presence.Heartbeat(ctx, profile.ID, profile.Role); err != nil {
				logger.Log.Debug("presence heartbeat failed", "error", err)
			}
		}

		c.Next()
	}
}

func isNotFound(err error) bool {
	if errors.Is(err, domain.ErrNotFound) {
		return true
	}
	appErr, ok := apperror.As(err)
	return ok && appErr.Code == http.StatusNotFound
}

// CurrentActor returns the authenticated caller set by AuthMiddleware.
func CurrentActor(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetString(string(domain.KeyUserID)),
		Role: c.GetString(string(domain.KeyUserRole)),
	}
}

// RequireRole aborts with 403 unless the caller has one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "You do not have permission to access this resource", nil)
		c.Abort()
	}
}
