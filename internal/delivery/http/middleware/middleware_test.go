package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID)))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(r, req).Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Header().Get(RequestIDHeader))
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"app error", apperror.Conflict("You have already applied to this job"), http.StatusConflict, "You have already applied to this job"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{"conflict", domain.ErrConflict, http.StatusConflict, "Resource already exists"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "An unexpected error occurred. Please try again later."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestID(), ErrorHandler())
			r.GET("/x", func(c *gin.Context) { _ = c.Error(tc.err) })

			w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tc.code, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Message)
			assert.NotEmpty(t, env.RequestID)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (*auth.Claims, error) {
	if strings.HasPrefix(token, "valid-") {
		sub := strings.TrimPrefix(token, "valid-")
		return &auth.Claims{Subject: sub, Email: sub + "@college.edu"}, nil
	}
	return nil, errors.New("bad token")
}

type fakeProfiles struct {
	profiles map[string]*domain.Profile
	synced   []string
}

func (f *fakeProfiles) GetCurrentProfile(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, apperror.NotFound("Profile not found")
}

func (f *fakeProfiles) SyncProfile(_ context.Context, id, email, _ string) (*domain.Profile, error) {
	f.synced = append(f.synced, id)
	p := &domain.Profile{ID: id, Email: email, Role: domain.RoleStudent}
	f.profiles[id] = p
	return p, nil
}

type fakePresence struct{ beats int }

func (p *fakePresence) Heartbeat(context.Context, string, string) error {
	p.beats++
	return nil
}

func (p *fakePresence) ActiveUsers(context.Context) (*domain.ActiveUsers, error) {
	return &domain.ActiveUsers{}, nil
}

func (p *fakePresence) Prune(context.Context) (int64, error) { return 0, nil }

func authRouter(profiles *fakeProfiles, presence domain.PresenceTracker) *gin.Engine {
	r := gin.New()
	protected := r.Group("/v1", AuthMiddleware(fakeVerifier{}, profiles, presence))
	handler := func(c *gin.Context) {
		a := CurrentActor(c)
		c.String(http.StatusOK, a.ID+"|"+a.Role)
	}
	protected.GET("/me", handler)
	protected.GET("/realtime/stream", handler)
	protected.GET("/admin", RequireRole(domain.RoleAdmin), handler)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*domain.Profile{
		"admin-1":    {ID: "admin-1", Role: domain.RoleAdmin},
		"disabled-1": {ID: "disabled-1", Role: domain.RoleStudent, IsDisabled: true},
	}}
	presence := &fakePresence{}
	r := authRouter(profiles, presence)

	t.Run("Should reject missing tokens", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject invalid tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer forged")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("Should load the role from the profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer valid-admin-1")
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin-1|admin", w.Body.String())
		assert.Greater(t, presence.beats, 0)
	})

	t.Run("Should create a student profile on first login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "valid-new-1"})
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "new-1|student", w.Body.String())
		assert.Equal(t, []string{"new-1"}, profiles.synced)
	})

	t.Run("Should block disabled accounts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer valid-disabled-1")
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	})

	t.Run("Should accept a query token only on the stream", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/realtime/stream?access_token=valid-admin-1", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = serve(r, httptest.NewRequest(http.MethodGet, "/v1/me?access_token=valid-admin-1", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should enforce roles", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin", nil)
		req.Header.Set("Authorization", "Bearer valid-new-1")
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

		req = httptest.NewRequest(http.MethodGet, "/v1/admin", nil)
		req.Header.Set("Authorization", "Bearer valid-admin-1")
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://portal.college.edu/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://portal.college.edu")
	w := serve(r, req)
	assert.Equal(t, "https://portal.college.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://portal.college.edu")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	wildcard := gin.New()
	wildcard.Use(CORSMiddleware([]string{"*"}))
	wildcard.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", serve(wildcard, req).Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddlewareInMemory(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(GlobalRateLimitConfig(2, time.Minute), nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, http.StatusOK, serve(r, req).Code, "limits are per client")
}

type staticSettings struct {
	s   *domain.SystemSettings
	err error
}

func (s staticSettings) GetSettings(context.Context) (*domain.SystemSettings, error) {
	return s.s, s.err
}

func TestMaintenanceMiddleware(t *testing.T) {
	build := func(settings SettingsReader, role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(string(domain.KeyUserRole), role)
			c.Next()
		})
		r.Use(MaintenanceMiddleware(settings))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}
	on := staticSettings{s: &domain.SystemSettings{MaintenanceMode: true}}

	r := build(on, domain.RoleStudent)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)

	r = build(on, domain.RoleAdmin)
	assert.Equal(t, http.StatusCreated, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)

	r = build(staticSettings{err: errors.New("db down")}, domain.RoleStudent)
	assert.Equal(t, http.StatusCreated, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CSRFMiddleware(false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), CSRFTokenCookieName+"=")

	t.Run("Should skip bearer requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer t")
		assert.Equal(t, http.StatusCreated, serve(r, req).Code)
	})

	t.Run("Should require the header for cookie sessions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "t"})
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

		req.Header.Set(CSRFTokenHeaderName, "wrong")
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

		req.Header.Set(CSRFTokenHeaderName, "abc")
		assert.Equal(t, http.StatusCreated, serve(r, req).Code)
	})
}
