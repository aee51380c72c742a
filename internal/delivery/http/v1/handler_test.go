package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/domain"
	"placement-backend/internal/realtime"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testRouter stands in for AuthMiddleware by trusting X-Test-Role.
func testRouter() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	protected := r.Group("/v1", func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), "user-1")
		c.Set(string(domain.KeyUserRole), c.GetHeader("X-Test-Role"))
		c.Next()
	})
	return r, protected
}

func do(r *gin.Engine, method, path, role, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubJobUC struct {
	domain.JobUsecase
	filter domain.JobFilter
	actor  domain.Actor
}

func (s *stubJobUC) ListJobs(_ context.Context, actor domain.Actor, f domain.JobFilter) (*domain.PaginatedResult[domain.Job], error) {
	s.actor, s.filter = actor, f
	return domain.NewPaginatedResult([]domain.Job{{ID: 1, Title: "Backend Engineer"}}, 1, f.Page), nil
}

func (s *stubJobUC) GetJob(_ context.Context, _ domain.Actor, id int64) (*domain.Job, error) {
	if id == 404 {
		return nil, apperror.NotFound("Job not found")
	}
	return &domain.Job{ID: id}, nil
}

func TestJobListParsesFilters(t *testing.T) {
	r, protected := testRouter()
	uc := &stubJobUC{}
	NewJobHandler(protected, uc)

	w := do(r, http.MethodGet, "/v1/jobs?search=go&job_type=internship&company_id=5&department=CSE&page=2&page_size=500", domain.RoleStudent, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", uc.filter.Search)
	assert.Equal(t, domain.JobTypeInternship, uc.filter.JobType)
	assert.Equal(t, int64(5), uc.filter.CompanyID)
	assert.Equal(t, "CSE", uc.filter.Department)
	assert.Equal(t, domain.Page{Page: 2, PageSize: domain.MaxPageSize}, uc.filter.Page)
	assert.Equal(t, domain.Actor{ID: "user-1", Role: domain.RoleStudent}, uc.actor)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Total int64        `json:"total"`
			Data  []domain.Job `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(1), body.Data.Total)

	w = do(r, http.MethodGet, "/v1/jobs?job_type=freelance", domain.RoleStudent, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobGetMapsErrors(t *testing.T) {
	r, protected := testRouter()
	NewJobHandler(protected, &stubJobUC{})

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/v1/jobs/abc", domain.RoleStudent, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/v1/jobs/-3", domain.RoleStudent, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/jobs/404", domain.RoleStudent, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/jobs/7", domain.RoleStudent, "").Code)
}

func TestJobManageRoutesRequireRole(t *testing.T) {
	r, protected := testRouter()
	NewJobHandler(protected, &stubJobUC{})

	w := do(r, http.MethodPost, "/v1/jobs", domain.RoleStudent, `{"title":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(r, http.MethodDelete, "/v1/jobs/1", domain.RoleStudent, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type stubApplicationUC struct {
	domain.ApplicationUsecase
	coverLetter *string
}

func (s *stubApplicationUC) Apply(_ context.Context, _ domain.Actor, jobID int64, coverLetter *string) (*domain.JobApplication, error) {
	s.coverLetter = coverLetter
	if jobID == 9 {
		return nil, apperror.Conflict("You have already applied to this job")
	}
	return &domain.JobApplication{ID: 1, JobID: jobID, Status: domain.ApplicationStatusPending}, nil
}

func TestApply(t *testing.T) {
	r, protected := testRouter()
	uc := &stubApplicationUC{}
	NewApplicationHandler(protected, uc)

	t.Run("Should only accept students", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/jobs/3/apply", domain.RoleRecruiter, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should accept an empty body", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/jobs/3/apply", domain.RoleStudent, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Nil(t, uc.coverLetter)
	})

	t.Run("Should pass the cover letter", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/jobs/3/apply", domain.RoleStudent, `{"cover_letter":"Hire me"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, uc.coverLetter)
		assert.Equal(t, "Hire me", *uc.coverLetter)
	})

	t.Run("Should render use case errors", func(t *testing.T) {
		w := do(r, http.MethodPost, "/v1/jobs/9/apply", domain.RoleStudent, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "already applied")
	})
}

type stubStudentUC struct {
	domain.StudentUsecase
	filter domain.StudentFilter
}

func (s *stubStudentUC) SearchStudents(_ context.Context, _ domain.Actor, f domain.StudentFilter) (*domain.PaginatedResult[domain.Student], error) {
	s.filter = f
	return domain.NewPaginatedResult[domain.Student](nil, 0, f.Page), nil
}

func TestStudentSearchParsesFilters(t *testing.T) {
	r, protected := testRouter()
	uc := &stubStudentUC{}
	NewStudentHandler(protected, uc)

	w := do(r, http.MethodGet, "/v1/students?departments=CSE,ECE&departments=ME&min_cgpa=7.5&is_placed=false&skills=go&batch_year=2025", domain.RoleRecruiter, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"CSE", "ECE", "ME"}, uc.filter.Departments)
	require.NotNil(t, uc.filter.MinCGPA)
	assert.Equal(t, 7.5, *uc.filter.MinCGPA)
	require.NotNil(t, uc.filter.IsPlaced)
	assert.False(t, *uc.filter.IsPlaced)
	assert.Equal(t, 2025, uc.filter.BatchYear)

	w = do(r, http.MethodGet, "/v1/students?min_cgpa=high", domain.RoleAdmin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/students", domain.RoleStudent, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type stubHealthUC struct{ report *domain.HealthReport }

func (s stubHealthUC) Check(context.Context) *domain.HealthReport { return s.report }

func TestHealthHandler(t *testing.T) {
	for status, code := range map[string]int{"healthy": http.StatusOK, "degraded": http.StatusOK, "down": http.StatusServiceUnavailable} {
		r := gin.New()
		NewHealthHandler(r.Group("/v1"), stubHealthUC{report: &domain.HealthReport{Status: status, Checks: map[string]string{"database": "up"}}})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
		assert.Equal(t, code, w.Code, status)
		assert.Contains(t, w.Body.String(), `"status":"`+status+`"`)
	}
}

func TestStreamOptionsCarryCaller(t *testing.T) {
	var got realtime.SubscribeOptions
	r, protected := testRouter()
	protected.GET("/opts", func(c *gin.Context) {
		opts, err := streamOptions(c)
		if err != nil {
			c.Error(err)
			return
		}
		got = opts
		c.Status(http.StatusNoContent)
	})

	w := do(r, http.MethodGet, "/v1/opts?tables=jobs,applications&search=go", domain.RoleStudent, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user-1", got.ProfileID)
	assert.Equal(t, domain.RoleStudent, got.Role)
	assert.Equal(t, []string{domain.TableJobs, domain.TableApplications}, got.Tables)
	require.NotNil(t, got.JobFilter)
	assert.Equal(t, "go", got.JobFilter.Search)

	w = do(r, http.MethodGet, "/v1/opts?job_type=gig", domain.RoleStudent, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
