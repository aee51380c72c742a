package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	protected.POST("/jobs/:id/apply", middleware.RequireRole(domain.RoleStudent), handler.Apply)
	protected.GET("/jobs/:id/applications", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter), handler.ListByJob)

	applications := protected.Group("/applications")
	{
		applications.GET("", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter), handler.List)
		applications.GET("/me", middleware.RequireRole(domain.RoleStudent), handler.ListMine)
		applications.GET("/:id", handler.Get)
		applications.PATCH("/:id/status", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter), handler.UpdateStatus)
		applications.DELETE("/:id", middleware.RequireRole(domain.RoleStudent), handler.Withdraw)
	}
}

// ApplyRequest is the request payload for applying to a job
type ApplyRequest struct {
	CoverLetter *string `json:"cover_letter" binding:"omitempty,max=5000"`
}

type UpdateApplicationStatusRequest struct {
	Status  string  `json:"status" binding:"required,oneof=pending shortlisted interviewed rejected accepted"`
	Remarks *string `json:"remarks" binding:"omitempty,max=2000"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  The resume is taken from the student record
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int           true   "Job ID"
// @Param        body  body      ApplyRequest  false  "Cover letter"
// @Success      201   {object}  response.Response{data=domain.JobApplication}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ApplyRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), actorOf(c), jobID, req.CoverLetter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// ListByJob godoc
// @Summary      Applications for a job
// @Tags         applications
// @Produce      json
// @Param        id         path      int     true   "Job ID"
// @Param        status     query     string  false  "Status filter"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status != "" && !domain.ValidApplicationStatus(status) {
		c.Error(apperror.BadRequest("Invalid status"))
		return
	}

	result, err := h.applicationUC.ListByJob(c.Request.Context(), actorOf(c), jobID, status, pageOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job applications", result)
}

// List godoc
// @Summary      List applications
// @Description  Recruiters are restricted to their own company
// @Tags         applications
// @Produce      json
// @Param        job_id      query     int     false  "Job ID"
// @Param        student_id  query     int     false  "Student ID"
// @Param        company_id  query     int     false  "Company ID"
// @Param        status      query     string  false  "Status"
// @Param        page        query     int     false  "Page number"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  response.Response
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) List(c *gin.Context) {
	f := domain.ApplicationFilter{
		JobID:     queryInt64(c, "job_id"),
		StudentID: queryInt64(c, "student_id"),
		CompanyID: queryInt64(c, "company_id"),
		Status:    c.Query("status"),
		Page:      pageOf(c),
	}
	if f.Status != "" && !domain.ValidApplicationStatus(f.Status) {
		c.Error(apperror.BadRequest("Invalid status"))
		return
	}

	result, err := h.applicationUC.ListApplications(c.Request.Context(), actorOf(c), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications", result)
}

// ListMine godoc
// @Summary      My applications
// @Tags         applications
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /applications/me [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	result, err := h.applicationUC.ListMine(c.Request.Context(), actorOf(c), pageOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "My applications", result)
}

// Get godoc
// @Summary      Application detail
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := h.applicationUC.GetApplication(c.Request.Context(), actorOf(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application detail", app)
}

// UpdateStatus godoc
// @Summary      Move an application through the hiring pipeline
// @Description  pending→shortlisted|rejected, shortlisted→interviewed|rejected, interviewed→accepted|rejected
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                             true  "Application ID"
// @Param        body  body      UpdateApplicationStatusRequest  true  "New status"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateApplicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	app, err := h.applicationUC.UpdateStatus(c.Request.Context(), actorOf(c), id, req.Status, req.Remarks)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", app)
}

// Withdraw godoc
// @Summary      Withdraw a pending application
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.applicationUC.Withdraw(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application withdrawn", nil)
}
