package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	// Students only ever see open jobs (enforced in the use case)
	jobs := protected.Group("/jobs")
	{
		jobs.GET("", handler.List)
		jobs.GET("/:id", handler.GetDetails)

		manage := jobs.Group("", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter))
		manage.POST("", handler.Create)
		manage.PUT("/:id", handler.Update)
		manage.PATCH("/:id/status", handler.SetStatus)
		manage.DELETE("/:id", handler.Delete)
	}
}

type JobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft open closed"`
}

// List godoc
// @Summary      List jobs
// @Description  Search matches title, description, company name and location case-insensitively
// @Tags         jobs
// @Produce      json
// @Param        search      query     string  false  "Search term"
// @Param        job_type    query     string  false  "full_time, internship, part_time or contract"
// @Param        company_id  query     int     false  "Company ID"
// @Param        status      query     string  false  "draft, open or closed"
// @Param        department  query     string  false  "Only jobs this department is eligible for"
// @Param        page        query     int     false  "Page number"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  response.Response
// @Failure      400         {object}  response.Response
// @Router       /jobs [get]
// @Security     BearerAuth
func (h *JobHandler) List(c *gin.Context) {
	f := domain.JobFilter{
		Search:     c.Query("search"),
		JobType:    c.Query("job_type"),
		CompanyID:  queryInt64(c, "company_id"),
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Page:       pageOf(c),
	}
	if f.JobType != "" && !domain.ValidJobType(f.JobType) {
		c.Error(apperror.BadRequest("Invalid job type"))
		return
	}

	result, err := h.jobUC.ListJobs(c.Request.Context(), actorOf(c), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job list", result)
}

// GetDetails godoc
// @Summary      Get job details
// @Description  Get detailed info of a job with company name and logo
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetDetails(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobUC.GetJob(c.Request.Context(), actorOf(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job details", job)
}

// Create godoc
// @Summary      Create a new job
// @Description  Create a job posting (admin or the company's recruiter)
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      domain.Job  true  "Job JSON"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var job domain.Job
	if !bindJSON(c, &job) {
		return
	}
	if err := h.jobUC.CreateJob(c.Request.Context(), actorOf(c), &job); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

// Update godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      int         true  "Job ID"
// @Param        job  body      domain.Job  true  "Job JSON"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var job domain.Job
	if !bindJSON(c, &job) {
		return
	}
	job.ID = id
	if err := h.jobUC.UpdateJob(c.Request.Context(), actorOf(c), &job); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated successfully", job)
}

// SetStatus godoc
// @Summary      Change job status
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Job ID"
// @Param        body  body      JobStatusRequest  true  "Status"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /jobs/{id}/status [patch]
// @Security     BearerAuth
func (h *JobHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req JobStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.jobUC.SetJobStatus(c.Request.Context(), actorOf(c), id, req.Status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job status updated", gin.H{"id": id, "status": req.Status})
}

// Delete godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.jobUC.DeleteJob(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted successfully", nil)
}
