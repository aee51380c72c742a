package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type DriveHandler struct {
	driveUC domain.DriveUsecase
}

func NewDriveHandler(protected *gin.RouterGroup, driveUC domain.DriveUsecase) {
	handler := &DriveHandler{driveUC: driveUC}

	drives := protected.Group("/drives")
	{
		drives.GET("", handler.List)
		drives.GET("/:id", handler.Get)

		manage := drives.Group("", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter))
		manage.POST("", handler.Create)
		manage.PUT("/:id", handler.Update)
		manage.PATCH("/:id/status", handler.SetStatus)
		manage.DELETE("/:id", handler.Delete)
		manage.GET("/:id/registrations", handler.ListRegistrations)

		drives.POST("/:id/register", middleware.RequireRole(domain.RoleStudent), handler.Register)
		drives.DELETE("/:id/register", middleware.RequireRole(domain.RoleStudent), handler.Unregister)
	}
}

type DriveStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=scheduled ongoing completed cancelled"`
}

// List godoc
// @Summary      List campus drives
// @Tags         drives
// @Produce      json
// @Param        status      query     string  false  "scheduled, ongoing, completed or cancelled"
// @Param        company_id  query     int     false  "Company ID"
// @Param        upcoming    query     bool    false  "Only future scheduled/ongoing drives, soonest first"
// @Param        page        query     int     false  "Page number"
// @Param        page_size   query     int     false  "Page size"
// @Success      200         {object}  response.Response
// @Router       /drives [get]
// @Security     BearerAuth
func (h *DriveHandler) List(c *gin.Context) {
	f := domain.DriveFilter{
		Status:    c.Query("status"),
		CompanyID: queryInt64(c, "company_id"),
		Page:      pageOf(c),
	}
	if upcoming := queryBool(c, "upcoming"); upcoming != nil {
		f.Upcoming = *upcoming
	}

	result, err := h.driveUC.ListDrives(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Drive list", result)
}

// Get godoc
// @Summary      Get campus drive
// @Tags         drives
// @Produce      json
// @Param        id   path      int  true  "Drive ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /drives/{id} [get]
// @Security     BearerAuth
func (h *DriveHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	drive, err := h.driveUC.GetDrive(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Drive details", drive)
}

// Create godoc
// @Summary      Schedule a campus drive
// @Tags         drives
// @Accept       json
// @Produce      json
// @Param        drive  body      domain.CampusDrive  true  "Drive JSON"
// @Success      201    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /drives [post]
// @Security     BearerAuth
func (h *DriveHandler) Create(c *gin.Context) {
	var d domain.CampusDrive
	if !bindJSON(c, &d) {
		return
	}
	if err := h.driveUC.CreateDrive(c.Request.Context(), actorOf(c), &d); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Drive created", d)
}

// Update godoc
// @Summary      Update a campus drive
// @Tags         drives
// @Accept       json
// @Produce      json
// @Param        id     path      int                 true  "Drive ID"
// @Param        drive  body      domain.CampusDrive  true  "Drive JSON"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /drives/{id} [put]
// @Security     BearerAuth
func (h *DriveHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var d domain.CampusDrive
	if !bindJSON(c, &d) {
		return
	}
	d.ID = id
	if err := h.driveUC.UpdateDrive(c.Request.Context(), actorOf(c), &d); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Drive updated", d)
}

// SetStatus godoc
// @Summary      Change drive status
// @Description  scheduled→ongoing|cancelled, ongoing→completed|cancelled
// @Tags         drives
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Drive ID"
// @Param        body  body      DriveStatusRequest  true  "Status"
// @Success      200   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /drives/{id}/status [patch]
// @Security     BearerAuth
func (h *DriveHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req DriveStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.driveUC.SetDriveStatus(c.Request.Context(), actorOf(c), id, req.Status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Drive status updated", gin.H{"id": id, "status": req.Status})
}

// Delete godoc
// @Summary      Delete a campus drive
// @Tags         drives
// @Produce      json
// @Param        id   path      int  true  "Drive ID"
// @Success      200  {object}  response.Response
// @Router       /drives/{id} [delete]
// @Security     BearerAuth
func (h *DriveHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.driveUC.DeleteDrive(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Drive deleted", nil)
}

// Register godoc
// @Summary      Register for a drive
// @Tags         drives
// @Produce      json
// @Param        id   path      int  true  "Drive ID"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /drives/{id}/register [post]
// @Security     BearerAuth
func (h *DriveHandler) Register(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.driveUC.Register(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Registered for drive", gin.H{"drive_id": id})
}

// Unregister godoc
// @Summary      Cancel a drive registration
// @Tags         drives
// @Produce      json
// @Param        id   path      int  true  "Drive ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /drives/{id}/register [delete]
// @Security     BearerAuth
func (h *DriveHandler) Unregister(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.driveUC.Unregister(c.Request.Context(), actorOf(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration cancelled", nil)
}

// ListRegistrations godoc
// @Summary      Drive registrations
// @Tags         drives
// @Produce      json
// @Param        id   path      int  true  "Drive ID"
// @Success      200  {object}  response.Response
// @Router       /drives/{id}/registrations [get]
// @Security     BearerAuth
func (h *DriveHandler) ListRegistrations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	regs, err := h.driveUC.ListRegistrations(c.Request.Context(), actorOf(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	if regs == nil {
		regs = []domain.DriveRegistration{}
	}
	response.Success(c, http.StatusOK, "Drive registrations", regs)
}
