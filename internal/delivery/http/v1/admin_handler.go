package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	analyticsUC    domain.AnalyticsUsecase
	activityUC     domain.ActivityUsecase
	reportUC       domain.ReportUsecase
	notificationUC domain.NotificationUsecase
}

// NewAdminHandler registers admin routes; admin is expected to be guarded by RequireRole(admin).
func NewAdminHandler(admin *gin.RouterGroup, analyticsUC domain.AnalyticsUsecase, activityUC domain.ActivityUsecase,
	reportUC domain.ReportUsecase, notificationUC domain.NotificationUsecase) {
	handler := &AdminHandler{
		analyticsUC:    analyticsUC,
		activityUC:     activityUC,
		reportUC:       reportUC,
		notificationUC: notificationUC,
	}

	admin.GET("/dashboard", handler.Dashboard)
	admin.GET("/analytics", handler.Analytics)
	admin.GET("/activity", handler.ListActivity)
	admin.GET("/activity/recent", handler.RecentActivity)
	admin.GET("/reports/placements", handler.ExportPlacements)
	admin.POST("/notifications/broadcast", handler.Broadcast)
}

type BroadcastRequest struct {
	Role    string  `json:"role" binding:"required,oneof=admin student recruiter"`
	Type    string  `json:"type" binding:"omitempty,oneof=info success warning error"`
	Title   string  `json:"title" binding:"required,max=150"`
	Message string  `json:"message" binding:"required,max=2000"`
	Link    *string `json:"link" binding:"omitempty,max=500"`
}

// Dashboard godoc
// @Summary      Admin dashboard statistics
// @Description  Totals, applications by status, today's attendance and active users
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DashboardStats}
// @Failure      403  {object}  response.Response
// @Router       /admin/dashboard [get]
// @Security     BearerAuth
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.analyticsUC.GetDashboardStats(c.Request.Context(), actorOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard statistics", stats)
}

// Analytics godoc
// @Summary      Placement analytics
// @Tags         admin
// @Produce      json
// @Param        batch_year  query     int  false  "Batch year, all batches when omitted"
// @Success      200         {object}  response.Response{data=domain.PlacementAnalytics}
// @Router       /admin/analytics [get]
// @Security     BearerAuth
func (h *AdminHandler) Analytics(c *gin.Context) {
	result, err := h.analyticsUC.GetPlacementAnalytics(c.Request.Context(), actorOf(c), queryInt(c, "batch_year"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Placement analytics", result)
}

// ListActivity godoc
// @Summary      Activity log
// @Tags         admin
// @Produce      json
// @Param        actor_id   query     string  false  "Actor profile ID"
// @Param        entity     query     string  false  "Entity"
// @Param        action     query     string  false  "Action"
// @Param        since      query     string  false  "RFC3339 timestamp"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /admin/activity [get]
// @Security     BearerAuth
func (h *AdminHandler) ListActivity(c *gin.Context) {
	f := domain.ActivityFilter{
		ActorID: c.Query("actor_id"),
		Entity:  c.Query("entity"),
		Action:  c.Query("action"),
		Page:    pageOf(c),
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(apperror.BadRequest("since must be an RFC3339 timestamp"))
			return
		}
		f.Since = &since
	}

	result, err := h.activityUC.ListActivity(c.Request.Context(), actorOf(c), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Activity log", result)
}

// RecentActivity godoc
// @Summary      Most recent activity
// @Tags         admin
// @Produce      json
// @Param        n    query     int  false  "Number of entries (1-50, default 10)"
// @Success      200  {object}  response.Response
// @Router       /admin/activity/recent [get]
// @Security     BearerAuth
func (h *AdminHandler) RecentActivity(c *gin.Context) {
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
	logs, err := h.activityUC.RecentActivity(c.Request.Context(), actorOf(c), n)
	if err != nil {
		c.Error(err)
		return
	}
	if logs == nil {
		logs = []domain.ActivityLog{}
	}
	response.Success(c, http.StatusOK, "Recent activity", logs)
}

// ExportPlacements godoc
// @Summary      Export placement report
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        format       query  string  false  "xlsx (default) or csv"
// @Param        batch_year   query  int     false  "Batch year"
// @Param        departments  query  string  false  "Comma separated departments"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /admin/reports/placements [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportPlacements(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	data, filename, err := h.reportUC.ExportPlacements(c.Request.Context(), actorOf(c), format,
		queryInt(c, "batch_year"), queryList(c, "departments"))
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// Broadcast godoc
// @Summary      Notify every profile of a role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      BroadcastRequest  true  "Notification"
// @Success      201   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /admin/notifications/broadcast [post]
// @Security     BearerAuth
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Type == "" {
		req.Type = domain.NotificationInfo
	}

	n, err := h.notificationUC.Broadcast(c.Request.Context(), actorOf(c), req.Role, req.Type, req.Title, req.Message, req.Link)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Broadcast sent", gin.H{"recipients": n})
}
