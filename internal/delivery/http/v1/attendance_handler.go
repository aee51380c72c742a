package v1

import (
	"net/http"
	"time"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type AttendanceHandler struct {
	attendanceUC domain.AttendanceUsecase
}

func NewAttendanceHandler(protected *gin.RouterGroup, attendanceUC domain.AttendanceUsecase) {
	handler := &AttendanceHandler{attendanceUC: attendanceUC}

	attendance := protected.Group("/attendance")
	{
		staff := attendance.Group("", middleware.RequireRole(domain.RoleAdmin, domain.RoleRecruiter))
		staff.POST("", handler.Mark)
		staff.GET("", handler.List)
		attendance.GET("/stats", middleware.RequireRole(domain.RoleAdmin), handler.Stats)
		attendance.GET("/students/:id", handler.StudentSummary)
	}
}

type AttendanceEntry struct {
	StudentID int64  `json:"student_id" binding:"required,gt=0"`
	DriveID   *int64 `json:"drive_id" binding:"omitempty,gt=0"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Status    string `json:"status" binding:"required,oneof=present absent late"`
}

type MarkAttendanceRequest struct {
	Records []AttendanceEntry `json:"records" binding:"required,min=1,max=500,dive"`
}

func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), true
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.Error(apperror.BadRequest("date must be formatted as YYYY-MM-DD"))
		return time.Time{}, false
	}
	return d, true
}

// Mark godoc
// @Summary      Mark attendance
// @Description  Upserts a batch keyed by student, drive and date. Future dates are rejected.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        body  body      MarkAttendanceRequest  true  "Attendance records"
// @Success      200   {object}  response.Response{data=domain.AttendanceStats}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /attendance [post]
// @Security     BearerAuth
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	records := make([]domain.AttendanceRecord, 0, len(req.Records))
	for _, e := range req.Records {
		d, ok := parseDate(c, e.Date)
		if !ok {
			return
		}
		records = append(records, domain.AttendanceRecord{
			StudentID:      e.StudentID,
			DriveID:        e.DriveID,
			AttendanceDate: d,
			Status:         e.Status,
		})
	}

	stats, err := h.attendanceUC.MarkAttendance(c.Request.Context(), actorOf(c), records)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Attendance saved", stats)
}

// List godoc
// @Summary      Attendance for a day
// @Tags         attendance
// @Produce      json
// @Param        date      query     string  false  "YYYY-MM-DD, defaults to today"
// @Param        drive_id  query     int     false  "Drive ID"
// @Success      200       {object}  response.Response
// @Router       /attendance [get]
// @Security     BearerAuth
func (h *AttendanceHandler) List(c *gin.Context) {
	d, ok := parseDate(c, c.Query("date"))
	if !ok {
		return
	}
	var driveID *int64
	if id := queryInt64(c, "drive_id"); id > 0 {
		driveID = &id
	}

	records, err := h.attendanceUC.ListAttendance(c.Request.Context(), actorOf(c), d, driveID)
	if err != nil {
		c.Error(err)
		return
	}
	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	response.Success(c, http.StatusOK, "Attendance", records)
}

// Stats godoc
// @Summary      Daily attendance statistics
// @Tags         attendance
// @Produce      json
// @Param        date  query     string  false  "YYYY-MM-DD, defaults to today"
// @Success      200   {object}  response.Response{data=domain.AttendanceStats}
// @Router       /attendance/stats [get]
// @Security     BearerAuth
func (h *AttendanceHandler) Stats(c *gin.Context) {
	d, ok := parseDate(c, c.Query("date"))
	if !ok {
		return
	}
	stats, err := h.attendanceUC.GetDailyStats(c.Request.Context(), d)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Attendance statistics", stats)
}

// StudentSummary godoc
// @Summary      Attendance summary of one student
// @Tags         attendance
// @Produce      json
// @Param        id   path      int  true  "Student ID"
// @Success      200  {object}  response.Response{data=domain.StudentAttendanceSummary}
// @Failure      403  {object}  response.Response
// @Router       /attendance/students/{id} [get]
// @Security     BearerAuth
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.attendanceUC.GetStudentSummary(c.Request.Context(), actorOf(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Attendance summary", summary)
}
