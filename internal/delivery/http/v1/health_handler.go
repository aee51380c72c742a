package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
}

func NewHealthHandler(public *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	public.GET("/health", handler.Check)
}

// Check godoc
// @Summary      Health check
// @Description  healthy, degraded (optional dependency down) or down (database unreachable)
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.HealthReport}
// @Failure      503  {object}  response.Response{data=domain.HealthReport}
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	report := h.healthUC.Check(c.Request.Context())
	if report.Status == "down" {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success:   false,
			Message:   "System unavailable",
			Data:      report,
			RequestID: c.GetString(string(domain.KeyRequestID)),
		})
		return
	}
	response.Success(c, http.StatusOK, "System "+report.Status, report)
}
