package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsUC domain.SettingsUsecase
}

func NewSettingsHandler(protected *gin.RouterGroup, settingsUC domain.SettingsUsecase) {
	handler := &SettingsHandler{settingsUC: settingsUC}

	protected.GET("/settings", handler.Get)
	protected.PUT("/settings", middleware.RequireRole(domain.RoleAdmin), handler.Update)
}

// Get godoc
// @Summary      Portal settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.SystemSettings}
// @Router       /settings [get]
// @Security     BearerAuth
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settingsUC.GetSettings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Settings", s)
}

// Update godoc
// @Summary      Replace portal settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      domain.SystemSettings  true  "Settings JSON"
// @Success      200       {object}  response.Response{data=domain.SystemSettings}
// @Failure      400       {object}  response.Response
// @Router       /settings [put]
// @Security     BearerAuth
func (h *SettingsHandler) Update(c *gin.Context) {
	var s domain.SystemSettings
	if !bindJSON(c, &s) {
		return
	}
	saved, err := h.settingsUC.UpdateSettings(c.Request.Context(), actorOf(c), &s)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Settings updated", saved)
}
