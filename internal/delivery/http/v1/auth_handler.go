package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	profileUC domain.ProfileUsecase
}

func NewAuthHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &AuthHandler{profileUC: profileUC}

	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/sync", handler.Sync)
		authGroup.GET("/me", handler.Me)
		authGroup.PUT("/me", handler.UpdateMe)
	}

	users := protected.Group("/admin/users", middleware.RequireRole(domain.RoleAdmin))
	{
		users.GET("", handler.ListUsers)
		users.PUT("/:id/role", handler.AssignRole)
		users.PUT("/:id/disabled", handler.SetDisabled)
	}
}

type SyncProfileRequest struct {
	FullName string `json:"full_name" binding:"max=120"`
}

type UpdateProfileRequest struct {
	FullName  string  `json:"full_name" binding:"required,min=2,max=120"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin student recruiter"`
}

type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// Sync godoc
// @Summary      Sync profile
// @Description  Create or refresh the caller's profile from the auth token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SyncProfileRequest  false  "Display name"
// @Success      200   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) Sync(c *gin.Context) {
	var req SyncProfileRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileUC.SyncProfile(c.Request.Context(),
		c.GetString(string(domain.KeyUserID)), c.GetString(string(domain.KeyUserEmail)), req.FullName)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile synced", profile)
}

// Me godoc
// @Summary      Current profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.profileUC.GetCurrentProfile(c.Request.Context(), actorOf(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current profile", profile)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateProfileRequest  true  "Profile fields"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /auth/me [put]
// @Security     BearerAuth
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profileUC.UpdateOwnProfile(c.Request.Context(), actorOf(c).ID, req.FullName, req.AvatarURL)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// ListUsers godoc
// @Summary      List profiles
// @Tags         admin
// @Produce      json
// @Param        role       query     string  false  "admin, student or recruiter"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AuthHandler) ListUsers(c *gin.Context) {
	role := c.Query("role")
	if role != "" && !domain.ValidRole(role) {
		c.Error(apperror.BadRequest("Invalid role"))
		return
	}
	result, err := h.profileUC.ListProfiles(c.Request.Context(), actorOf(c), role, pageOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profiles", result)
}

// AssignRole godoc
// @Summary      Assign role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Profile ID"
// @Param        body  body      AssignRoleRequest  true  "Role"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /admin/users/{id}/role [put]
// @Security     BearerAuth
func (h *AuthHandler) AssignRole(c *gin.Context) {
	var req AssignRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profileUC.AssignRole(c.Request.Context(), actorOf(c), c.Param("id"), req.Role)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated", profile)
}

// SetDisabled godoc
// @Summary      Enable or disable a profile
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Profile ID"
// @Param        body  body      SetDisabledRequest  true  "Disabled flag"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /admin/users/{id}/disabled [put]
// @Security     BearerAuth
func (h *AuthHandler) SetDisabled(c *gin.Context) {
	var req SetDisabledRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profileUC.SetDisabled(c.Request.Context(), actorOf(c), c.Param("id"), req.Disabled)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}
