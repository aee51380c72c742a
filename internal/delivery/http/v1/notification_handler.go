package v1

import (
	"net/http"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

func NewNotificationHandler(protected *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/:id/read", handler.MarkRead)
		notifications.POST("/read-all", handler.MarkAllRead)
		notifications.DELETE("/:id", handler.Delete)
		notifications.DELETE("", handler.DeleteAll)
	}
}

// List godoc
// @Summary      My notifications
// @Tags         notifications
// @Produce      json
// @Param        unread     query     bool  false  "Only unread"
// @Param        page       query     int   false  "Page number"
// @Param        page_size  query     int   false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) List(c *gin.Context) {
	unread := queryBool(c, "unread")
	result, err := h.notificationUC.List(c.Request.Context(), actorOf(c), unread != nil && *unread, pageOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications", result)
}

// UnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/unread-count [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notificationUC.UnreadCount(c.Request.Context(), actorOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Unread count", gin.H{"unread": n})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationUC.MarkRead(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [post]
// @Security     BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationUC.MarkAllRead(c.Request.Context(), actorOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": n})
}

// Delete godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id} [delete]
// @Security     BearerAuth
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notificationUC.Delete(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification deleted", nil)
}

// DeleteAll godoc
// @Summary      Clear all notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications [delete]
// @Security     BearerAuth
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	n, err := h.notificationUC.DeleteAll(c.Request.Context(), actorOf(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications cleared", gin.H{"deleted": n})
}
