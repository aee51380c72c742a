package v1

import (
	"io"
	"net/http"
	"strings"
	"time"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/internal/realtime"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

type RealtimeHandler struct {
	hub       *realtime.Hub
	presence  domain.PresenceTracker
	keepAlive time.Duration
}

func NewRealtimeHandler(protected *gin.RouterGroup, hub *realtime.Hub, presence domain.PresenceTracker) {
	handler := &RealtimeHandler{hub: hub, presence: presence, keepAlive: keepAliveInterval}

	rt := protected.Group("/realtime")
	{
		rt.GET("/stream", handler.Stream)
		rt.GET("/active-users", handler.ActiveUsers)
	}
}

// streamOptions turns the query into subscription options. The caller's
// profile and role always come from the session, never from the query.
func streamOptions(c *gin.Context) (realtime.SubscribeOptions, error) {
	actor := actorOf(c)
	opts := realtime.SubscribeOptions{
		Tables:    queryList(c, "tables"),
		ProfileID: actor.ID,
		Role:      actor.Role,
	}
	search := strings.TrimSpace(c.Query("search"))
	jobType := c.Query("job_type")
	if jobType != "" && !domain.ValidJobType(jobType) {
		return opts, apperror.BadRequest("Invalid job type")
	}
	if search != "" || jobType != "" {
		opts.JobFilter = &domain.JobFilter{Search: search, JobType: jobType}
	}
	return opts, nil
}

// Stream godoc
// @Summary      Live change events (Server-Sent Events)
// @Description  EventSource clients may pass the token as access_token. A comment is sent every 25s as keep-alive.
// @Tags         realtime
// @Produce      text/event-stream
// @Param        tables    query  string  false  "Comma separated tables, all when omitted"
// @Param        search    query  string  false  "Job search term applied to job events"
// @Param        job_type  query  string  false  "Job type applied to job events"
// @Success      200
// @Router       /realtime/stream [get]
// @Security     BearerAuth
func (h *RealtimeHandler) Stream(c *gin.Context) {
	opts, err := streamOptions(c)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	sub := h.hub.Subscribe(ctx, opts)
	defer h.hub.Unsubscribe(sub.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.SSEvent("ready", gin.H{"subscription_id": sub.ID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(ev.Table, ev)
			return true
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return false
			}
			return true
		}
	})

	if dropped := sub.Dropped(); dropped > 0 {
		logger.Log.Warn("realtime subscriber dropped events", "subscription", sub.ID, "dropped", dropped)
	}
}

// ActiveUsers godoc
// @Summary      Profiles active within the presence window
// @Tags         realtime
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ActiveUsers}
// @Router       /realtime/active-users [get]
// @Security     BearerAuth
func (h *RealtimeHandler) ActiveUsers(c *gin.Context) {
	users, err := h.presence.ActiveUsers(c.Request.Context())
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusOK, "Active users", users)
}
