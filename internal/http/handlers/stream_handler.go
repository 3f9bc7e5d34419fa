package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/http/middleware"
)

// Stream event names.
const (
	EventSnapshot = "snapshot"
	EventPing     = "ping"
	EventError    = "error"
)

// SnapshotEvent is the payload of every snapshot event: the complete cellar.
// Clients replace their view with it.
type SnapshotEvent struct {
	Wines []domain.Wine `json:"wines"`
}

// StreamCellar godoc
// @ID          streamCellar
// @Summary     Live cellar
// @Description Server-sent events. The first "snapshot" carries the current cellar; a new full snapshot follows every change. The stream ends on disconnect or logout.
// @Tags        Wines
// @Produce     text/event-stream
// @Security    BearerAuth
// @Success     200  {object}  handlers.SnapshotEvent
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Router      /cellar/stream [get]
func (h *Handlers) StreamCellar(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, ErrCodeLoginRequired, "sign in with LINE to continue")
		return
	}
	ctx := c.Request.Context()
	sub, err := h.cfg.Cellar.Subscribe(ctx, userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	defer sub.Cancel()

	release, err := sess.Track(sub.Cancel)
	if err != nil {
		failErr(c, err)
		return
	}
	defer release()

	hdr := c.Writer.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	defer middleware.TrackStream()()

	lg := middleware.LoggerFrom(c)
	lg.Debug().Msg("cellar stream opened")

	ping := time.NewTicker(h.cfg.Heartbeat)
	defer ping.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case ws, open := <-sub.Events():
			if !open {
				if err := sub.Err(); err != nil {
					lg.Warn().Err(err).Msg("cellar stream ended")
					c.SSEvent(EventError, gin.H{"code": ErrCodeStoreUnavailable, "message": "live updates stopped"})
				}
				return false
			}
			c.SSEvent(EventSnapshot, SnapshotEvent{Wines: ws})
			return true
		case t := <-ping.C:
			c.SSEvent(EventPing, t.UnixMilli())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
