package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

const heartbeatInterval = 25 * time.Second

// EventsHandler streams order updates to their owner as Server-Sent Events.
type EventsHandler struct {
	stream    EventStream
	heartbeat time.Duration
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(stream EventStream) *EventsHandler {
	return &EventsHandler{stream: stream, heartbeat: heartbeatInterval}
}

// Stream handles GET /api/orders/events.
func (h *EventsHandler) Stream(c *gin.Context) {
	updates, cancel := h.stream.Subscribe(CurrentUserID(c))
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case update, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(model.OrderUpdateEvent, update)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
