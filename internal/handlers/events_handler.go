package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/events"
)

// EventsHandler serves the SSE stream (C6) at GET /api/events.
type EventsHandler struct {
	bus *events.Bus
}

func NewEventsHandler(bus *events.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// Stream keeps one long-lived connection open per client, relaying
// published events and a 30s heartbeat, per §4.6's SSE contract.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	_, ch, unsubscribe := h.bus.Subscribe(userID)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	heartbeat := time.NewTicker(events.HeartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		case <-heartbeat.C:
			c.SSEvent(string(eventKindHeartbeat), events.Heartbeat(userID))
			return true
		}
	})
}

const eventKindHeartbeat interfaces.EventKind = "heartbeat"
