package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reminder-engine/internal/scheduler"
)

// pinger is satisfied by internal/store/gorm.Database; kept narrow since
// connectivity checking is an operational concern, not a domain port.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports ticker liveness and store connectivity, grounded
// verbatim on the teacher's router.GET("/health", ...) inline closure.
type HealthHandler struct {
	store  pinger
	ticker *scheduler.Ticker
}

func NewHealthHandler(store pinger, ticker *scheduler.Ticker) *HealthHandler {
	return &HealthHandler{store: store, ticker: ticker}
}

func (h *HealthHandler) Check(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"service":   "reminder-engine",
		"timestamp": time.Now(),
	}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		body["status"] = "degraded"
		body["store_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	if lastRun, ran := h.ticker.LastRun(); ran {
		body["ticker_last_run"] = lastRun
		body["ticker_age_seconds"] = time.Since(lastRun).Seconds()
	} else {
		body["ticker_last_run"] = nil
	}
	c.JSON(http.StatusOK, body)
}
