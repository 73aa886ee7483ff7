package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"reminder-engine/internal/engine"
	"reminder-engine/internal/engine/mocks"
	"reminder-engine/internal/events"
	"reminder-engine/internal/scheduler"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealthHandler_Check(t *testing.T) {
	store := mocks.NewStore()
	pub := &mocks.EventPublisher{}
	reminderEngine := engine.NewReminderEngine(store, pub)
	bus := events.NewBus(8, zerolog.Nop())
	ticker := scheduler.NewTicker(store, reminderEngine, nil, bus, 60, 10, zerolog.Nop())

	tests := []struct {
		name           string
		pinger         pinger
		expectedStatus int
	}{
		{
			name:           "store reachable",
			pinger:         fakePinger{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "store unreachable",
			pinger:         fakePinger{err: errors.New("connection refused")},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHealthHandler(tc.pinger, ticker)
			router := gin.New()
			router.GET("/health", handler.Check)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}
