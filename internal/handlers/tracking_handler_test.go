package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reminder-engine/internal/authctx"
	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/engine"
	"reminder-engine/internal/engine/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withIdentity(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		authctx.SetIdentity(c, interfaces.Identity{UserID: userID, TZ: "UTC", Locale: "en"})
	}
}

func TestTrackingHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*mocks.Store)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "valid one-shot tracking",
			requestBody: entities.CreateTrackingRequest{
				Question:    "Did you stretch?",
				Schedules:   entities.ScheduleList{{Hour: 9, Minute: 0}},
				OneTimeDate: oneTimeDate(),
			},
			setupMock: func(s *mocks.Store) {
				s.Trackings_.On("Create", mock.Anything, mock.AnythingOfType("*entities.Tracking")).Return(nil)
				s.Reminders_.On("Create", mock.Anything, mock.AnythingOfType("*entities.Reminder")).Return(nil)
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "tracking created", body["message"])
			},
		},
		{
			name: "missing question fails validation",
			requestBody: entities.CreateTrackingRequest{
				Schedules:   entities.ScheduleList{{Hour: 9, Minute: 0}},
				OneTimeDate: oneTimeDate(),
			},
			setupMock:      func(s *mocks.Store) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "neither days nor one_time_date set",
			requestBody: entities.CreateTrackingRequest{
				Question:  "Did you stretch?",
				Schedules: entities.ScheduleList{{Hour: 9, Minute: 0}},
			},
			setupMock:      func(s *mocks.Store) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mocks.NewStore()
			tc.setupMock(store)
			pub := &mocks.EventPublisher{}
			pub.On("Publish", mock.Anything, mock.Anything).Return()

			reminderEngine := engine.NewReminderEngine(store, pub)
			lifecycle := engine.NewTrackingLifecycle(store, reminderEngine, pub)
			handler := NewTrackingHandler(store, reminderEngine, lifecycle)

			router := gin.New()
			router.Use(withIdentity(1))
			router.POST("/api/trackings", handler.Create)

			body, _ := json.Marshal(tc.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/trackings", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.validateBody != nil {
				var out map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
				tc.validateBody(t, out)
			}
			store.Trackings_.AssertExpectations(t)
			store.Reminders_.AssertExpectations(t)
		})
	}
}

func TestTrackingHandler_ChangeState(t *testing.T) {
	tests := []struct {
		name           string
		trackingID     string
		requestBody    interface{}
		setupMock      func(*mocks.Store)
		expectedStatus int
	}{
		{
			name:       "running to paused succeeds",
			trackingID: "1",
			requestBody: entities.ChangeTrackingStateRequest{
				State: entities.TrackingPaused,
			},
			setupMock: func(s *mocks.Store) {
				tr := &entities.Tracking{ID: 1, UserID: 1, State: entities.TrackingRunning}
				s.Trackings_.On("GetByID", mock.Anything, uint64(1)).Return(tr, nil)
				s.Trackings_.On("Update", mock.Anything, mock.AnythingOfType("*entities.Tracking")).Return(nil)
				s.Reminders_.On("DeleteUpcomingForTracking", mock.Anything, uint64(1)).Return(0, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "running to deleted rejected",
			trackingID: "1",
			requestBody: entities.ChangeTrackingStateRequest{
				State: entities.TrackingDeleted,
			},
			setupMock: func(s *mocks.Store) {
				tr := &entities.Tracking{ID: 1, UserID: 1, State: entities.TrackingRunning}
				s.Trackings_.On("GetByID", mock.Anything, uint64(1)).Return(tr, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:       "tracking owned by different user is not found",
			trackingID: "1",
			requestBody: entities.ChangeTrackingStateRequest{
				State: entities.TrackingPaused,
			},
			setupMock: func(s *mocks.Store) {
				tr := &entities.Tracking{ID: 1, UserID: 2, State: entities.TrackingRunning}
				s.Trackings_.On("GetByID", mock.Anything, uint64(1)).Return(tr, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mocks.NewStore()
			tc.setupMock(store)
			pub := &mocks.EventPublisher{}
			pub.On("Publish", mock.Anything, mock.Anything).Return()

			reminderEngine := engine.NewReminderEngine(store, pub)
			lifecycle := engine.NewTrackingLifecycle(store, reminderEngine, pub)
			handler := NewTrackingHandler(store, reminderEngine, lifecycle)

			router := gin.New()
			router.Use(withIdentity(1))
			router.POST("/api/trackings/:id/state", handler.ChangeState)

			body, _ := json.Marshal(tc.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/trackings/"+tc.trackingID+"/state", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			store.Trackings_.AssertExpectations(t)
		})
	}
}

func TestTrackingHandler_Delete(t *testing.T) {
	store := mocks.NewStore()
	tr := &entities.Tracking{ID: 5, UserID: 1, State: entities.TrackingRunning}
	store.Trackings_.On("GetByID", mock.Anything, uint64(5)).Return(tr, nil)
	store.Trackings_.On("DeleteCascade", mock.Anything, uint64(5)).Return(nil)
	pub := &mocks.EventPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return()

	reminderEngine := engine.NewReminderEngine(store, pub)
	lifecycle := engine.NewTrackingLifecycle(store, reminderEngine, pub)
	handler := NewTrackingHandler(store, reminderEngine, lifecycle)

	router := gin.New()
	router.Use(withIdentity(1))
	router.DELETE("/api/trackings/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/trackings/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	store.Trackings_.AssertExpectations(t)
}

func oneTimeDate() *time.Time {
	d := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return &d
}
