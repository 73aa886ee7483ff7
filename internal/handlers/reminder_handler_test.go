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

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/engine"
	"reminder-engine/internal/engine/mocks"
)

func TestReminderHandler_Answer(t *testing.T) {
	tests := []struct {
		name           string
		reminderID     string
		requestBody    interface{}
		setupMock      func(*mocks.Store)
		expectedStatus int
	}{
		{
			name:       "pending reminder answered completed",
			reminderID: "10",
			requestBody: entities.AnswerReminderRequest{
				Value: entities.AnswerCompleted,
			},
			setupMock: func(s *mocks.Store) {
				rem := &entities.Reminder{ID: 10, UserID: 1, TrackingID: 2, Status: entities.ReminderPending, ScheduledTime: time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)}
				s.Reminders_.On("GetByID", mock.Anything, uint64(10)).Return(rem, nil)
				s.Reminders_.On("Update", mock.Anything, mock.AnythingOfType("*entities.Reminder")).Return(nil)
				tr := &entities.Tracking{ID: 2, UserID: 1, State: entities.TrackingRunning}
				s.Trackings_.On("GetByIDForUpdate", mock.Anything, uint64(2)).Return(tr, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "upcoming reminder cannot be answered",
			reminderID: "10",
			requestBody: entities.AnswerReminderRequest{
				Value: entities.AnswerCompleted,
			},
			setupMock: func(s *mocks.Store) {
				rem := &entities.Reminder{ID: 10, UserID: 1, TrackingID: 2, Status: entities.ReminderUpcoming}
				s.Reminders_.On("GetByID", mock.Anything, uint64(10)).Return(rem, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:       "invalid answer value rejected before lookup",
			reminderID: "10",
			requestBody: entities.AnswerReminderRequest{
				Value: "maybe",
			},
			setupMock:      func(s *mocks.Store) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "reminder owned by different user is not found",
			reminderID: "10",
			requestBody: entities.AnswerReminderRequest{
				Value: entities.AnswerCompleted,
			},
			setupMock: func(s *mocks.Store) {
				rem := &entities.Reminder{ID: 10, UserID: 99, TrackingID: 2, Status: entities.ReminderPending}
				s.Reminders_.On("GetByID", mock.Anything, uint64(10)).Return(rem, nil)
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
			handler := NewReminderHandler(store, reminderEngine)

			router := gin.New()
			router.Use(withIdentity(1))
			router.POST("/api/reminders/:id/answer", handler.Answer)

			body, _ := json.Marshal(tc.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/reminders/"+tc.reminderID+"/answer", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			store.Reminders_.AssertExpectations(t)
		})
	}
}

func TestReminderHandler_Snooze(t *testing.T) {
	tests := []struct {
		name           string
		reminderID     string
		requestBody    interface{}
		setupMock      func(*mocks.Store)
		expectedStatus int
	}{
		{
			name:       "valid snooze minutes",
			reminderID: "10",
			requestBody: entities.SnoozeReminderRequest{
				Minutes: 15,
			},
			setupMock: func(s *mocks.Store) {
				rem := &entities.Reminder{ID: 10, UserID: 1, TrackingID: 2, Status: entities.ReminderPending, ScheduledTime: time.Now()}
				s.Reminders_.On("GetByID", mock.Anything, uint64(10)).Return(rem, nil)
				s.Reminders_.On("Update", mock.Anything, mock.AnythingOfType("*entities.Reminder")).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "zero minutes rejected",
			reminderID: "10",
			requestBody: entities.SnoozeReminderRequest{
				Minutes: 0,
			},
			setupMock:      func(s *mocks.Store) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "answered reminder cannot be snoozed",
			reminderID: "10",
			requestBody: entities.SnoozeReminderRequest{
				Minutes: 5,
			},
			setupMock: func(s *mocks.Store) {
				rem := &entities.Reminder{ID: 10, UserID: 1, TrackingID: 2, Status: entities.ReminderAnswered}
				s.Reminders_.On("GetByID", mock.Anything, uint64(10)).Return(rem, nil)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mocks.NewStore()
			tc.setupMock(store)
			pub := &mocks.EventPublisher{}
			pub.On("Publish", mock.Anything, mock.Anything).Return()

			reminderEngine := engine.NewReminderEngine(store, pub)
			handler := NewReminderHandler(store, reminderEngine)

			router := gin.New()
			router.Use(withIdentity(1))
			router.POST("/api/reminders/:id/snooze", handler.Snooze)

			body, _ := json.Marshal(tc.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/reminders/"+tc.reminderID+"/snooze", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			store.Reminders_.AssertExpectations(t)
		})
	}
}

func TestReminderHandler_List(t *testing.T) {
	store := mocks.NewStore()
	reminders := []*entities.Reminder{
		{ID: 1, UserID: 1, Status: entities.ReminderUpcoming},
		{ID: 2, UserID: 1, Status: entities.ReminderAnswered},
	}
	store.Reminders_.On("ListByUser", mock.Anything, uint64(1), mock.Anything, uint64(0), 50).Return(reminders, nil)
	pub := &mocks.EventPublisher{}

	reminderEngine := engine.NewReminderEngine(store, pub)
	handler := NewReminderHandler(store, reminderEngine)

	router := gin.New()
	router.Use(withIdentity(1))
	router.GET("/api/reminders", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/api/reminders?active=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	data, ok := out["data"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, data, 1)
	store.Reminders_.AssertExpectations(t)
}

func TestReminderHandler_Delete(t *testing.T) {
	store := mocks.NewStore()
	rem := &entities.Reminder{ID: 10, UserID: 1, TrackingID: 2, Status: entities.ReminderAnswered}
	store.Reminders_.On("GetByID", mock.Anything, uint64(10)).Return(rem, nil)
	store.Reminders_.On("Delete", mock.Anything, uint64(10)).Return(nil)
	pub := &mocks.EventPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return()

	reminderEngine := engine.NewReminderEngine(store, pub)
	handler := NewReminderHandler(store, reminderEngine)

	router := gin.New()
	router.Use(withIdentity(1))
	router.DELETE("/api/reminders/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/api/reminders/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	store.Reminders_.AssertExpectations(t)
}
