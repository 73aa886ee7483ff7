package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/engine"
	"reminder-engine/internal/engine/mocks"
)

type stubNotifier struct {
	calls chan uint64
}

func (s *stubNotifier) Deliver(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error {
	s.calls <- reminder.ID
	return nil
}

func TestRunTick_PromotesDueReminderAndChainsNext(t *testing.T) {
	store := mocks.NewStore()
	pub := &mocks.EventPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return()
	e := engine.NewReminderEngine(store, pub)

	now := time.Date(2025, 3, 15, 12, 0, 30, 0, time.UTC)
	due := &entities.Reminder{ID: 1, TrackingID: 10, UserID: 4, Status: entities.ReminderUpcoming, ScheduledTime: now.Add(-30 * time.Second)}
	tracking := &entities.Tracking{
		ID:        10,
		UserID:    4,
		State:     entities.TrackingRunning,
		Days:      &entities.DaysPattern{Kind: entities.PatternInterval, IntervalValue: 1, IntervalUnit: entities.IntervalDays},
		Schedules: entities.ScheduleList{{Hour: 12, Minute: 0}},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	user := &entities.User{ID: 4, Timezone: "UTC"}

	store.Reminders_.On("DueUpcoming", mock.Anything, mock.Anything).Return([]*entities.Reminder{due}, nil)
	store.Trackings_.On("GetByID", mock.Anything, uint64(10)).Return(tracking, nil)
	store.Trackings_.On("GetByIDForUpdate", mock.Anything, uint64(10)).Return(tracking, nil)
	store.Users_.On("GetByID", mock.Anything, uint64(4)).Return(user, nil)
	store.Users_.On("GetTimezoneAndLocale", mock.Anything, uint64(4)).Return("UTC", "en", nil)
	store.Reminders_.On("Update", mock.Anything, mock.AnythingOfType("*entities.Reminder")).Return(nil)
	store.Reminders_.On("DeleteUpcomingForTracking", mock.Anything, uint64(10)).Return(0, nil)
	store.Reminders_.On("Create", mock.Anything, mock.AnythingOfType("*entities.Reminder")).Return(nil)

	notifier := &stubNotifier{calls: make(chan uint64, 1)}
	ticker := NewTicker(store, e, notifier, pub, 60, 10, zerolog.Nop())

	ticker.runTick()

	select {
	case id := <-notifier.calls:
		assert.Equal(t, uint64(1), id)
	case <-time.After(time.Second):
		t.Fatal("notifier.Deliver was not called")
	}
	require.Equal(t, entities.ReminderPending, due.Status)
	store.Reminders_.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*entities.Reminder"))
}

func TestRunTick_DropsOverlappingTick(t *testing.T) {
	store := mocks.NewStore()
	pub := &mocks.EventPublisher{}
	e := engine.NewReminderEngine(store, pub)
	ticker := NewTicker(store, e, nil, pub, 60, 10, zerolog.Nop())

	ticker.inFlight.Store(true)
	store.Reminders_.AssertNotCalled(t, "DueUpcoming", mock.Anything, mock.Anything)
	ticker.runTick()
	store.Reminders_.AssertNotCalled(t, "DueUpcoming", mock.Anything, mock.Anything)
}
