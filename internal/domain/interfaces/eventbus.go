package interfaces

import "context"

// EventKind names the SSE event types the engine publishes (C6).
type EventKind string

const (
	EventUpcomingReplaced   EventKind = "UpcomingReplaced"
	EventReminderDuePending EventKind = "ReminderDuePending"
	EventReminderAnswered   EventKind = "ReminderAnswered"
	EventReminderUpdated    EventKind = "ReminderUpdated"
	EventReminderDeleted    EventKind = "ReminderDeleted"
	EventTrackingStateChanged EventKind = "TrackingStateChanged"
	EventTelegramConnected  EventKind = "TelegramConnected"
)

// Event is a single notification pushed to a user's SSE subscribers.
type Event struct {
	Kind       EventKind   `json:"kind"`
	UserID     uint64      `json:"user_id"`
	TrackingID uint64      `json:"tracking_id,omitempty"`
	ReminderID uint64      `json:"reminder_id,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
}

// EventPublisher is the write side of the event bus the engine depends on;
// it never blocks the caller on a slow or disconnected subscriber.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
