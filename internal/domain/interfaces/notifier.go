package interfaces

import (
	"context"

	"reminder-engine/internal/domain/entities"
)

// Notifier is the out-of-band delivery port (C7). A Pending reminder is
// handed to Deliver; the adapter is responsible for its own retry policy
// internally and returns only a terminal success/failure.
type Notifier interface {
	Deliver(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error
}

// UserActionHandler is the callback surface a Notifier adapter invokes when
// an inbound channel event (e.g. a chat bot button press) represents the
// owner acting on a reminder it previously delivered.
type UserActionHandler interface {
	OnUserAction(ctx context.Context, userID, reminderID uint64, action entities.UserAction) error
}
