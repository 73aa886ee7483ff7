// Package notify implements NotifierPort (C7): channel selection based on
// the user's notification preference, retry with capped exponential
// backoff for transient failures, and the inbound user-action callback
// surface for the chat bot adapter.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
)

// ChannelAdapter delivers a single reminder over one concrete channel
// (email, telegram, ...). A *PermanentError return is not retried.
type ChannelAdapter interface {
	Channel() entities.NotificationChannel
	Send(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error
}

// PermanentError marks a ChannelAdapter failure as non-retryable.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Dispatcher implements interfaces.Notifier, grounded on the teacher's
// FileStorageService interface shape: a narrow port plus a
// constructor-injected implementation, generalized here to pick among
// several channel adapters and wrap delivery in a retry policy.
type Dispatcher struct {
	adapters map[entities.NotificationChannel]ChannelAdapter
	logger   zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger, adapters ...ChannelAdapter) *Dispatcher {
	d := &Dispatcher{adapters: make(map[entities.NotificationChannel]ChannelAdapter), logger: logger.With().Str("component", "notifier").Logger()}
	for _, a := range adapters {
		d.adapters[a.Channel()] = a
	}
	return d
}

// Deliver retries transient failures up to 3 attempts with a base 2s
// exponential backoff, per §4.7/§7. Permanent errors are logged and
// returned without retry.
func (d *Dispatcher) Deliver(ctx context.Context, user *entities.User, reminder *entities.Reminder, tracking *entities.Tracking) error {
	adapter, ok := d.adapters[user.NotificationPreference]
	if !ok {
		return entities.NewKindedError(entities.KindPermanentIO, fmt.Errorf("no notifier adapter registered for channel %q", user.NotificationPreference))
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		sendErr := adapter.Send(ctx, user, reminder, tracking)
		if sendErr == nil {
			return struct{}{}, nil
		}
		var perm *PermanentError
		if errors.As(sendErr, &perm) {
			return struct{}{}, backoff.Permanent(sendErr)
		}
		return struct{}{}, sendErr
	}, backoff.WithBackOff(b), backoff.WithMaxTries(3))

	if err != nil {
		d.logger.Warn().Err(err).Uint64("reminder_id", reminder.ID).Str("channel", string(user.NotificationPreference)).Msg("delivery failed")
		return entities.NewKindedError(entities.KindPermanentIO, err)
	}
	return nil
}

// userActionRouter is implemented by the engine layer; kept as a narrow
// local interface so this package never imports internal/engine directly.
type userActionRouter interface {
	Answer(ctx context.Context, reminderID, userID uint64, value entities.AnswerValue, note *string) (*entities.Reminder, error)
	Snooze(ctx context.Context, reminderID, userID uint64, minutes int) (*entities.Reminder, error)
	AddNote(ctx context.Context, reminderID, userID uint64, note string) (*entities.Reminder, error)
}

// ActionRouter implements interfaces.UserActionHandler by routing an
// inbound chat bot callback to the matching ReminderEngine operation.
type ActionRouter struct {
	engine userActionRouter
}

func NewActionRouter(engine userActionRouter) *ActionRouter {
	return &ActionRouter{engine: engine}
}

var _ interfaces.UserActionHandler = (*ActionRouter)(nil)

func (r *ActionRouter) OnUserAction(ctx context.Context, userID, reminderID uint64, action entities.UserAction) error {
	switch action.Kind {
	case entities.UserActionComplete:
		_, err := r.engine.Answer(ctx, reminderID, userID, entities.AnswerCompleted, action.Note)
		return err
	case entities.UserActionDismiss:
		_, err := r.engine.Answer(ctx, reminderID, userID, entities.AnswerDismissed, action.Note)
		return err
	case entities.UserActionSnooze:
		_, err := r.engine.Snooze(ctx, reminderID, userID, action.Minutes)
		return err
	case entities.UserActionAddNote:
		note := ""
		if action.Note != nil {
			note = *action.Note
		}
		_, err := r.engine.AddNote(ctx, reminderID, userID, note)
		return err
	default:
		return entities.NewKindedError(entities.KindValidation, fmt.Errorf("unknown user action %q", action.Kind))
	}
}
