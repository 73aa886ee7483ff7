// Package engine implements ReminderEngine (C3) and TrackingLifecycle (C4),
// grounded on the teacher's internal/services/debt_service.go: a service
// struct holding repository interfaces plus a pure calculation
// collaborator, context-scoped methods, fmt.Errorf("...: %w", err)
// wrapping, and a block of small validation helpers.
package engine

import (
	"context"
	"fmt"
	"time"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/recurrence"
)

// ReminderEngine owns the reminder lifecycle (C3) and enforces I1-I6.
type ReminderEngine struct {
	store     interfaces.Store
	publisher interfaces.EventPublisher
	now       func() time.Time
}

func NewReminderEngine(store interfaces.Store, publisher interfaces.EventPublisher) *ReminderEngine {
	return &ReminderEngine{store: store, publisher: publisher, now: time.Now}
}

// CreateTrackingInitial seeds the first reminder for a freshly created
// tracking: a one-shot instant if given, otherwise the first chained
// Upcoming from the pattern.
func (e *ReminderEngine) CreateTrackingInitial(ctx context.Context, t *entities.Tracking, oneShotInstant *time.Time) error {
	if oneShotInstant != nil {
		rem := &entities.Reminder{
			TrackingID:    t.ID,
			UserID:        t.UserID,
			ScheduledTime: *oneShotInstant,
			Status:        entities.ReminderUpcoming,
		}
		if err := e.store.Reminders().Create(ctx, rem); err != nil {
			return entities.NewKindedError(entities.KindTransientIO, fmt.Errorf("create one-shot reminder: %w", err))
		}
		e.publish(ctx, interfaces.EventUpcomingReplaced, t.UserID, t.ID, rem.ID, rem)
		return nil
	}
	_, err := e.ChainNext(ctx, t.ID, nil)
	return err
}

// ChainNext computes the next firing instant for tracking and, if one
// exists, atomically replaces its Upcoming reminder with it. It returns
// (nil, nil) when the evaluator finds nothing within the search horizon
// (and also for a one-shot tracking with no pattern); that outcome is not
// logged and carries no SchedulingFailed kind, and any existing Upcoming
// is left in place.
func (e *ReminderEngine) ChainNext(ctx context.Context, trackingID uint64, excluded *time.Time) (*entities.Reminder, error) {
	var result *entities.Reminder
	err := e.store.WithinTransaction(ctx, func(ctx context.Context, tx interfaces.Store) error {
		t, err := tx.Trackings().GetByIDForUpdate(ctx, trackingID)
		if err != nil {
			return err
		}
		if t.Days == nil {
			return nil
		}
		tz, _, err := tx.Users().GetTimezoneAndLocale(ctx, t.UserID)
		if err != nil {
			return err
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return entities.NewKindedError(entities.KindValidation, entities.ErrInvalidTimezone)
		}

		next, ok, err := recurrence.Next(recurrence.Params{
			Pattern:   t.Days,
			Schedules: t.Schedules,
			Anchor:    t.CreatedAt,
			Now:       e.now(),
			Excluded:  excluded,
		}, loc)
		if err != nil {
			return entities.NewKindedError(entities.KindValidation, err)
		}
		if !ok {
			return nil
		}

		if _, err := tx.Reminders().DeleteUpcomingForTracking(ctx, trackingID); err != nil {
			return entities.NewKindedError(entities.KindTransientIO, fmt.Errorf("delete old upcoming: %w", err))
		}
		rem := &entities.Reminder{
			TrackingID:    trackingID,
			UserID:        t.UserID,
			ScheduledTime: next,
			Status:        entities.ReminderUpcoming,
		}
		if err := tx.Reminders().Create(ctx, rem); err != nil {
			return entities.NewKindedError(entities.KindTransientIO, fmt.Errorf("insert new upcoming: %w", err))
		}
		result = rem
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		e.publish(ctx, interfaces.EventUpcomingReplaced, result.UserID, result.TrackingID, result.ID, result)
	}
	return result, nil
}

// EnsureUpcomingMatches recomputes the Upcoming instant after a schedule or
// pattern change and replaces it only if it differs from what's already
// there (idempotence: ensure_upcoming_matches after chain_next on an
// unchanged tracking is a no-op).
func (e *ReminderEngine) EnsureUpcomingMatches(ctx context.Context, trackingID uint64) error {
	existing, err := e.store.Reminders().UpcomingForTracking(ctx, trackingID)
	if err != nil {
		return entities.NewKindedError(entities.KindTransientIO, err)
	}

	t, err := e.store.Trackings().GetByID(ctx, trackingID)
	if err != nil {
		return err
	}
	if t.Days == nil {
		return nil
	}
	tz, _, err := e.store.Users().GetTimezoneAndLocale(ctx, t.UserID)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return entities.NewKindedError(entities.KindValidation, entities.ErrInvalidTimezone)
	}

	next, ok, err := recurrence.Next(recurrence.Params{
		Pattern:   t.Days,
		Schedules: t.Schedules,
		Anchor:    t.CreatedAt,
		Now:       e.now(),
	}, loc)
	if err != nil {
		return entities.NewKindedError(entities.KindValidation, err)
	}
	if !ok {
		return nil
	}
	if existing != nil && existing.ScheduledTime.Equal(next) {
		return nil
	}
	_, err = e.ChainNext(ctx, trackingID, nil)
	return err
}

// Snooze is valid only when the reminder is Pending or Upcoming.
func (e *ReminderEngine) Snooze(ctx context.Context, reminderID, userID uint64, minutes int) (*entities.Reminder, error) {
	if minutes < 1 {
		return nil, entities.NewKindedError(entities.KindValidation, entities.ErrInvalidSnooze)
	}
	rem, err := e.store.Reminders().GetByID(ctx, reminderID)
	if err != nil {
		return nil, entities.NewKindedError(entities.KindNotFound, err)
	}
	if rem.UserID != userID {
		return nil, entities.NewKindedError(entities.KindNotFound, entities.ErrReminderNotFound)
	}
	if rem.Status != entities.ReminderPending && rem.Status != entities.ReminderUpcoming {
		return nil, entities.NewKindedError(entities.KindInvalidTransition, entities.ErrInvalidTransition)
	}
	rem.ScheduledTime = rem.ScheduledTime.Add(time.Duration(minutes) * time.Minute)
	rem.Status = entities.ReminderUpcoming
	if err := e.store.Reminders().Update(ctx, rem); err != nil {
		return nil, entities.NewKindedError(entities.KindTransientIO, err)
	}
	e.publish(ctx, interfaces.EventReminderUpdated, rem.UserID, rem.TrackingID, rem.ID, rem)
	return rem, nil
}

// Answer is valid only when the reminder is Pending. It seeds the next
// occurrence, excluding the just-answered instant so re-chaining can never
// reproduce it.
func (e *ReminderEngine) Answer(ctx context.Context, reminderID, userID uint64, value entities.AnswerValue, note *string) (*entities.Reminder, error) {
	if !value.Valid() {
		return nil, entities.NewKindedError(entities.KindValidation, entities.ErrInvalidAnswer)
	}
	rem, err := e.store.Reminders().GetByID(ctx, reminderID)
	if err != nil {
		return nil, entities.NewKindedError(entities.KindNotFound, err)
	}
	if rem.UserID != userID {
		return nil, entities.NewKindedError(entities.KindNotFound, entities.ErrReminderNotFound)
	}
	if rem.Status != entities.ReminderPending {
		return nil, entities.NewKindedError(entities.KindInvalidTransition, entities.ErrInvalidTransition)
	}

	oldInstant := rem.ScheduledTime
	rem.Status = entities.ReminderAnswered
	rem.AnswerValue = &value
	if note != nil {
		rem.Notes = note
	}
	if err := e.store.Reminders().Update(ctx, rem); err != nil {
		return nil, entities.NewKindedError(entities.KindTransientIO, err)
	}
	e.publish(ctx, interfaces.EventReminderAnswered, rem.UserID, rem.TrackingID, rem.ID, rem)

	// Scheduling failure here is non-fatal: the answer itself already
	// committed, so the tracking is simply left without an Upcoming.
	if _, err := e.ChainNext(ctx, rem.TrackingID, &oldInstant); err != nil {
		return rem, nil
	}
	return rem, nil
}

// AddNote attaches a note to a reminder without changing its status, for
// the chat bot's add-note action. Valid for any reminder the user owns.
func (e *ReminderEngine) AddNote(ctx context.Context, reminderID, userID uint64, note string) (*entities.Reminder, error) {
	rem, err := e.store.Reminders().GetByID(ctx, reminderID)
	if err != nil {
		return nil, entities.NewKindedError(entities.KindNotFound, err)
	}
	if rem.UserID != userID {
		return nil, entities.NewKindedError(entities.KindNotFound, entities.ErrReminderNotFound)
	}
	rem.Notes = &note
	if err := e.store.Reminders().Update(ctx, rem); err != nil {
		return nil, entities.NewKindedError(entities.KindTransientIO, err)
	}
	e.publish(ctx, interfaces.EventReminderUpdated, rem.UserID, rem.TrackingID, rem.ID, rem)
	return rem, nil
}

// DismissCurrent is Answer with value=Dismissed.
func (e *ReminderEngine) DismissCurrent(ctx context.Context, reminderID, userID uint64) (*entities.Reminder, error) {
	return e.Answer(ctx, reminderID, userID, entities.AnswerDismissed, nil)
}

// Delete removes a reminder outright. If it was Upcoming or Pending for a
// Running tracking, the next occurrence is re-chained around it.
func (e *ReminderEngine) Delete(ctx context.Context, reminderID, userID uint64) error {
	rem, err := e.store.Reminders().GetByID(ctx, reminderID)
	if err != nil {
		return entities.NewKindedError(entities.KindNotFound, err)
	}
	if rem.UserID != userID {
		return entities.NewKindedError(entities.KindNotFound, entities.ErrReminderNotFound)
	}
	wasActive := rem.Status == entities.ReminderUpcoming || rem.Status == entities.ReminderPending
	if err := e.store.Reminders().Delete(ctx, reminderID); err != nil {
		return entities.NewKindedError(entities.KindTransientIO, err)
	}
	e.publish(ctx, interfaces.EventReminderDeleted, rem.UserID, rem.TrackingID, rem.ID, nil)

	if wasActive {
		t, err := e.store.Trackings().GetByID(ctx, rem.TrackingID)
		if err == nil && t.State == entities.TrackingRunning {
			scheduled := rem.ScheduledTime
			_, _ = e.ChainNext(ctx, rem.TrackingID, &scheduled)
		}
	}
	return nil
}

func (e *ReminderEngine) publish(ctx context.Context, kind interfaces.EventKind, userID, trackingID, reminderID uint64, payload interface{}) {
	if e.publisher == nil {
		return
	}
	e.publisher.Publish(ctx, interfaces.Event{
		Kind:       kind,
		UserID:     userID,
		TrackingID: trackingID,
		ReminderID: reminderID,
		Payload:    payload,
	})
}
