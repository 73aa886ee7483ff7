package engine

import (
	"context"
	"strings"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
)

// TrackingLifecycle is the state machine (C4) for Running/Paused/Archived/
// Deleted transitions and field updates, grounded on the teacher's
// UpdateDebtList switch/guard handling generalized into a transition table.
type TrackingLifecycle struct {
	store   interfaces.Store
	engine  *ReminderEngine
	publish func(ctx context.Context, kind interfaces.EventKind, userID, trackingID uint64)
}

func NewTrackingLifecycle(store interfaces.Store, reminderEngine *ReminderEngine, publisher interfaces.EventPublisher) *TrackingLifecycle {
	return &TrackingLifecycle{
		store:  store,
		engine: reminderEngine,
		publish: func(ctx context.Context, kind interfaces.EventKind, userID, trackingID uint64) {
			if publisher == nil {
				return
			}
			publisher.Publish(ctx, interfaces.Event{Kind: kind, UserID: userID, TrackingID: trackingID})
		},
	}
}

// allowedTransitions is the table from §4.4. Same-state is always allowed
// as a no-op and is handled separately in ChangeState.
var allowedTransitions = map[entities.TrackingState]map[entities.TrackingState]bool{
	entities.TrackingRunning:  {entities.TrackingPaused: true},
	entities.TrackingPaused:   {entities.TrackingRunning: true, entities.TrackingArchived: true},
	entities.TrackingArchived: {entities.TrackingRunning: true, entities.TrackingDeleted: true},
	entities.TrackingDeleted:  {},
}

// ChangeState applies a tracking state transition and its side effects.
func (l *TrackingLifecycle) ChangeState(ctx context.Context, trackingID, userID uint64, to entities.TrackingState) (*entities.Tracking, error) {
	if !to.Valid() {
		return nil, entities.NewKindedError(entities.KindValidation, entities.ErrInvalidTrackingState)
	}
	t, err := l.store.Trackings().GetByID(ctx, trackingID)
	if err != nil {
		return nil, entities.NewKindedError(entities.KindNotFound, err)
	}
	if t.UserID != userID {
		return nil, entities.NewKindedError(entities.KindNotFound, entities.ErrTrackingNotFound)
	}

	from := t.State
	if from == to {
		return t, nil
	}
	if !allowedTransitions[from][to] {
		return nil, entities.NewKindedError(entities.KindInvalidTransition, entities.ErrInvalidTransition)
	}

	t.State = to
	if err := l.store.Trackings().Update(ctx, t); err != nil {
		return nil, entities.NewKindedError(entities.KindTransientIO, err)
	}

	switch {
	case from == entities.TrackingRunning && to == entities.TrackingPaused:
		if _, err := l.store.Reminders().DeleteUpcomingForTracking(ctx, trackingID); err != nil {
			return nil, entities.NewKindedError(entities.KindTransientIO, err)
		}
	case from == entities.TrackingPaused && to == entities.TrackingRunning:
		if _, err := l.engine.ChainNext(ctx, trackingID, nil); err != nil {
			return nil, err
		}
	case from == entities.TrackingPaused && to == entities.TrackingArchived:
		if _, err := l.store.Reminders().DeleteUpcomingForTracking(ctx, trackingID); err != nil {
			return nil, entities.NewKindedError(entities.KindTransientIO, err)
		}
		if _, err := l.store.Reminders().DeletePendingForTracking(ctx, trackingID); err != nil {
			return nil, entities.NewKindedError(entities.KindTransientIO, err)
		}
	case from == entities.TrackingArchived && to == entities.TrackingRunning:
		if _, err := l.engine.ChainNext(ctx, trackingID, nil); err != nil {
			return nil, err
		}
	case from == entities.TrackingArchived && to == entities.TrackingDeleted:
		if err := l.store.Trackings().DeleteCascade(ctx, trackingID); err != nil {
			return nil, entities.NewKindedError(entities.KindTransientIO, err)
		}
	}

	l.publish(ctx, interfaces.EventTrackingStateChanged, userID, trackingID)
	return t, nil
}

// Delete removes a tracking and all of its reminders outright, independent
// of its current state. This is the DELETE /api/trackings/{id} operation
// and is distinct from the Archived→Deleted lifecycle transition: callers
// do not need to archive first.
func (l *TrackingLifecycle) Delete(ctx context.Context, trackingID, userID uint64) error {
	t, err := l.store.Trackings().GetByID(ctx, trackingID)
	if err != nil {
		return entities.NewKindedError(entities.KindNotFound, err)
	}
	if t.UserID != userID {
		return entities.NewKindedError(entities.KindNotFound, entities.ErrTrackingNotFound)
	}
	if err := l.store.Trackings().DeleteCascade(ctx, trackingID); err != nil {
		return entities.NewKindedError(entities.KindTransientIO, err)
	}
	l.publish(ctx, interfaces.EventTrackingStateChanged, userID, trackingID)
	return nil
}

// UpdateFields validates and persists a tracking's editable fields and
// re-chains the Upcoming reminder when schedules or pattern changed on a
// Running tracking.
func (l *TrackingLifecycle) UpdateFields(ctx context.Context, trackingID, userID uint64, req entities.UpdateTrackingRequest) (*entities.Tracking, error) {
	t, err := l.store.Trackings().GetByID(ctx, trackingID)
	if err != nil {
		return nil, entities.NewKindedError(entities.KindNotFound, err)
	}
	if t.UserID != userID {
		return nil, entities.NewKindedError(entities.KindNotFound, entities.ErrTrackingNotFound)
	}

	schedulingChanged := false
	if req.Question != nil {
		t.Question = strings.TrimSpace(*req.Question)
	}
	if req.Notes != nil {
		t.Notes = req.Notes
	}
	if req.Icon != nil {
		t.Icon = req.Icon
	}
	if req.Days != nil {
		t.Days = req.Days
		schedulingChanged = true
	}
	if req.Schedules != nil {
		t.Schedules = req.Schedules
		schedulingChanged = true
	}

	if err := t.IsValid(); err != nil {
		return nil, entities.NewKindedError(entities.KindValidation, err)
	}
	if err := l.store.Trackings().Update(ctx, t); err != nil {
		return nil, entities.NewKindedError(entities.KindTransientIO, err)
	}

	if schedulingChanged && t.State == entities.TrackingRunning {
		if err := l.engine.EnsureUpcomingMatches(ctx, trackingID); err != nil {
			return nil, err
		}
	}
	l.publish(ctx, interfaces.EventTrackingStateChanged, userID, trackingID)
	return t, nil
}
