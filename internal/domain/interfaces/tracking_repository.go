package interfaces

import (
	"context"
	"time"

	"reminder-engine/internal/domain/entities"
)

// TrackingRepository is the storage port for Tracking aggregates (C2).
type TrackingRepository interface {
	Create(ctx context.Context, t *entities.Tracking) error
	GetByID(ctx context.Context, id uint64) (*entities.Tracking, error)
	// GetByIDForUpdate loads a tracking under a row lock, for use inside a
	// transaction that chains its next reminder — linearizes concurrent
	// chaining attempts for the same tracking.
	GetByIDForUpdate(ctx context.Context, id uint64) (*entities.Tracking, error)
	Update(ctx context.Context, t *entities.Tracking) error
	ListByUser(ctx context.Context, userID uint64, includeDeleted bool) ([]*entities.Tracking, error)
	ListByState(ctx context.Context, state entities.TrackingState) ([]*entities.Tracking, error)
	// DeleteCascade removes the tracking and all of its reminders.
	DeleteCascade(ctx context.Context, id uint64) error
}

// ReminderRepository is the storage port for Reminder instances (C2).
type ReminderRepository interface {
	Create(ctx context.Context, r *entities.Reminder) error
	GetByID(ctx context.Context, id uint64) (*entities.Reminder, error)
	Update(ctx context.Context, r *entities.Reminder) error
	// ListByTracking returns a tracking's reminders ordered by scheduled_time.
	ListByTracking(ctx context.Context, trackingID uint64) ([]*entities.Reminder, error)
	// ListByUser supports the listing/pagination supplement: reminders for a
	// user ordered by scheduled_time, optionally starting strictly after
	// afterID (cursor-free pagination keyed on scheduled_time, tie-broken by
	// id).
	ListByUser(ctx context.Context, userID uint64, status *entities.ReminderStatus, afterID uint64, limit int) ([]*entities.Reminder, error)
	// DueUpcoming returns Upcoming reminders whose scheduled_time is <= now,
	// for the ticker's scan_upcoming_due step.
	DueUpcoming(ctx context.Context, now time.Time) ([]*entities.Reminder, error)
	// UpcomingForTracking returns the tracking's single Upcoming reminder,
	// if any (I1: at most one exists for a Running tracking).
	UpcomingForTracking(ctx context.Context, trackingID uint64) (*entities.Reminder, error)
	Delete(ctx context.Context, id uint64) error
	// DeleteUpcomingForTracking and DeletePendingForTracking support the
	// TrackingLifecycle side effects (I5/I6) and chain_next's atomic
	// replace-the-Upcoming step; both return the number of rows removed.
	DeleteUpcomingForTracking(ctx context.Context, trackingID uint64) (int, error)
	DeletePendingForTracking(ctx context.Context, trackingID uint64) (int, error)
}

// Store composes the repository ports behind a single transactional unit of
// work, mirroring the teacher's *gorm.DB.Transaction(fn) idiom generalized
// to an interface the engine can depend on without importing gorm.
type Store interface {
	Users() UserRepository
	Trackings() TrackingRepository
	Reminders() ReminderRepository
	// WithinTransaction runs fn with a Store whose repositories all share a
	// single transaction; a non-nil return rolls back.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
