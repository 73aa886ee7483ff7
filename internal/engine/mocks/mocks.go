// Package mocks holds testify/mock doubles for the store and event bus
// ports, grounded on the teacher's internal/mocks/debt_repository_mock.go
// testify/mock style.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) GetByID(ctx context.Context, id uint64) (*entities.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entities.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetTimezoneAndLocale(ctx context.Context, id uint64) (string, string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *UserRepository) GetNotificationTarget(ctx context.Context, id uint64) (entities.NotificationChannel, string, *string, error) {
	args := m.Called(ctx, id)
	ch, _ := args.Get(0).(entities.NotificationChannel)
	tg, _ := args.Get(2).(*string)
	return ch, args.String(1), tg, args.Error(3)
}

type TrackingRepository struct{ mock.Mock }

func (m *TrackingRepository) Create(ctx context.Context, t *entities.Tracking) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *TrackingRepository) GetByID(ctx context.Context, id uint64) (*entities.Tracking, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*entities.Tracking)
	return t, args.Error(1)
}
func (m *TrackingRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entities.Tracking, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*entities.Tracking)
	return t, args.Error(1)
}
func (m *TrackingRepository) Update(ctx context.Context, t *entities.Tracking) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *TrackingRepository) ListByUser(ctx context.Context, userID uint64, includeDeleted bool) ([]*entities.Tracking, error) {
	args := m.Called(ctx, userID, includeDeleted)
	ts, _ := args.Get(0).([]*entities.Tracking)
	return ts, args.Error(1)
}
func (m *TrackingRepository) ListByState(ctx context.Context, state entities.TrackingState) ([]*entities.Tracking, error) {
	args := m.Called(ctx, state)
	ts, _ := args.Get(0).([]*entities.Tracking)
	return ts, args.Error(1)
}
func (m *TrackingRepository) DeleteCascade(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ReminderRepository struct{ mock.Mock }

func (m *ReminderRepository) Create(ctx context.Context, r *entities.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *ReminderRepository) GetByID(ctx context.Context, id uint64) (*entities.Reminder, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*entities.Reminder)
	return r, args.Error(1)
}
func (m *ReminderRepository) Update(ctx context.Context, r *entities.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *ReminderRepository) ListByTracking(ctx context.Context, trackingID uint64) ([]*entities.Reminder, error) {
	args := m.Called(ctx, trackingID)
	r, _ := args.Get(0).([]*entities.Reminder)
	return r, args.Error(1)
}
func (m *ReminderRepository) ListByUser(ctx context.Context, userID uint64, status *entities.ReminderStatus, afterID uint64, limit int) ([]*entities.Reminder, error) {
	args := m.Called(ctx, userID, status, afterID, limit)
	r, _ := args.Get(0).([]*entities.Reminder)
	return r, args.Error(1)
}
func (m *ReminderRepository) DueUpcoming(ctx context.Context, now time.Time) ([]*entities.Reminder, error) {
	args := m.Called(ctx, now)
	r, _ := args.Get(0).([]*entities.Reminder)
	return r, args.Error(1)
}
func (m *ReminderRepository) UpcomingForTracking(ctx context.Context, trackingID uint64) (*entities.Reminder, error) {
	args := m.Called(ctx, trackingID)
	r, _ := args.Get(0).(*entities.Reminder)
	return r, args.Error(1)
}
func (m *ReminderRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *ReminderRepository) DeleteUpcomingForTracking(ctx context.Context, trackingID uint64) (int, error) {
	args := m.Called(ctx, trackingID)
	return args.Int(0), args.Error(1)
}
func (m *ReminderRepository) DeletePendingForTracking(ctx context.Context, trackingID uint64) (int, error) {
	args := m.Called(ctx, trackingID)
	return args.Int(0), args.Error(1)
}

// Store composes the three repository mocks and runs WithinTransaction
// inline (no real transaction semantics — tests only need the callback to
// execute against the same mocked repositories).
type Store struct {
	Users_     *UserRepository
	Trackings_ *TrackingRepository
	Reminders_ *ReminderRepository
}

func NewStore() *Store {
	return &Store{
		Users_:     &UserRepository{},
		Trackings_: &TrackingRepository{},
		Reminders_: &ReminderRepository{},
	}
}

func (s *Store) Users() interfaces.UserRepository         { return s.Users_ }
func (s *Store) Trackings() interfaces.TrackingRepository { return s.Trackings_ }
func (s *Store) Reminders() interfaces.ReminderRepository { return s.Reminders_ }

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Store) error) error {
	return fn(ctx, s)
}

type EventPublisher struct{ mock.Mock }

func (m *EventPublisher) Publish(ctx context.Context, event interfaces.Event) {
	m.Called(ctx, event)
}
