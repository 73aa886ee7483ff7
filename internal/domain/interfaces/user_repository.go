package interfaces

import (
	"context"

	"reminder-engine/internal/domain/entities"
)

// UserRepository is read-only to the core except for the timezone and
// notification preference lookups used when chaining a tracking's next
// reminder and when dispatching through a NotifierPort. Profile mutation,
// registration, and password handling belong to the auth/profile
// collaborator, not here.
type UserRepository interface {
	GetByID(ctx context.Context, id uint64) (*entities.User, error)
	GetTimezoneAndLocale(ctx context.Context, id uint64) (tz string, locale string, err error)
	GetNotificationTarget(ctx context.Context, id uint64) (pref entities.NotificationChannel, email string, telegramChatID *string, err error)
}
