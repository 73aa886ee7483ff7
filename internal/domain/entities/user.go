package entities

import "time"

// NotificationChannel is the out-of-band channel a user receives reminders on.
type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelTelegram NotificationChannel = "telegram"
)

// User is the owner of trackings. Profile storage, auth, and password
// handling live outside the core; the engine only ever reads the fields
// below, and only from the lookups it actually needs (timezone for
// recurrence math, notification preference for dispatch).
type User struct {
	ID                     uint64              `json:"id"`
	Email                  string              `json:"email"`
	Timezone               string              `json:"timezone"` // IANA zone, e.g. "America/Argentina/Buenos_Aires"
	Locale                 string              `json:"locale"`
	NotificationPreference NotificationChannel `json:"notification_preference"`
	TelegramChatID         *string             `json:"telegram_chat_id,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// IsValid validates the subset of the user entity the core is allowed to
// mutate (timezone, notification preference).
func (u *User) IsValid() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.Timezone == "" {
		return ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(u.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	if u.NotificationPreference != NotificationChannelEmail && u.NotificationPreference != NotificationChannelTelegram {
		return ErrInvalidNotificationPreference
	}
	return nil
}
