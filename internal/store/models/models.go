// Package models holds the GORM row types for the store (C2), grounded on
// the teacher's internal/models package: plain structs with gorm tags and a
// handful of *_gorm.go repository implementations operating directly on
// them, rather than a separate ORM-agnostic persistence model.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"reminder-engine/internal/domain/entities"
)

// User mirrors entities.User for storage. Email/timezone/locale/
// notification preference/telegram chat id are the only fields the core's
// UserRepository reads; registration and password fields belong to the
// out-of-scope auth/profile collaborator and are intentionally absent here.
type User struct {
	ID                     uint64 `gorm:"primaryKey;autoIncrement"`
	Email                  string `gorm:"uniqueIndex;not null"`
	Timezone               string `gorm:"not null"`
	Locale                 string `gorm:"not null"`
	NotificationPreference string `gorm:"not null"`
	TelegramChatID         *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (User) TableName() string { return "users" }

// DaysPatternJSON is a sql.Scanner/driver.Valuer wrapper persisting a
// DaysPattern as a single JSON document, per §6's "days field... stored as
// a JSON document matching the DaysPattern variant shape". No example repo
// in the corpus ships a polymorphic-variant-JSON column type, so this one
// field is a deliberate stdlib encoding/json boundary.
type DaysPatternJSON struct {
	Pattern *entities.DaysPattern
}

func (d DaysPatternJSON) Value() (driver.Value, error) {
	if d.Pattern == nil {
		return nil, nil
	}
	b, err := json.Marshal(d.Pattern)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *DaysPatternJSON) Scan(value interface{}) error {
	if value == nil {
		d.Pattern = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("models: DaysPatternJSON.Scan: unsupported type")
	}
	if len(raw) == 0 {
		d.Pattern = nil
		return nil
	}
	var p entities.DaysPattern
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	d.Pattern = &p
	return nil
}

// ScheduleListJSON persists a ScheduleList as a JSON array.
type ScheduleListJSON struct {
	Schedules entities.ScheduleList
}

func (s ScheduleListJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(s.Schedules)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *ScheduleListJSON) Scan(value interface{}) error {
	if value == nil {
		s.Schedules = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("models: ScheduleListJSON.Scan: unsupported type")
	}
	if len(raw) == 0 {
		s.Schedules = nil
		return nil
	}
	return json.Unmarshal(raw, &s.Schedules)
}

// Tracking mirrors entities.Tracking for storage.
type Tracking struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"index;not null"`
	Question  string `gorm:"not null"`
	Notes     *string
	Icon      *string
	Days      DaysPatternJSON  `gorm:"type:text"`
	Schedules ScheduleListJSON `gorm:"type:text;not null"`
	State     string           `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Tracking) TableName() string { return "trackings" }

// Reminder mirrors entities.Reminder for storage.
type Reminder struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	TrackingID    uint64 `gorm:"index;not null"`
	UserID        uint64 `gorm:"index;not null"`
	ScheduledTime time.Time `gorm:"index;not null"`
	Notes         *string
	AnswerValue   *string
	Status        string `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Reminder) TableName() string { return "reminders" }

// ToEntity converts the row to the domain entity.
func (u *User) ToEntity() *entities.User {
	return &entities.User{
		ID:                     u.ID,
		Email:                  u.Email,
		Timezone:               u.Timezone,
		Locale:                 u.Locale,
		NotificationPreference: entities.NotificationChannel(u.NotificationPreference),
		TelegramChatID:         u.TelegramChatID,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

// FromUserEntity builds a row from the domain entity.
func FromUserEntity(u *entities.User) *User {
	return &User{
		ID:                     u.ID,
		Email:                  u.Email,
		Timezone:               u.Timezone,
		Locale:                 u.Locale,
		NotificationPreference: string(u.NotificationPreference),
		TelegramChatID:         u.TelegramChatID,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

func (t *Tracking) ToEntity() *entities.Tracking {
	return &entities.Tracking{
		ID:        t.ID,
		UserID:    t.UserID,
		Question:  t.Question,
		Notes:     t.Notes,
		Icon:      t.Icon,
		Days:      t.Days.Pattern,
		Schedules: t.Schedules.Schedules,
		State:     entities.TrackingState(t.State),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTrackingEntity(t *entities.Tracking) *Tracking {
	return &Tracking{
		ID:        t.ID,
		UserID:    t.UserID,
		Question:  t.Question,
		Notes:     t.Notes,
		Icon:      t.Icon,
		Days:      DaysPatternJSON{Pattern: t.Days},
		Schedules: ScheduleListJSON{Schedules: t.Schedules},
		State:     string(t.State),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (r *Reminder) ToEntity() *entities.Reminder {
	var av *entities.AnswerValue
	if r.AnswerValue != nil {
		v := entities.AnswerValue(*r.AnswerValue)
		av = &v
	}
	return &entities.Reminder{
		ID:            r.ID,
		TrackingID:    r.TrackingID,
		UserID:        r.UserID,
		ScheduledTime: r.ScheduledTime,
		Notes:         r.Notes,
		AnswerValue:   av,
		Status:        entities.ReminderStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func FromReminderEntity(r *entities.Reminder) *Reminder {
	var av *string
	if r.AnswerValue != nil {
		s := string(*r.AnswerValue)
		av = &s
	}
	return &Reminder{
		ID:            r.ID,
		TrackingID:    r.TrackingID,
		UserID:        r.UserID,
		ScheduledTime: r.ScheduledTime,
		Notes:         r.Notes,
		AnswerValue:   av,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
