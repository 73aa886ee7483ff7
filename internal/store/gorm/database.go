// Package gorm provides the GORM-backed Store (C2), grounded on the
// teacher's internal/database.NewDatabase + internal/repository/*_gorm.go
// pair, generalized from the debt-tracker's five tables to the reminder
// engine's users/trackings/reminders tables.
package gorm

import (
	"context"
	"fmt"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/store/models"
)

// Database owns the *gorm.DB connection and implements interfaces.Store.
type Database struct {
	db *gormlib.DB
}

// Open connects using dialector and migrates the schema. The teacher keeps
// both gorm.io/driver/postgres and gorm.io/driver/sqlite in go.mod (the
// latter for its sqlite-backed integration tests); this stays dialector-
// agnostic for the same reason.
func Open(dialector gormlib.Dialector) (*Database, error) {
	db, err := gormlib.Open(dialector, &gormlib.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tracking{},
		&models.Reminder{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks store connectivity, used by the /health supplement.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Users() interfaces.UserRepository           { return &userRepository{db: d.db} }
func (d *Database) Trackings() interfaces.TrackingRepository    { return &trackingRepository{db: d.db} }
func (d *Database) Reminders() interfaces.ReminderRepository    { return &reminderRepository{db: d.db} }

func (d *Database) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Store) error) error {
	return d.db.WithContext(ctx).Transaction(func(txDB *gormlib.DB) error {
		return fn(ctx, &Database{db: txDB})
	})
}
