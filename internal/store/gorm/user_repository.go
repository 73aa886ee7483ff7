package gorm

import (
	"context"
	"errors"

	gormlib "gorm.io/gorm"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/store/models"
)

type userRepository struct {
	db *gormlib.DB
}

func (r *userRepository) GetByID(ctx context.Context, id uint64) (*entities.User, error) {
	var row models.User
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, err
	}
	return row.ToEntity(), nil
}

func (r *userRepository) GetTimezoneAndLocale(ctx context.Context, id uint64) (string, string, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Select("timezone", "locale").First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return "", "", entities.ErrUserNotFound
		}
		return "", "", err
	}
	return row.Timezone, row.Locale, nil
}

func (r *userRepository) GetNotificationTarget(ctx context.Context, id uint64) (entities.NotificationChannel, string, *string, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Select("email", "notification_preference", "telegram_chat_id").First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return "", "", nil, entities.ErrUserNotFound
		}
		return "", "", nil, err
	}
	return entities.NotificationChannel(row.NotificationPreference), row.Email, row.TelegramChatID, nil
}
