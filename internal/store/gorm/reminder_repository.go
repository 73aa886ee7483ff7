package gorm

import (
	"context"
	"errors"
	"time"

	gormlib "gorm.io/gorm"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/store/models"
)

type reminderRepository struct {
	db *gormlib.DB
}

func (r *reminderRepository) Create(ctx context.Context, rem *entities.Reminder) error {
	row := models.FromReminderEntity(rem)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	rem.ID = row.ID
	rem.CreatedAt = row.CreatedAt
	rem.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id uint64) (*entities.Reminder, error) {
	var row models.Reminder
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, entities.ErrReminderNotFound
		}
		return nil, err
	}
	return row.ToEntity(), nil
}

func (r *reminderRepository) Update(ctx context.Context, rem *entities.Reminder) error {
	row := models.FromReminderEntity(rem)
	result := r.db.WithContext(ctx).Model(&models.Reminder{}).Where("id = ?", rem.ID).Updates(map[string]interface{}{
		"scheduled_time": row.ScheduledTime,
		"notes":          row.Notes,
		"answer_value":   row.AnswerValue,
		"status":         row.Status,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrReminderNotFound
	}
	return nil
}

func (r *reminderRepository) ListByTracking(ctx context.Context, trackingID uint64) ([]*entities.Reminder, error) {
	var rows []models.Reminder
	if err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).Order("scheduled_time").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReminderEntities(rows), nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID uint64, status *entities.ReminderStatus, afterID uint64, limit int) ([]*entities.Reminder, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}
	if afterID > 0 {
		cursor := r.db.WithContext(ctx).Model(&models.Reminder{}).Select("scheduled_time").Where("id = ?", afterID)
		q = q.Where("(scheduled_time > (?) OR (scheduled_time = (?) AND id > ?))", cursor, cursor, afterID)
	}
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Reminder
	if err := q.Order("scheduled_time, id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReminderEntities(rows), nil
}

func (r *reminderRepository) DueUpcoming(ctx context.Context, now time.Time) ([]*entities.Reminder, error) {
	var rows []models.Reminder
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", string(entities.ReminderUpcoming), now).
		Order("scheduled_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReminderEntities(rows), nil
}

func (r *reminderRepository) UpcomingForTracking(ctx context.Context, trackingID uint64) (*entities.Reminder, error) {
	var row models.Reminder
	err := r.db.WithContext(ctx).
		Where("tracking_id = ? AND status = ?", trackingID, string(entities.ReminderUpcoming)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToEntity(), nil
}

func (r *reminderRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Reminder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrReminderNotFound
	}
	return nil
}

func (r *reminderRepository) DeleteUpcomingForTracking(ctx context.Context, trackingID uint64) (int, error) {
	result := r.db.WithContext(ctx).
		Where("tracking_id = ? AND status = ?", trackingID, string(entities.ReminderUpcoming)).
		Delete(&models.Reminder{})
	return int(result.RowsAffected), result.Error
}

func (r *reminderRepository) DeletePendingForTracking(ctx context.Context, trackingID uint64) (int, error) {
	result := r.db.WithContext(ctx).
		Where("tracking_id = ? AND status = ?", trackingID, string(entities.ReminderPending)).
		Delete(&models.Reminder{})
	return int(result.RowsAffected), result.Error
}

func toReminderEntities(rows []models.Reminder) []*entities.Reminder {
	out := make([]*entities.Reminder, len(rows))
	for i := range rows {
		out[i] = rows[i].ToEntity()
	}
	return out
}
