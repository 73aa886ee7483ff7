package gorm

import (
	"context"
	"errors"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/store/models"
)

type trackingRepository struct {
	db *gormlib.DB
}

func (r *trackingRepository) Create(ctx context.Context, t *entities.Tracking) error {
	row := models.FromTrackingEntity(t)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *trackingRepository) GetByID(ctx context.Context, id uint64) (*entities.Tracking, error) {
	var row models.Tracking
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, entities.ErrTrackingNotFound
		}
		return nil, err
	}
	return row.ToEntity(), nil
}

// GetByIDForUpdate takes a row lock on the tracking so the caller's
// chain_next/ensure_upcoming_matches compound step linearizes against
// concurrent callers touching the same tracking.
func (r *trackingRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entities.Tracking, error) {
	var row models.Tracking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, entities.ErrTrackingNotFound
		}
		return nil, err
	}
	return row.ToEntity(), nil
}

func (r *trackingRepository) Update(ctx context.Context, t *entities.Tracking) error {
	row := models.FromTrackingEntity(t)
	result := r.db.WithContext(ctx).Model(&models.Tracking{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"question":  row.Question,
		"notes":     row.Notes,
		"icon":      row.Icon,
		"days":      row.Days,
		"schedules": row.Schedules,
		"state":     row.State,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrTrackingNotFound
	}
	return nil
}

func (r *trackingRepository) ListByUser(ctx context.Context, userID uint64, includeDeleted bool) ([]*entities.Tracking, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeDeleted {
		q = q.Where("state <> ?", string(entities.TrackingDeleted))
	}
	var rows []models.Tracking
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Tracking, len(rows))
	for i := range rows {
		out[i] = rows[i].ToEntity()
	}
	return out, nil
}

func (r *trackingRepository) ListByState(ctx context.Context, state entities.TrackingState) ([]*entities.Tracking, error) {
	var rows []models.Tracking
	if err := r.db.WithContext(ctx).Where("state = ?", string(state)).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Tracking, len(rows))
	for i := range rows {
		out[i] = rows[i].ToEntity()
	}
	return out, nil
}

func (r *trackingRepository) DeleteCascade(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("tracking_id = ?", id).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tracking{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrTrackingNotFound
		}
		return nil
	})
}
