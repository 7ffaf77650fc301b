package repository

import (
	"context"
	"errors"
	"time"

	"lab-booking/internal/domain/entity"
	domainRepo "lab-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationOutboxRepository struct{}

func NewNotificationOutboxRepository() domainRepo.NotificationOutboxRepository {
	return &notificationOutboxRepository{}
}

func (r *notificationOutboxRepository) CreateBatch(ctx context.Context, db *gorm.DB, entries []*entity.NotificationOutbox) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&entries).Error
}

// Claim atomically moves pending -> sending so that a row is handed to at
// most one sender, even when the sweep and the in-process queue race.
func (r *notificationOutboxRepository) Claim(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.NotificationOutbox, error) {
	result := db.WithContext(ctx).
		Model(&entity.NotificationOutbox{}).
		Where("id = ? AND status = ?", id, entity.NotificationStatusPending).
		Updates(map[string]interface{}{
			"status":   entity.NotificationStatusSending,
			"attempts": gorm.Expr("attempts + 1"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var entry entity.NotificationOutbox
	err := db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *notificationOutboxRepository) MarkSent(ctx context.Context, db *gorm.DB, id uuid.UUID, sentAt time.Time) error {
	return db.WithContext(ctx).
		Model(&entity.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  entity.NotificationStatusSent,
			"sent_at": sentAt,
		}).Error
}

func (r *notificationOutboxRepository) MarkFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string) error {
	return db.WithContext(ctx).
		Model(&entity.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": entity.NotificationStatusFailed,
			"error":  reason,
		}).Error
}

func (r *notificationOutboxRepository) FindPendingIDs(ctx context.Context, db *gorm.DB, createdBefore time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).
		Model(&entity.NotificationOutbox{}).
		Where("status = ? AND created_at < ?", entity.NotificationStatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
