package repository

import (
	"context"
	"time"

	"lab-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationOutboxRepository interface {
	CreateBatch(ctx context.Context, db *gorm.DB, entries []*entity.NotificationOutbox) error
	// Claim moves a pending entry to sending and returns it, or nil when
	// another worker already took it
	Claim(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.NotificationOutbox, error)
	MarkSent(ctx context.Context, db *gorm.DB, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string) error
	FindPendingIDs(ctx context.Context, db *gorm.DB, createdBefore time.Time, limit int) ([]uuid.UUID, error)
}
