package repository

import (
	"context"

	"lab-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error
	CreateItems(ctx context.Context, db *gorm.DB, items []entity.BookingItem) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, error)
	// Update writes every mutable column when the stored version equals
	// expectedVersion and bumps the version. It returns the affected rows.
	Update(ctx context.Context, db *gorm.DB, booking *entity.Booking, expectedVersion int) (int64, error)
}
