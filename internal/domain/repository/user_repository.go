package repository

import (
	"context"

	"lab-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *entity.User) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error)
	UpdatePassword(ctx context.Context, db *gorm.DB, id uuid.UUID, passwordHash string) error
	FindAllWithBookingCount(ctx context.Context, db *gorm.DB) ([]entity.UserWithBookingCount, error)
}
