package repository

import (
	"context"

	"lab-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LabTestRepository interface {
	Create(ctx context.Context, db *gorm.DB, test *entity.LabTest) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.LabTest, error)
	FindActiveByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]entity.LabTest, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.LabTestFilter) ([]entity.LabTest, int64, error)
	Update(ctx context.Context, db *gorm.DB, test *entity.LabTest) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	IsReferenced(ctx context.Context, db *gorm.DB, id uuid.UUID) (bool, error)
}
