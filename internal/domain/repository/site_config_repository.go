package repository

import (
	"context"

	"lab-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type SiteConfigRepository interface {
	FindFirst(ctx context.Context, db *gorm.DB) (*entity.SiteConfig, error)
	Save(ctx context.Context, db *gorm.DB, config *entity.SiteConfig) error
}
