package repository

import (
	"context"
	"errors"

	"lab-booking/internal/domain/entity"
	domainRepo "lab-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type siteConfigRepository struct{}

func NewSiteConfigRepository() domainRepo.SiteConfigRepository {
	return &siteConfigRepository{}
}

func (r *siteConfigRepository) FindFirst(ctx context.Context, db *gorm.DB) (*entity.SiteConfig, error) {
	var config entity.SiteConfig
	err := db.WithContext(ctx).Order("created_at ASC").First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *siteConfigRepository) Save(ctx context.Context, db *gorm.DB, config *entity.SiteConfig) error {
	return db.WithContext(ctx).Save(config).Error
}
