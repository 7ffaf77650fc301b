package repository

import (
	"context"
	"errors"

	"lab-booking/internal/domain/entity"
	domainRepo "lab-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type labTestRepository struct{}

func NewLabTestRepository() domainRepo.LabTestRepository {
	return &labTestRepository{}
}

func (r *labTestRepository) Create(ctx context.Context, db *gorm.DB, test *entity.LabTest) error {
	return db.WithContext(ctx).Create(test).Error
}

func (r *labTestRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.LabTest, error) {
	var test entity.LabTest
	err := db.WithContext(ctx).Where("id = ?", id).First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &test, nil
}

func (r *labTestRepository) FindActiveByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]entity.LabTest, error) {
	var tests []entity.LabTest
	if len(ids) == 0 {
		return tests, nil
	}
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&tests).Error
	if err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *labTestRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.LabTestFilter) ([]entity.LabTest, int64, error) {
	query := db.WithContext(ctx).Model(&entity.LabTest{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var tests []entity.LabTest
	if err := query.Order("created_at DESC").Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (r *labTestRepository) Update(ctx context.Context, db *gorm.DB, test *entity.LabTest) error {
	return db.WithContext(ctx).Save(test).Error
}

func (r *labTestRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.LabTest{}).Error
}

// IsReferenced reports whether any booking item points at the test
func (r *labTestRepository) IsReferenced(ctx context.Context, db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&entity.BookingItem{}).
		Where("test_id = ?", id).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
