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

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

// Create inserts the booking row only; items are written by CreateItems
func (r *bookingRepository) Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

func (r *bookingRepository) CreateItems(ctx context.Context, db *gorm.DB, items []entity.BookingItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.WithContext(ctx).
		Preload("Items.Test").
		Preload("User").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.WithContext(ctx).
		Preload("Items.Test").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, error) {
	query := db.WithContext(ctx).
		Preload("Items.Test").
		Preload("User")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BookingType != "" {
		query = query.Where("booking_type = ?", filter.BookingType)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var bookings []entity.Booking
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Update is a compare-and-swap on the version column. RowsAffected == 0
// means the booking changed since it was read (or no longer exists).
func (r *bookingRepository) Update(ctx context.Context, db *gorm.DB, booking *entity.Booking, expectedVersion int) (int64, error) {
	result := db.WithContext(ctx).
		Model(&entity.Booking{}).
		Where("id = ? AND version = ?", booking.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":             booking.Status,
			"patient_name":       booking.PatientName,
			"patient_age":        booking.PatientAge,
			"booking_date":       booking.BookingDate,
			"booking_time":       booking.BookingTime,
			"address":            booking.Address,
			"city":               booking.City,
			"state":              booking.State,
			"pincode":            booking.Pincode,
			"phone":              booking.Phone,
			"notes":              booking.Notes,
			"cancel_requested":   booking.CancelRequested,
			"cancel_reason":      booking.CancelReason,
			"cancel_reviewed_at": booking.CancelReviewedAt,
			"cancel_reviewed_by": booking.CancelReviewedBy,
			"version":            gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		booking.Version = expectedVersion + 1
	}
	return result.RowsAffected, nil
}
