package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	BookingType     string   `json:"booking_type" validate:"required,oneof=HOME_COLLECTION CLINIC_VISIT"`
	PatientName     string   `json:"patient_name" validate:"required"`
	PatientAge      int      `json:"patient_age"`
	BookingDate     string   `json:"booking_date"` // YYYY-MM-DD or RFC3339
	BookingTime     string   `json:"booking_time"`
	Address         string   `json:"address"`
	City            string   `json:"city" validate:"required"`
	State           string   `json:"state"`
	Pincode         string   `json:"pincode"`
	Phone           string   `json:"phone" validate:"required"`
	PrescriptionURL string   `json:"prescription_url"`
	Notes           string   `json:"notes"`
	TestIDs         []string `json:"test_ids" validate:"required,min=1"`
}

// EditBookingRequest is a partial update: nil fields are left untouched
type EditBookingRequest struct {
	PatientName *string `json:"patient_name"`
	PatientAge  *int    `json:"patient_age"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Pincode     *string `json:"pincode"`
	Phone       *string `json:"phone"`
	BookingDate *string `json:"booking_date"`
	BookingTime *string `json:"booking_time"`
	Notes       *string `json:"notes"`
	Version     *int    `json:"version"`
}

type CancelBookingRequest struct {
	Reason  string `json:"reason"`
	Version *int   `json:"version"`
}

// AdminUpdateBookingRequest changes status and/or notes. An empty notes
// string clears the stored notes.
type AdminUpdateBookingRequest struct {
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
	Version *int    `json:"version"`
}

type BookingListQuery struct {
	Status      string
	BookingType string
}

// Response DTOs

type BookingItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	TestID   uuid.UUID       `json:"test_id"`
	TestName string          `json:"test_name,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

type BookingUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

type BookingResponse struct {
	ID               uuid.UUID             `json:"id"`
	UserID           uuid.UUID             `json:"user_id"`
	BookingType      string                `json:"booking_type"`
	Status           string                `json:"status"`
	PatientName      string                `json:"patient_name"`
	PatientAge       int                   `json:"patient_age"`
	BookingDate      *string               `json:"booking_date,omitempty"`
	BookingTime      *string               `json:"booking_time,omitempty"`
	Address          *string               `json:"address,omitempty"`
	City             string                `json:"city"`
	State            *string               `json:"state,omitempty"`
	Pincode          *string               `json:"pincode,omitempty"`
	Phone            string                `json:"phone"`
	PrescriptionURL  *string               `json:"prescription_url,omitempty"`
	Notes            *string               `json:"notes,omitempty"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	CancelRequested  bool                  `json:"cancel_requested"`
	CancelReason     *string               `json:"cancel_reason,omitempty"`
	CancelReviewedAt *time.Time            `json:"cancel_reviewed_at,omitempty"`
	CancelReviewedBy *uuid.UUID            `json:"cancel_reviewed_by,omitempty"`
	Version          int                   `json:"version"`
	Items            []BookingItemResponse `json:"items"`
	User             *BookingUserResponse  `json:"user,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

type CancelBookingResponse struct {
	Cancelled       bool             `json:"cancelled,omitempty"`
	CancelRequested bool             `json:"cancel_requested,omitempty"`
	Booking         *BookingResponse `json:"booking"`
}
