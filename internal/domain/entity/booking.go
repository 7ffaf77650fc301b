package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingType represents how the sample is collected
type BookingType string

const (
	BookingTypeHomeCollection BookingType = "HOME_COLLECTION"
	BookingTypeClinicVisit    BookingType = "CLINIC_VISIT"
)

// ParseBookingType returns the booking type named by s
func ParseBookingType(s string) (BookingType, bool) {
	switch BookingType(s) {
	case BookingTypeHomeCollection, BookingTypeClinicVisit:
		return BookingType(s), true
	}
	return "", false
}

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "PENDING"
	BookingStatusConfirmed       BookingStatus = "CONFIRMED"
	BookingStatusSampleCollected BookingStatus = "SAMPLE_COLLECTED"
	BookingStatusProcessing      BookingStatus = "PROCESSING"
	BookingStatusCompleted       BookingStatus = "COMPLETED"
	BookingStatusCancelled       BookingStatus = "CANCELLED"
)

// BookingStatuses lists every status in lifecycle order
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusSampleCollected,
	BookingStatusProcessing,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// ParseBookingStatus returns the status named by s
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, status := range BookingStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// MaxCancelReasonLength bounds the stored cancellation reason (in runes)
const MaxCancelReasonLength = 500

var (
	ErrBookingAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrBookingNotEditable         = errors.New("booking cannot be edited at this stage")
	ErrOnlyHomeCollectionEditable = errors.New("only home collection bookings can be edited")
)

// CancelOutcome tells whether a cancel call cancelled the booking or only
// recorded a request for admin review
type CancelOutcome int

const (
	CancelOutcomeCancelled CancelOutcome = iota + 1
	CancelOutcomeRequested
)

// Booking represents one checkout transaction for one or more lab tests
type Booking struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingType      BookingType     `gorm:"type:varchar(20);not null" json:"booking_type"`
	Status           BookingStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PatientName      string          `gorm:"type:varchar(255);not null" json:"patient_name"`
	PatientAge       int             `gorm:"not null" json:"patient_age"`
	BookingDate      *time.Time      `gorm:"type:date" json:"booking_date,omitempty"`
	BookingTime      *string         `gorm:"type:varchar(50)" json:"booking_time,omitempty"`
	Address          *string         `gorm:"type:text" json:"address,omitempty"`
	City             string          `gorm:"type:varchar(100);not null" json:"city"`
	State            *string         `gorm:"type:varchar(100)" json:"state,omitempty"`
	Pincode          *string         `gorm:"type:varchar(20)" json:"pincode,omitempty"`
	Phone            string          `gorm:"type:varchar(20);not null" json:"phone"`
	PrescriptionURL  *string         `gorm:"column:prescription_url;type:text" json:"prescription_url,omitempty"`
	Notes            *string         `gorm:"type:text" json:"notes,omitempty"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	CancelRequested  bool            `gorm:"not null" json:"cancel_requested"`
	CancelReason     *string         `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelReviewedAt *time.Time      `json:"cancel_reviewed_at,omitempty"`
	CancelReviewedBy *uuid.UUID      `gorm:"type:uuid" json:"cancel_reviewed_by,omitempty"`
	Version          int             `gorm:"not null" json:"version"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User  *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []BookingItem `gorm:"foreignKey:BookingID" json:"items,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingItem ties a booking to one test at the price it had when booked
type BookingItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	TestID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"test_id"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	// Relationships
	Test *LabTest `gorm:"foreignKey:TestID" json:"test,omitempty"`
}

func (BookingItem) TableName() string {
	return "booking_items"
}

// BookingFilter is a domain-level filter for the admin booking listing
type BookingFilter struct {
	Status      BookingStatus
	BookingType BookingType
	UserID      *uuid.UUID
}

// NewBooking builds a pending booking whose items snapshot the given tests'
// prices. TotalAmount is the sum of those snapshots.
func NewBooking(userID uuid.UUID, bookingType BookingType, tests []LabTest) *Booking {
	booking := &Booking{
		ID:          uuid.New(),
		UserID:      userID,
		BookingType: bookingType,
		Status:      BookingStatusPending,
		TotalAmount: decimal.Zero,
		Version:     1,
	}
	for i := range tests {
		booking.Items = append(booking.Items, BookingItem{
			ID:        uuid.New(),
			BookingID: booking.ID,
			TestID:    tests[i].ID,
			Price:     tests[i].Price,
			Test:      &tests[i],
		})
		booking.TotalAmount = booking.TotalAmount.Add(tests[i].Price)
	}
	return booking
}

// ItemsTotal sums the frozen item prices
func (b *Booking) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Price)
	}
	return total
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// IsConfirmedOrLater reports whether the lab has accepted the booking.
// Cancelling from these states only records a request.
func (b *Booking) IsConfirmedOrLater() bool {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusSampleCollected, BookingStatusProcessing, BookingStatusCompleted:
		return true
	}
	return false
}

// IsOwnedBy checks whether the actor created the booking
func (b *Booking) IsOwnedBy(actor Actor) bool {
	return b.UserID == actor.ID
}

// CanBeAccessedBy allows the owner and any admin
func (b *Booking) CanBeAccessedBy(actor Actor) bool {
	return actor.IsAdmin() || b.IsOwnedBy(actor)
}

// CheckEditable returns nil when patient/contact fields may change
func (b *Booking) CheckEditable() error {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return ErrBookingNotEditable
	}
	if b.BookingType != BookingTypeHomeCollection {
		return ErrOnlyHomeCollectionEditable
	}
	return nil
}

// RequestCancel cancels a booking that has not been confirmed yet, or flags
// a confirmed one for admin review. The status is unchanged in the latter
// case.
func (b *Booking) RequestCancel(reason string) (CancelOutcome, error) {
	if b.IsCancelled() {
		return 0, ErrBookingAlreadyCancelled
	}

	if b.IsConfirmedOrLater() {
		b.CancelRequested = true
		b.CancelReason = truncateReason(reason)
		return CancelOutcomeRequested, nil
	}

	b.Status = BookingStatusCancelled
	return CancelOutcomeCancelled, nil
}

// ApplyAdminStatus moves the booking to status without ordering checks.
// Setting CANCELLED approves any pending cancellation request.
// It reports whether the status actually changed.
func (b *Booking) ApplyAdminStatus(status BookingStatus, reviewerID uuid.UUID, now time.Time) bool {
	old := b.Status
	b.Status = status

	switch status {
	case BookingStatusCancelled:
		reviewedAt := now
		reviewer := reviewerID
		b.CancelReviewedAt = &reviewedAt
		b.CancelReviewedBy = &reviewer
		b.CancelRequested = false
	case BookingStatusPending:
		// a pending booking can be cancelled directly, so a stale request flag
		// would never be reviewed
		b.CancelRequested = false
	}

	return old != status
}

func truncateReason(reason string) *string {
	if reason == "" {
		return nil
	}
	runes := []rune(reason)
	if len(runes) > MaxCancelReasonLength {
		runes = runes[:MaxCancelReasonLength]
	}
	s := string(runes)
	return &s
}
