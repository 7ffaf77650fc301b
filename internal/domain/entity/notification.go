package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationKind selects the email template for an outbox entry
type NotificationKind string

const (
	NotificationBookingCreated       NotificationKind = "booking.created"
	NotificationBookingStatusChanged NotificationKind = "booking.status_changed"
	NotificationUserWelcome          NotificationKind = "user.welcome"
	NotificationPasswordReset        NotificationKind = "user.password_reset"
)

// NotificationStatus tracks delivery of an outbox entry
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSending NotificationStatus = "sending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// NotificationEvent is produced by a usecase alongside its mutation and
// consumed asynchronously by the dispatcher
type NotificationEvent struct {
	Kind      NotificationKind
	Recipient string
	Payload   JSON
}

// NewNotificationEvent encodes payload into the event's JSON payload
func NewNotificationEvent(kind NotificationKind, recipient string, payload interface{}) (NotificationEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return NotificationEvent{}, err
	}
	var data JSON
	if err := json.Unmarshal(raw, &data); err != nil {
		return NotificationEvent{}, err
	}
	return NotificationEvent{Kind: kind, Recipient: recipient, Payload: data}, nil
}

// BookingCreatedPayload feeds the booking confirmation email
type BookingCreatedPayload struct {
	Name        string        `json:"name"`
	BookingID   string        `json:"booking_id"`
	BookingType string        `json:"booking_type"`
	BookingDate string        `json:"booking_date,omitempty"`
	BookingTime string        `json:"booking_time,omitempty"`
	TotalAmount string        `json:"total_amount"`
	Tests       []PayloadTest `json:"tests"`
}

type PayloadTest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// BookingStatusChangedPayload feeds the status update email
type BookingStatusChangedPayload struct {
	Name      string `json:"name"`
	BookingID string `json:"booking_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Notes     string `json:"notes,omitempty"`
}

type WelcomePayload struct {
	Name string `json:"name"`
}

type PasswordResetPayload struct {
	Name             string `json:"name"`
	Token            string `json:"token"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// NotificationOutbox is the persisted form of a NotificationEvent.
// Entries are delivered at most once: a failed send is never retried.
type NotificationOutbox struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Kind      NotificationKind   `gorm:"type:varchar(50);not null" json:"kind"`
	Recipient string             `gorm:"type:varchar(255);not null" json:"recipient"`
	Payload   JSON               `gorm:"type:jsonb" json:"payload"`
	Status    NotificationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts  int                `gorm:"not null" json:"attempts"`
	Error     *string            `gorm:"type:text" json:"error,omitempty"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
	CreatedAt time.Time          `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NotificationOutbox) TableName() string {
	return "notification_outbox"
}

// NewNotificationOutbox turns an event into a pending outbox row
func NewNotificationOutbox(event NotificationEvent) *NotificationOutbox {
	return &NotificationOutbox{
		ID:        uuid.New(),
		Kind:      event.Kind,
		Recipient: event.Recipient,
		Payload:   event.Payload,
		Status:    NotificationStatusPending,
	}
}

// DecodePayload unmarshals the stored payload into v
func (o *NotificationOutbox) DecodePayload(v interface{}) error {
	raw, err := json.Marshal(o.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
