package service

import (
	"testing"

	"lab-booking/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outboxEntry(t *testing.T, kind entity.NotificationKind, payload interface{}) *entity.NotificationOutbox {
	t.Helper()
	event, err := entity.NewNotificationEvent(kind, "uma@example.com", payload)
	require.NoError(t, err)
	return entity.NewNotificationOutbox(event)
}

func TestRender_BookingCreated(t *testing.T) {
	r := NewEmailRenderer("https://lab.example.com/")
	entry := outboxEntry(t, entity.NotificationBookingCreated, entity.BookingCreatedPayload{
		Name:        "Uma",
		BookingID:   "b-42",
		BookingType: "HOME_COLLECTION",
		TotalAmount: "800.00",
		Tests: []entity.PayloadTest{
			{Name: "Thyroid Profile", Price: "500.00"},
			{Name: "Sugar Fasting", Price: "300.00"},
		},
	})

	email, err := r.Render(entry, "Sunrise Diagnostics")
	require.NoError(t, err)

	assert.Equal(t, "Booking Confirmed - b-42", email.Subject)
	assert.Contains(t, email.HTML, "Home Sample Collection")
	assert.Contains(t, email.HTML, "To be scheduled")
	assert.Contains(t, email.HTML, "Thyroid Profile")
	assert.Contains(t, email.HTML, "800.00")
	assert.Contains(t, email.HTML, `href="https://lab.example.com/bookings/b-42"`)
}

func TestRender_StatusChangedEscapesNotes(t *testing.T) {
	r := NewEmailRenderer("https://lab.example.com")
	entry := outboxEntry(t, entity.NotificationBookingStatusChanged, entity.BookingStatusChangedPayload{
		Name:      "Uma",
		BookingID: "b-42",
		OldStatus: "CONFIRMED",
		NewStatus: "SAMPLE_COLLECTED",
		Notes:     "<script>alert(1)</script>",
	})

	email, err := r.Render(entry, "Sunrise Diagnostics")
	require.NoError(t, err)

	assert.Equal(t, "Booking Status Updated - b-42", email.Subject)
	assert.Contains(t, email.HTML, "Status: Sample Collected")
	assert.Contains(t, email.HTML, "Previous status: Confirmed")
	assert.Contains(t, email.HTML, "#8b5cf6")
	assert.NotContains(t, email.HTML, "<script>")
	assert.Contains(t, email.HTML, "&lt;script&gt;")
}

func TestRender_PasswordReset(t *testing.T) {
	r := NewEmailRenderer("https://lab.example.com")
	entry := outboxEntry(t, entity.NotificationPasswordReset, entity.PasswordResetPayload{
		Name: "Uma", Token: "tok123", ExpiresInMinutes: 30,
	})

	email, err := r.Render(entry, "Sunrise Diagnostics")
	require.NoError(t, err)

	assert.Equal(t, "Reset Your Password - Sunrise Diagnostics", email.Subject)
	assert.Contains(t, email.HTML, "https://lab.example.com/reset-password?token=tok123")
	assert.Contains(t, email.HTML, "30 minutes")
}

func TestRender_Welcome(t *testing.T) {
	r := NewEmailRenderer("https://lab.example.com")
	email, err := r.Render(outboxEntry(t, entity.NotificationUserWelcome, entity.WelcomePayload{Name: "Uma"}), entity.DefaultLabName)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Lab Test Booking!", email.Subject)
}
