package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking_TotalsItemPrices(t *testing.T) {
	tests := []LabTest{
		{ID: uuid.New(), Name: "Thyroid Profile", Price: decimal.RequireFromString("500.00")},
		{ID: uuid.New(), Name: "Sugar Fasting", Price: decimal.RequireFromString("300.50")},
	}

	b := NewBooking(uuid.New(), BookingTypeHomeCollection, tests)

	assert.Equal(t, BookingStatusPending, b.Status)
	assert.Equal(t, 1, b.Version)
	require.Len(t, b.Items, 2)
	assert.True(t, b.TotalAmount.Equal(decimal.RequireFromString("800.50")))
	assert.True(t, b.TotalAmount.Equal(b.ItemsTotal()))
	for _, item := range b.Items {
		assert.Equal(t, b.ID, item.BookingID)
	}
}

func TestCheckEditable(t *testing.T) {
	tests := []struct {
		status      BookingStatus
		bookingType BookingType
		want        error
	}{
		{BookingStatusPending, BookingTypeHomeCollection, nil},
		{BookingStatusSampleCollected, BookingTypeHomeCollection, nil},
		{BookingStatusProcessing, BookingTypeHomeCollection, nil},
		{BookingStatusConfirmed, BookingTypeHomeCollection, ErrBookingNotEditable},
		{BookingStatusCompleted, BookingTypeHomeCollection, ErrBookingNotEditable},
		{BookingStatusCancelled, BookingTypeHomeCollection, ErrBookingNotEditable},
		{BookingStatusPending, BookingTypeClinicVisit, ErrOnlyHomeCollectionEditable},
		{BookingStatusCancelled, BookingTypeClinicVisit, ErrBookingNotEditable},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+string(tt.bookingType), func(t *testing.T) {
			b := &Booking{Status: tt.status, BookingType: tt.bookingType}
			assert.Equal(t, tt.want, b.CheckEditable())
		})
	}
}

func TestRequestCancel(t *testing.T) {
	t.Run("pending cancels immediately", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}
		outcome, err := b.RequestCancel("changed plans")
		require.NoError(t, err)
		assert.Equal(t, CancelOutcomeCancelled, outcome)
		assert.Equal(t, BookingStatusCancelled, b.Status)
		assert.False(t, b.CancelRequested)
	})

	for _, status := range []BookingStatus{BookingStatusConfirmed, BookingStatusSampleCollected, BookingStatusProcessing, BookingStatusCompleted} {
		t.Run(string(status)+" records a request", func(t *testing.T) {
			b := &Booking{Status: status}
			outcome, err := b.RequestCancel("travelling")
			require.NoError(t, err)
			assert.Equal(t, CancelOutcomeRequested, outcome)
			assert.Equal(t, status, b.Status)
			assert.True(t, b.CancelRequested)
			require.NotNil(t, b.CancelReason)
			assert.Equal(t, "travelling", *b.CancelReason)
		})
	}

	t.Run("cancelled is rejected", func(t *testing.T) {
		b := &Booking{Status: BookingStatusCancelled}
		_, err := b.RequestCancel("")
		assert.ErrorIs(t, err, ErrBookingAlreadyCancelled)
	})

	t.Run("reason is truncated and empty reason stored as nil", func(t *testing.T) {
		b := &Booking{Status: BookingStatusConfirmed}
		_, err := b.RequestCancel(strings.Repeat("é", MaxCancelReasonLength+20))
		require.NoError(t, err)
		assert.Len(t, []rune(*b.CancelReason), MaxCancelReasonLength)

		b = &Booking{Status: BookingStatusConfirmed}
		_, err = b.RequestCancel("")
		require.NoError(t, err)
		assert.Nil(t, b.CancelReason)
	})
}

func TestApplyAdminStatus(t *testing.T) {
	reviewer := uuid.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	b := &Booking{Status: BookingStatusConfirmed, CancelRequested: true}
	changed := b.ApplyAdminStatus(BookingStatusCancelled, reviewer, now)

	assert.True(t, changed)
	assert.Equal(t, BookingStatusCancelled, b.Status)
	assert.False(t, b.CancelRequested)
	require.NotNil(t, b.CancelReviewedAt)
	assert.Equal(t, now, *b.CancelReviewedAt)
	assert.Equal(t, reviewer, *b.CancelReviewedBy)

	b = &Booking{Status: BookingStatusProcessing, CancelRequested: true}
	assert.False(t, b.ApplyAdminStatus(BookingStatusProcessing, reviewer, now))
	assert.True(t, b.CancelRequested)
	assert.Nil(t, b.CancelReviewedAt)

	b = &Booking{Status: BookingStatusCompleted, CancelRequested: true}
	assert.True(t, b.ApplyAdminStatus(BookingStatusPending, reviewer, now))
	assert.False(t, b.CancelRequested)
}

func TestCanBeAccessedBy(t *testing.T) {
	owner := uuid.New()
	b := &Booking{UserID: owner}

	assert.True(t, b.CanBeAccessedBy(Actor{ID: owner, Role: RoleUser}))
	assert.True(t, b.CanBeAccessedBy(Actor{ID: uuid.New(), Role: RoleAdmin}))
	assert.False(t, b.CanBeAccessedBy(Actor{ID: uuid.New(), Role: RoleUser}))
}

func TestParseBookingStatus(t *testing.T) {
	for _, s := range BookingStatuses {
		got, ok := ParseBookingStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	_, ok := ParseBookingStatus("confirmed")
	assert.False(t, ok)
}

func TestNotificationOutbox_DecodePayload(t *testing.T) {
	event, err := NewNotificationEvent(NotificationPasswordReset, "uma@example.com", PasswordResetPayload{
		Name: "Uma", Token: "tok", ExpiresInMinutes: 30,
	})
	require.NoError(t, err)

	entry := NewNotificationOutbox(event)
	assert.Equal(t, NotificationStatusPending, entry.Status)

	var p PasswordResetPayload
	require.NoError(t, entry.DecodePayload(&p))
	assert.Equal(t, 30, p.ExpiresInMinutes)
	assert.Equal(t, "tok", p.Token)
}

func TestSiteConfig_DisplayName(t *testing.T) {
	var missing *SiteConfig
	assert.Equal(t, DefaultLabName, missing.DisplayName())
	assert.Equal(t, DefaultLabName, (&SiteConfig{}).DisplayName())
	assert.Equal(t, "Sunrise Diagnostics", (&SiteConfig{LabName: "Sunrise Diagnostics"}).DisplayName())
}
