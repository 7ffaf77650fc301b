package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type FAQRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type CreateLabTestRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     *string         `json:"description"`
	Category        string          `json:"category" validate:"required"`
	Price           decimal.Decimal `json:"price"`
	Duration        *int            `json:"duration"`
	TestType        string          `json:"test_type" validate:"required,oneof=HOME_TEST CLINIC_TEST"`
	IsActive        *bool           `json:"is_active"`
	About           *string         `json:"about"`
	Parameters      *string         `json:"parameters"`
	Preparation     *string         `json:"preparation"`
	Why             *string         `json:"why"`
	Interpretations *string         `json:"interpretations"`
	FAQs            []FAQRequest    `json:"faqs"`
}

// UpdateLabTestRequest is a partial update; nil fields are left untouched
type UpdateLabTestRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	Price           *decimal.Decimal `json:"price"`
	Duration        *int             `json:"duration"`
	TestType        *string          `json:"test_type"`
	IsActive        *bool            `json:"is_active"`
	About           *string          `json:"about"`
	Parameters      *string          `json:"parameters"`
	Preparation     *string          `json:"preparation"`
	Why             *string          `json:"why"`
	Interpretations *string          `json:"interpretations"`
	FAQs            []FAQRequest     `json:"faqs"`
}

type LabTestQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Response DTOs

type FAQResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type LabTestResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Duration        *int            `json:"duration,omitempty"`
	TestType        string          `json:"test_type"`
	IsActive        bool            `json:"is_active"`
	About           *string         `json:"about,omitempty"`
	Parameters      *string         `json:"parameters,omitempty"`
	Preparation     *string         `json:"preparation,omitempty"`
	Why             *string         `json:"why,omitempty"`
	Interpretations *string         `json:"interpretations,omitempty"`
	FAQs            []FAQResponse   `json:"faqs"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type LabTestListResponse struct {
	Tests []LabTestResponse `json:"tests"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// DeleteLabTestResponse tells whether the test was removed or only
// deactivated because bookings reference it
type DeleteLabTestResponse struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}
