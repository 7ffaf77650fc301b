package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateSiteConfigRequest struct {
	LabName        string  `json:"lab_name" validate:"required"`
	LabAddress     string  `json:"lab_address" validate:"required"`
	LabCity        string  `json:"lab_city" validate:"required"`
	LabState       string  `json:"lab_state" validate:"required"`
	LabPincode     string  `json:"lab_pincode" validate:"required"`
	LabPhone       string  `json:"lab_phone" validate:"required"`
	LabEmail       string  `json:"lab_email" validate:"required,email"`
	LabLogoURL     *string `json:"lab_logo_url"`
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	AboutText      *string `json:"about_text"`
	TermsText      *string `json:"terms_text"`
	PrivacyText    *string `json:"privacy_text"`
}

// Response DTOs

type SiteConfigResponse struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	LabName        string     `json:"lab_name"`
	LabAddress     string     `json:"lab_address"`
	LabCity        string     `json:"lab_city"`
	LabState       string     `json:"lab_state"`
	LabPincode     string     `json:"lab_pincode"`
	LabPhone       string     `json:"lab_phone"`
	LabEmail       string     `json:"lab_email"`
	LabLogoURL     *string    `json:"lab_logo_url,omitempty"`
	PrimaryColor   *string    `json:"primary_color,omitempty"`
	SecondaryColor *string    `json:"secondary_color,omitempty"`
	AboutText      *string    `json:"about_text,omitempty"`
	TermsText      *string    `json:"terms_text,omitempty"`
	PrivacyText    *string    `json:"privacy_text,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}
