package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLabName is used in emails until an admin saves the site settings
const DefaultLabName = "Lab Test Booking"

// SiteConfig holds the single row of lab branding and contact settings
type SiteConfig struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LabName        string    `gorm:"type:varchar(255);not null" json:"lab_name"`
	LabAddress     string    `gorm:"type:text;not null" json:"lab_address"`
	LabCity        string    `gorm:"type:varchar(100);not null" json:"lab_city"`
	LabState       string    `gorm:"type:varchar(100);not null" json:"lab_state"`
	LabPincode     string    `gorm:"type:varchar(20);not null" json:"lab_pincode"`
	LabPhone       string    `gorm:"type:varchar(20);not null" json:"lab_phone"`
	LabEmail       string    `gorm:"type:varchar(255);not null" json:"lab_email"`
	LabLogoURL     *string   `gorm:"column:lab_logo_url;type:text" json:"lab_logo_url"`
	PrimaryColor   *string   `gorm:"type:varchar(20)" json:"primary_color"`
	SecondaryColor *string   `gorm:"type:varchar(20)" json:"secondary_color"`
	AboutText      *string   `gorm:"type:text" json:"about_text"`
	TermsText      *string   `gorm:"type:text" json:"terms_text"`
	PrivacyText    *string   `gorm:"type:text" json:"privacy_text"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SiteConfig) TableName() string {
	return "site_configs"
}

// DisplayName returns the lab name, falling back to DefaultLabName
func (c *SiteConfig) DisplayName() string {
	if c == nil || c.LabName == "" {
		return DefaultLabName
	}
	return c.LabName
}
