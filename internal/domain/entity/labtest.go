package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestType describes where a lab test is performed
type TestType string

const (
	TestTypeHome   TestType = "HOME_TEST"
	TestTypeClinic TestType = "CLINIC_TEST"
)

// ParseTestType returns the test type named by s
func ParseTestType(s string) (TestType, bool) {
	switch TestType(s) {
	case TestTypeHome, TestTypeClinic:
		return TestType(s), true
	}
	return "", false
}

// FAQ is a single question/answer pair shown on a test page
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQList is stored as JSONB
type FAQList []FAQ

// Value implements driver.Valuer
func (f FAQList) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner
func (f *FAQList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal FAQ list:", value))
	}
	return json.Unmarshal(bytes, f)
}

// LabTest is a bookable diagnostic test in the catalog
type LabTest struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     *string         `gorm:"type:text" json:"description,omitempty"`
	Category        string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration        *int            `json:"duration,omitempty"`
	TestType        TestType        `gorm:"type:varchar(20);not null" json:"test_type"`
	IsActive        bool            `gorm:"not null;index" json:"is_active"`
	About           *string         `gorm:"type:text" json:"about,omitempty"`
	Parameters      *string         `gorm:"type:text" json:"parameters,omitempty"`
	Preparation     *string         `gorm:"type:text" json:"preparation,omitempty"`
	Why             *string         `gorm:"type:text" json:"why,omitempty"`
	Interpretations *string         `gorm:"type:text" json:"interpretations,omitempty"`
	FAQs            FAQList         `gorm:"column:faqs_json;type:jsonb" json:"faqs,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LabTest) TableName() string {
	return "tests"
}

// LabTestFilter is a domain-level filter for catalog queries
type LabTestFilter struct {
	Category   string
	Search     string // ILIKE on name/description
	ActiveOnly bool
	Limit      int
	Offset     int
}
