package converter

import (
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
)

// SiteConfigToResponse converts the settings row; nil yields the defaults
func SiteConfigToResponse(config *entity.SiteConfig) *dto.SiteConfigResponse {
	if config == nil {
		return &dto.SiteConfigResponse{LabName: entity.DefaultLabName}
	}

	id := config.ID
	updatedAt := config.UpdatedAt
	return &dto.SiteConfigResponse{
		ID:             &id,
		LabName:        config.LabName,
		LabAddress:     config.LabAddress,
		LabCity:        config.LabCity,
		LabState:       config.LabState,
		LabPincode:     config.LabPincode,
		LabPhone:       config.LabPhone,
		LabEmail:       config.LabEmail,
		LabLogoURL:     config.LabLogoURL,
		PrimaryColor:   config.PrimaryColor,
		SecondaryColor: config.SecondaryColor,
		AboutText:      config.AboutText,
		TermsText:      config.TermsText,
		PrivacyText:    config.PrivacyText,
		UpdatedAt:      &updatedAt,
	}
}
