package usecase

import (
	"context"

	"lab-booking/internal/converter"
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"
	"lab-booking/internal/service"
	"lab-booking/pkg/sanitize"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SiteConfigUsecase interface {
	Get(ctx context.Context) (*dto.SiteConfigResponse, error)
	Update(ctx context.Context, actor entity.Actor, req *dto.UpdateSiteConfigRequest) (*dto.SiteConfigResponse, error)
}

type siteConfigUsecase struct {
	tx             repository.Transactor
	log            *logrus.Logger
	siteConfigRepo repository.SiteConfigRepository
	auditService   service.AuditService
}

func NewSiteConfigUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	siteConfigRepo repository.SiteConfigRepository,
	auditService service.AuditService,
) SiteConfigUsecase {
	return &siteConfigUsecase{
		tx:             tx,
		log:            log,
		siteConfigRepo: siteConfigRepo,
		auditService:   auditService,
	}
}

// Get returns the saved settings, or defaults when none were saved yet
func (u *siteConfigUsecase) Get(ctx context.Context) (*dto.SiteConfigResponse, error) {
	config, err := u.siteConfigRepo.FindFirst(ctx, u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find site config: %+v", err)
		return nil, err
	}
	return converter.SiteConfigToResponse(config), nil
}

// Update creates the settings row on first save and overwrites it after
func (u *siteConfigUsecase) Update(ctx context.Context, actor entity.Actor, req *dto.UpdateSiteConfigRequest) (*dto.SiteConfigResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	email := sanitize.Email(req.LabEmail)
	if email == "" {
		return nil, newValidationError("lab_email", "Invalid email format")
	}

	fields := map[string]string{
		"lab_name":    sanitize.String(req.LabName),
		"lab_address": sanitize.String(req.LabAddress),
		"lab_city":    sanitize.String(req.LabCity),
		"lab_state":   sanitize.String(req.LabState),
		"lab_pincode": sanitize.String(req.LabPincode),
		"lab_phone":   sanitize.String(req.LabPhone),
	}
	for _, field := range []string{"lab_name", "lab_address", "lab_city", "lab_state", "lab_pincode", "lab_phone"} {
		if fields[field] == "" {
			return nil, newValidationError(field, field+" is required")
		}
	}

	logoURL, err := optionalURL("lab_logo_url", req.LabLogoURL)
	if err != nil {
		return nil, err
	}
	primary, err := optionalColor("primary_color", req.PrimaryColor)
	if err != nil {
		return nil, err
	}
	secondary, err := optionalColor("secondary_color", req.SecondaryColor)
	if err != nil {
		return nil, err
	}

	var saved *entity.SiteConfig
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		config, err := u.siteConfigRepo.FindFirst(ctx, tx)
		if err != nil {
			u.log.Warnf("Failed to find site config: %+v", err)
			return err
		}

		var before interface{}
		if config == nil {
			config = &entity.SiteConfig{ID: uuid.New()}
		} else {
			before = siteConfigAuditState(config)
		}

		config.LabName = fields["lab_name"]
		config.LabAddress = fields["lab_address"]
		config.LabCity = fields["lab_city"]
		config.LabState = fields["lab_state"]
		config.LabPincode = fields["lab_pincode"]
		config.LabPhone = fields["lab_phone"]
		config.LabEmail = email
		config.LabLogoURL = logoURL
		config.PrimaryColor = primary
		config.SecondaryColor = secondary
		config.AboutText = optionalHTML(req.AboutText)
		config.TermsText = optionalHTML(req.TermsText)
		config.PrivacyText = optionalHTML(req.PrivacyText)

		if err := u.siteConfigRepo.Save(ctx, tx, config); err != nil {
			u.log.Warnf("Failed to save site config: %+v", err)
			return err
		}
		saved = config
		return u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionSettingsUpdate, "site_config", config.ID.String(), before, siteConfigAuditState(config))
	})
	if err != nil {
		return nil, err
	}

	return converter.SiteConfigToResponse(saved), nil
}

func optionalURL(field string, s *string) (*string, error) {
	if s == nil || sanitize.String(*s) == "" {
		return nil, nil
	}
	url := sanitize.URL(*s)
	if url == "" {
		return nil, newValidationError(field, "Invalid URL")
	}
	return &url, nil
}

func optionalColor(field string, s *string) (*string, error) {
	if s == nil || sanitize.String(*s) == "" {
		return nil, nil
	}
	color := sanitize.Color(*s)
	if color == "" {
		return nil, newValidationError(field, "Color must be a hex value like #1a2b3c")
	}
	return &color, nil
}

func siteConfigAuditState(c *entity.SiteConfig) entity.JSON {
	return entity.JSON{
		"lab_name":  c.LabName,
		"lab_email": c.LabEmail,
		"lab_phone": c.LabPhone,
		"lab_city":  c.LabCity,
	}
}
