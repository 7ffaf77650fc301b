package usecase

import (
	"context"
	"errors"

	"lab-booking/internal/converter"
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"
	"lab-booking/internal/service"
	"lab-booking/pkg/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrLabTestNotFound = errors.New("test not found")
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type LabTestUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateLabTestRequest) (*dto.LabTestResponse, error)
	GetAll(ctx context.Context, actor entity.Actor, query dto.LabTestQuery) (*dto.LabTestListResponse, error)
	GetByID(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.LabTestResponse, error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateLabTestRequest) (*dto.LabTestResponse, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.DeleteLabTestResponse, error)
}

type labTestUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	labTestRepo  repository.LabTestRepository
	auditService service.AuditService
}

func NewLabTestUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	labTestRepo repository.LabTestRepository,
	auditService service.AuditService,
) LabTestUsecase {
	return &labTestUsecase{
		tx:           tx,
		log:          log,
		labTestRepo:  labTestRepo,
		auditService: auditService,
	}
}

func (u *labTestUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateLabTestRequest) (*dto.LabTestResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	name := sanitize.String(req.Name)
	if name == "" {
		return nil, newValidationError("name", "Name is required")
	}
	category := sanitize.String(req.Category)
	if category == "" {
		return nil, newValidationError("category", "Category is required")
	}
	if !req.Price.GreaterThan(decimal.Zero) {
		return nil, newValidationError("price", "Price must be greater than 0")
	}
	testType, ok := entity.ParseTestType(req.TestType)
	if !ok {
		return nil, newValidationError("test_type", "test_type must be HOME_TEST or CLINIC_TEST")
	}

	test := &entity.LabTest{
		ID:              uuid.New(),
		Name:            name,
		Description:     optionalHTML(req.Description),
		Category:        category,
		Price:           req.Price.Round(2),
		Duration:        req.Duration,
		TestType:        testType,
		IsActive:        req.IsActive == nil || *req.IsActive,
		About:           optionalHTML(req.About),
		Parameters:      optionalHTML(req.Parameters),
		Preparation:     optionalHTML(req.Preparation),
		Why:             optionalHTML(req.Why),
		Interpretations: optionalHTML(req.Interpretations),
		FAQs:            toFAQList(req.FAQs),
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.labTestRepo.Create(ctx, tx, test); err != nil {
			u.log.Warnf("Failed to create test: %+v", err)
			return err
		}
		return u.auditService.LogCreate(ctx, tx, &actor.ID, entity.AuditActionTestCreate, "test", test.ID.String(), labTestAuditState(test))
	})
	if err != nil {
		return nil, err
	}

	return converter.LabTestToResponse(test), nil
}

// GetAll lists the catalog. Anyone but an admin only sees active tests.
func (u *labTestUsecase) GetAll(ctx context.Context, actor entity.Actor, query dto.LabTestQuery) (*dto.LabTestListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := entity.LabTestFilter{
		Category:   sanitize.String(query.Category),
		Search:     sanitize.String(query.Search),
		ActiveOnly: !actor.IsAdmin(),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	tests, total, err := u.labTestRepo.FindAll(ctx, u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find tests: %+v", err)
		return nil, err
	}

	return &dto.LabTestListResponse{
		Tests: converter.LabTestsToResponses(tests),
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (u *labTestUsecase) GetByID(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.LabTestResponse, error) {
	test, err := u.labTestRepo.FindByID(ctx, u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find test %s: %+v", id, err)
		return nil, err
	}
	if test == nil || (!test.IsActive && !actor.IsAdmin()) {
		return nil, ErrLabTestNotFound
	}

	return converter.LabTestToResponse(test), nil
}

// Update applies a partial change. A non-positive price or an unknown test
// type is ignored rather than rejected.
func (u *labTestUsecase) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateLabTestRequest) (*dto.LabTestResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	test, err := u.labTestRepo.FindByID(ctx, u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find test %s: %+v", id, err)
		return nil, err
	}
	if test == nil {
		return nil, ErrLabTestNotFound
	}

	before := labTestAuditState(test)

	if req.Name != nil {
		if name := sanitize.String(*req.Name); name != "" {
			test.Name = name
		}
	}
	if req.Category != nil {
		if category := sanitize.String(*req.Category); category != "" {
			test.Category = category
		}
	}
	if req.Price != nil && req.Price.GreaterThan(decimal.Zero) {
		test.Price = req.Price.Round(2)
	}
	if req.TestType != nil {
		if testType, ok := entity.ParseTestType(*req.TestType); ok {
			test.TestType = testType
		}
	}
	if req.Duration != nil {
		test.Duration = req.Duration
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}
	if req.Description != nil {
		test.Description = optionalHTML(req.Description)
	}
	if req.About != nil {
		test.About = optionalHTML(req.About)
	}
	if req.Parameters != nil {
		test.Parameters = optionalHTML(req.Parameters)
	}
	if req.Preparation != nil {
		test.Preparation = optionalHTML(req.Preparation)
	}
	if req.Why != nil {
		test.Why = optionalHTML(req.Why)
	}
	if req.Interpretations != nil {
		test.Interpretations = optionalHTML(req.Interpretations)
	}
	if req.FAQs != nil {
		test.FAQs = toFAQList(req.FAQs)
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.labTestRepo.Update(ctx, tx, test); err != nil {
			u.log.Warnf("Failed to update test: %+v", err)
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionTestUpdate, "test", test.ID.String(), before, labTestAuditState(test))
	})
	if err != nil {
		return nil, err
	}

	return converter.LabTestToResponse(test), nil
}

// Delete removes a test, or deactivates it when bookings still reference it
// so that their items keep resolving
func (u *labTestUsecase) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.DeleteLabTestResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	result := &dto.DeleteLabTestResponse{}
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		test, err := u.labTestRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find test %s: %+v", id, err)
			return err
		}
		if test == nil {
			return ErrLabTestNotFound
		}

		referenced, err := u.labTestRepo.IsReferenced(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to check test references: %+v", err)
			return err
		}

		if referenced {
			before := labTestAuditState(test)
			test.IsActive = false
			if err := u.labTestRepo.Update(ctx, tx, test); err != nil {
				u.log.Warnf("Failed to deactivate test: %+v", err)
				return err
			}
			result.Deactivated = true
			return u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionTestDeactivate, "test", id.String(), before, labTestAuditState(test))
		}

		if err := u.labTestRepo.Delete(ctx, tx, id); err != nil {
			u.log.Warnf("Failed to delete test: %+v", err)
			return err
		}
		result.Deleted = true
		return u.auditService.LogDelete(ctx, tx, &actor.ID, entity.AuditActionTestDelete, "test", id.String(), labTestAuditState(test))
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func optionalHTML(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitize.HTML(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

func toFAQList(faqs []dto.FAQRequest) entity.FAQList {
	list := make(entity.FAQList, 0, len(faqs))
	for _, faq := range faqs {
		q := sanitize.String(faq.Question)
		a := sanitize.HTML(faq.Answer)
		if q == "" || a == "" {
			continue
		}
		list = append(list, entity.FAQ{Question: q, Answer: a})
	}
	return list
}

func labTestAuditState(t *entity.LabTest) entity.JSON {
	return entity.JSON{
		"name":      t.Name,
		"category":  t.Category,
		"price":     t.Price.StringFixed(2),
		"test_type": t.TestType,
		"is_active": t.IsActive,
	}
}
