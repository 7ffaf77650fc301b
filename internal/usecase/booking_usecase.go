package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"lab-booking/internal/converter"
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"
	"lab-booking/internal/service"
	"lab-booking/pkg/metrics"
	"lab-booking/pkg/sanitize"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound        = errors.New("booking not found")
	ErrBookingForbidden       = errors.New("you do not have access to this booking")
	ErrBookingVersionConflict = errors.New("booking was modified by another request")
	ErrTestsNotFound          = errors.New("one or more tests not found or inactive")

	ErrBookingAlreadyCancelled    = entity.ErrBookingAlreadyCancelled
	ErrBookingNotEditable         = entity.ErrBookingNotEditable
	ErrOnlyHomeCollectionEditable = entity.ErrOnlyHomeCollectionEditable
)

const (
	minPatientAge = 1
	maxPatientAge = 150
)

// BookingResult is the outcome of a booking mutation. Events have already
// been written to the outbox when the result is returned.
type BookingResult struct {
	Booking *dto.BookingResponse
	Events  []entity.NotificationEvent
}

type CancelResult struct {
	Cancelled       bool
	CancelRequested bool
	Booking         *dto.BookingResponse
}

type BookingUsecase interface {
	CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*BookingResult, error)
	GetBooking(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.BookingResponse, error)
	ListMyBookings(ctx context.Context, actor entity.Actor) (*dto.BookingListResponse, error)
	EditBooking(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.EditBookingRequest) (*BookingResult, error)
	CancelBooking(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CancelBookingRequest) (*CancelResult, error)
	AdminUpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.AdminUpdateBookingRequest) (*BookingResult, error)
	AdminListBookings(ctx context.Context, actor entity.Actor, query dto.BookingListQuery) (*dto.BookingListResponse, error)
}

type bookingUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	labTestRepo  repository.LabTestRepository
	userRepo     repository.UserRepository
	outboxRepo   repository.NotificationOutboxRepository
	auditService service.AuditService
	publisher    NotificationPublisher
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewBookingUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	labTestRepo repository.LabTestRepository,
	userRepo repository.UserRepository,
	outboxRepo repository.NotificationOutboxRepository,
	auditService service.AuditService,
	publisher NotificationPublisher,
	m *metrics.Metrics,
) BookingUsecase {
	return &bookingUsecase{
		tx:           tx,
		log:          log,
		bookingRepo:  bookingRepo,
		labTestRepo:  labTestRepo,
		userRepo:     userRepo,
		outboxRepo:   outboxRepo,
		auditService: auditService,
		publisher:    publisher,
		metrics:      m,
		now:          time.Now,
	}
}

// CreateBooking validates the request, resolves every test and stores the
// booking, its items, the audit row and the confirmation notification in
// one transaction.
func (u *bookingUsecase) CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*BookingResult, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	draft, err := newBookingDraft(req)
	if err != nil {
		return nil, err
	}

	// Unparseable ids cannot match a test, so they count as missing
	testIDs := make([]uuid.UUID, 0, len(draft.testIDs))
	for _, raw := range draft.testIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrTestsNotFound
		}
		testIDs = append(testIDs, id)
	}

	owner, err := u.userRepo.FindByID(ctx, u.tx.Conn(ctx), actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", actor.ID, err)
		return nil, err
	}
	recipient, name := recipientOf(owner, actor)

	var (
		booking   *entity.Booking
		events    []entity.NotificationEvent
		outboxIDs []uuid.UUID
	)
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		// share-locked until commit
		tests, err := u.labTestRepo.FindActiveByIDs(ctx, tx, testIDs)
		if err != nil {
			u.log.Warnf("Failed to find tests for booking: %+v", err)
			return err
		}
		ordered, ok := orderTests(testIDs, tests)
		if !ok {
			return ErrTestsNotFound
		}

		booking = entity.NewBooking(actor.ID, draft.bookingType, ordered)
		draft.applyTo(booking)
		booking.User = owner

		event, err := bookingCreatedEvent(booking, recipient, name)
		if err != nil {
			u.log.Warnf("Failed to build booking notification: %+v", err)
			return err
		}
		events = []entity.NotificationEvent{event}

		if err := u.bookingRepo.Create(ctx, tx, booking); err != nil {
			u.log.Warnf("Failed to create booking: %+v", err)
			return err
		}
		if err := u.bookingRepo.CreateItems(ctx, tx, booking.Items); err != nil {
			u.log.Warnf("Failed to create booking items: %+v", err)
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, &actor.ID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), bookingAuditState(booking)); err != nil {
			return err
		}
		ids, err := stageNotifications(ctx, tx, u.outboxRepo, events)
		if err != nil {
			u.log.Warnf("Failed to stage booking notification: %+v", err)
			return err
		}
		outboxIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(u.publisher, outboxIDs)
	u.metrics.BookingTransition("", string(booking.Status))
	u.log.Infof("Booking created: id=%s, user=%s, items=%d, total=%s", booking.ID, actor.ID, len(booking.Items), booking.TotalAmount.StringFixed(2))

	return &BookingResult{
		Booking: converter.BookingToResponse(booking),
		Events:  events,
	}, nil
}

// GetBooking returns a booking to its owner or an admin
func (u *bookingUsecase) GetBooking(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.loadAccessible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return converter.BookingToResponse(booking), nil
}

// ListMyBookings returns the actor's bookings, newest first
func (u *bookingUsecase) ListMyBookings(ctx context.Context, actor entity.Actor) (*dto.BookingListResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	bookings, err := u.bookingRepo.FindByUserID(ctx, u.tx.Conn(ctx), actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for user %s: %+v", actor.ID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// EditBooking applies a partial update of patient and contact fields while
// the booking is still editable
func (u *bookingUsecase) EditBooking(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.EditBookingRequest) (*BookingResult, error) {
	booking, err := u.loadAccessible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := booking.CheckEditable(); err != nil {
		return nil, err
	}
	if err := checkVersion(req.Version, booking.Version); err != nil {
		return nil, err
	}

	before := bookingAuditState(booking)
	if err := applyEdit(booking, req); err != nil {
		return nil, err
	}

	if err := u.persist(ctx, booking, func(tx *gorm.DB) error {
		return u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionBookingEdit, "booking", booking.ID.String(), before, bookingAuditState(booking))
	}); err != nil {
		return nil, err
	}

	u.log.Infof("Booking edited: id=%s, by=%s", booking.ID, actor.ID)
	return &BookingResult{Booking: converter.BookingToResponse(booking)}, nil
}

// CancelBooking cancels a booking that has not been confirmed yet. For a
// confirmed (or later) booking it only records a cancellation request for
// an admin to review.
func (u *bookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CancelBookingRequest) (*CancelResult, error) {
	booking, err := u.loadAccessible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var reason string
	var version *int
	if req != nil {
		reason = sanitize.String(req.Reason)
		version = req.Version
	}

	if err := checkVersion(version, booking.Version); err != nil {
		return nil, err
	}

	oldStatus := booking.Status
	outcome, err := booking.RequestCancel(reason)
	if err != nil {
		return nil, err
	}

	action := entity.AuditActionBookingCancel
	if outcome == entity.CancelOutcomeRequested {
		action = entity.AuditActionBookingCancelRequest
	}

	if err := u.persist(ctx, booking, func(tx *gorm.DB) error {
		return u.auditService.LogUpdate(ctx, tx, &actor.ID, action, "booking", booking.ID.String(),
			entity.JSON{"status": oldStatus},
			entity.JSON{"status": booking.Status, "cancel_requested": booking.CancelRequested, "cancel_reason": booking.CancelReason},
		)
	}); err != nil {
		return nil, err
	}

	result := &CancelResult{Booking: converter.BookingToResponse(booking)}
	switch outcome {
	case entity.CancelOutcomeCancelled:
		result.Cancelled = true
		u.metrics.BookingTransition(string(oldStatus), string(booking.Status))
		u.log.Infof("Booking cancelled: id=%s, by=%s", booking.ID, actor.ID)
	case entity.CancelOutcomeRequested:
		result.CancelRequested = true
		u.log.Infof("Booking cancellation requested: id=%s, by=%s, status=%s", booking.ID, actor.ID, booking.Status)
	}

	return result, nil
}

// AdminUpdateStatus sets status and/or notes. Any status may be chosen;
// setting CANCELLED approves a pending cancellation request.
func (u *bookingUsecase) AdminUpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.AdminUpdateBookingRequest) (*BookingResult, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	var newStatus entity.BookingStatus
	if req.Status != nil {
		status, ok := entity.ParseBookingStatus(*req.Status)
		if !ok {
			return nil, newValidationError("status", "status must be one of "+joinStatuses())
		}
		newStatus = status
	}

	booking, err := u.bookingRepo.FindByID(ctx, u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := checkVersion(req.Version, booking.Version); err != nil {
		return nil, err
	}

	if newStatus == "" && req.Notes == nil {
		return &BookingResult{Booking: converter.BookingToResponse(booking)}, nil
	}

	before := entity.JSON{"status": booking.Status, "notes": booking.Notes}
	oldStatus := booking.Status

	changed := false
	if newStatus != "" {
		changed = booking.ApplyAdminStatus(newStatus, actor.ID, u.now().UTC())
	}
	if req.Notes != nil {
		booking.Notes = sanitize.OptionalString(*req.Notes)
	}

	var events []entity.NotificationEvent
	if changed {
		recipient, name := recipientOf(booking.User, entity.Actor{})
		if recipient != "" {
			event, err := statusChangedEvent(booking, oldStatus, recipient, name)
			if err != nil {
				u.log.Warnf("Failed to build status notification: %+v", err)
				return nil, err
			}
			events = append(events, event)
		}
	}

	var outboxIDs []uuid.UUID
	if err := u.persist(ctx, booking, func(tx *gorm.DB) error {
		after := entity.JSON{"status": booking.Status, "notes": booking.Notes}
		if err := u.auditService.LogUpdate(ctx, tx, &actor.ID, entity.AuditActionBookingStatusUpdate, "booking", booking.ID.String(), before, after); err != nil {
			return err
		}
		ids, err := stageNotifications(ctx, tx, u.outboxRepo, events)
		if err != nil {
			u.log.Warnf("Failed to stage status notification: %+v", err)
			return err
		}
		outboxIDs = ids
		return nil
	}); err != nil {
		return nil, err
	}

	publish(u.publisher, outboxIDs)
	if changed {
		u.metrics.BookingTransition(string(oldStatus), string(booking.Status))
		u.log.Infof("Booking status updated: id=%s, from=%s, to=%s, by=%s", booking.ID, oldStatus, booking.Status, actor.ID)
	}

	return &BookingResult{
		Booking: converter.BookingToResponse(booking),
		Events:  events,
	}, nil
}

// AdminListBookings lists every booking, optionally filtered
func (u *bookingUsecase) AdminListBookings(ctx context.Context, actor entity.Actor, query dto.BookingListQuery) (*dto.BookingListResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	var filter entity.BookingFilter
	if query.Status != "" {
		status, ok := entity.ParseBookingStatus(query.Status)
		if !ok {
			return nil, newValidationError("status", "status must be one of "+joinStatuses())
		}
		filter.Status = status
	}
	if query.BookingType != "" {
		bookingType, ok := entity.ParseBookingType(query.BookingType)
		if !ok {
			return nil, newValidationError("booking_type", "booking_type must be HOME_COLLECTION or CLINIC_VISIT")
		}
		filter.BookingType = bookingType
	}

	bookings, err := u.bookingRepo.FindAll(ctx, u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings: %+v", err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// loadAccessible loads a booking the actor owns or administers
func (u *bookingUsecase) loadAccessible(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Booking, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	booking, err := u.bookingRepo.FindByID(ctx, u.tx.Conn(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !booking.CanBeAccessedBy(actor) {
		return nil, ErrBookingForbidden
	}
	return booking, nil
}

// persist writes booking with a version check and runs extra in the same
// transaction
func (u *bookingUsecase) persist(ctx context.Context, booking *entity.Booking, extra func(tx *gorm.DB) error) error {
	expected := booking.Version
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.bookingRepo.Update(ctx, tx, booking, expected)
		if err != nil {
			u.log.Warnf("Failed to update booking %s: %+v", booking.ID, err)
			return err
		}
		if rows == 0 {
			return ErrBookingVersionConflict
		}
		return extra(tx)
	})
}

func checkVersion(requested *int, current int) error {
	if requested != nil && *requested != current {
		return ErrBookingVersionConflict
	}
	return nil
}

// bookingDraft holds create input after sanitization
type bookingDraft struct {
	bookingType     entity.BookingType
	patientName     string
	patientAge      int
	bookingDate     *time.Time
	bookingTime     *string
	address         *string
	city            string
	state           *string
	pincode         *string
	phone           string
	prescriptionURL *string
	notes           *string
	testIDs         []string
}

func newBookingDraft(req *dto.CreateBookingRequest) (*bookingDraft, error) {
	bookingType, ok := entity.ParseBookingType(req.BookingType)
	if !ok {
		return nil, newValidationError("booking_type", "booking_type must be HOME_COLLECTION or CLINIC_VISIT")
	}

	d := &bookingDraft{
		bookingType: bookingType,
		patientName: sanitize.String(req.PatientName),
		patientAge:  req.PatientAge,
		city:        sanitize.String(req.City),
		phone:       sanitize.Phone(req.Phone),
		address:     sanitize.OptionalString(req.Address),
		state:       sanitize.OptionalString(req.State),
		pincode:     sanitize.OptionalString(req.Pincode),
		bookingTime: sanitize.OptionalString(req.BookingTime),
		notes:       sanitize.OptionalString(req.Notes),
	}

	if d.patientName == "" {
		return nil, newValidationError("patient_name", "Patient name is required")
	}
	if err := validateAge(d.patientAge); err != nil {
		return nil, err
	}
	if d.city == "" {
		return nil, newValidationError("city", "City is required")
	}
	if d.phone == "" {
		return nil, newValidationError("phone", "Phone must contain 10 to 15 digits")
	}
	if bookingType == entity.BookingTypeHomeCollection && d.address == nil {
		return nil, newValidationError("address", "Address is required for home collection")
	}

	if strings.TrimSpace(req.BookingDate) != "" {
		date, err := parseBookingDate(req.BookingDate)
		if err != nil {
			return nil, err
		}
		d.bookingDate = &date
	}

	if strings.TrimSpace(req.PrescriptionURL) != "" {
		url := sanitize.URL(req.PrescriptionURL)
		if url == "" {
			return nil, newValidationError("prescription_url", "Prescription URL must be an absolute http(s) URL")
		}
		d.prescriptionURL = &url
	}

	seen := make(map[string]bool, len(req.TestIDs))
	for _, raw := range req.TestIDs {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		d.testIDs = append(d.testIDs, id)
	}
	if len(d.testIDs) == 0 {
		return nil, newValidationError("test_ids", "At least one valid test ID is required")
	}

	return d, nil
}

func (d *bookingDraft) applyTo(b *entity.Booking) {
	b.PatientName = d.patientName
	b.PatientAge = d.patientAge
	b.BookingDate = d.bookingDate
	b.BookingTime = d.bookingTime
	b.Address = d.address
	b.City = d.city
	b.State = d.state
	b.Pincode = d.pincode
	b.Phone = d.phone
	b.PrescriptionURL = d.prescriptionURL
	b.Notes = d.notes
}

// applyEdit changes only the fields present in req. It validates everything
// before touching the booking so that a rejected edit leaves it unchanged.
func applyEdit(b *entity.Booking, req *dto.EditBookingRequest) error {
	edited := *b

	if req.PatientName != nil {
		name := sanitize.String(*req.PatientName)
		if name == "" {
			return newValidationError("patient_name", "Patient name cannot be empty")
		}
		edited.PatientName = name
	}
	if req.PatientAge != nil {
		if err := validateAge(*req.PatientAge); err != nil {
			return err
		}
		edited.PatientAge = *req.PatientAge
	}
	if req.Address != nil {
		address := sanitize.OptionalString(*req.Address)
		if address == nil {
			return newValidationError("address", "Address is required for home collection")
		}
		edited.Address = address
	}
	if req.City != nil {
		city := sanitize.String(*req.City)
		if city == "" {
			return newValidationError("city", "City cannot be empty")
		}
		edited.City = city
	}
	if req.State != nil {
		edited.State = sanitize.OptionalString(*req.State)
	}
	if req.Pincode != nil {
		edited.Pincode = sanitize.OptionalString(*req.Pincode)
	}
	if req.Phone != nil {
		phone := sanitize.Phone(*req.Phone)
		if phone == "" {
			return newValidationError("phone", "Phone must contain 10 to 15 digits")
		}
		edited.Phone = phone
	}
	if req.BookingDate != nil && strings.TrimSpace(*req.BookingDate) != "" {
		date, err := parseBookingDate(*req.BookingDate)
		if err != nil {
			return err
		}
		edited.BookingDate = &date
	}
	if req.BookingTime != nil {
		edited.BookingTime = sanitize.OptionalString(*req.BookingTime)
	}
	if req.Notes != nil {
		edited.Notes = sanitize.OptionalString(*req.Notes)
	}

	*b = edited
	return nil
}

func validateAge(age int) error {
	if age < minPatientAge || age > maxPatientAge {
		return newValidationError("patient_age", "Patient age must be between 1 and 150")
	}
	return nil
}

// parseBookingDate accepts a calendar date or a full RFC 3339 timestamp
func parseBookingDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if date, err := time.Parse("2006-01-02", s); err == nil {
		return date, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, newValidationError("booking_date", "Invalid booking date format")
}

// orderTests returns tests in the order of ids, or false when any id is
// missing from tests
func orderTests(ids []uuid.UUID, tests []entity.LabTest) ([]entity.LabTest, bool) {
	if len(tests) != len(ids) {
		return nil, false
	}
	byID := make(map[uuid.UUID]entity.LabTest, len(tests))
	for _, t := range tests {
		byID[t.ID] = t
	}
	ordered := make([]entity.LabTest, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, false
		}
		ordered = append(ordered, t)
	}
	return ordered, true
}

func recipientOf(user *entity.User, fallback entity.Actor) (string, string) {
	if user != nil {
		name := user.Name
		if name == "" {
			name = "User"
		}
		return user.Email, name
	}
	return fallback.Email, "User"
}

func bookingCreatedEvent(b *entity.Booking, recipient, name string) (entity.NotificationEvent, error) {
	payload := entity.BookingCreatedPayload{
		Name:        name,
		BookingID:   b.ID.String(),
		BookingType: string(b.BookingType),
		TotalAmount: b.TotalAmount.StringFixed(2),
	}
	if b.BookingDate != nil {
		payload.BookingDate = b.BookingDate.Format("2006-01-02")
	}
	if b.BookingTime != nil {
		payload.BookingTime = *b.BookingTime
	}
	for _, item := range b.Items {
		testName := item.TestID.String()
		if item.Test != nil {
			testName = item.Test.Name
		}
		payload.Tests = append(payload.Tests, entity.PayloadTest{
			Name:  testName,
			Price: item.Price.StringFixed(2),
		})
	}
	return entity.NewNotificationEvent(entity.NotificationBookingCreated, recipient, payload)
}

func statusChangedEvent(b *entity.Booking, oldStatus entity.BookingStatus, recipient, name string) (entity.NotificationEvent, error) {
	payload := entity.BookingStatusChangedPayload{
		Name:      name,
		BookingID: b.ID.String(),
		OldStatus: string(oldStatus),
		NewStatus: string(b.Status),
	}
	if b.Notes != nil {
		payload.Notes = *b.Notes
	}
	return entity.NewNotificationEvent(entity.NotificationBookingStatusChanged, recipient, payload)
}

func bookingAuditState(b *entity.Booking) entity.JSON {
	return entity.JSON{
		"status":       b.Status,
		"booking_type": b.BookingType,
		"patient_name": b.PatientName,
		"patient_age":  b.PatientAge,
		"city":         b.City,
		"phone":        b.Phone,
		"address":      b.Address,
		"total_amount": b.TotalAmount.StringFixed(2),
		"items":        len(b.Items),
	}
}

func joinStatuses() string {
	names := make([]string, len(entity.BookingStatuses))
	for i, s := range entity.BookingStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
