package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"
	"lab-booking/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// memStore backs every fake repository. Transactions run one at a time and
// roll back by restoring a snapshot.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users    map[uuid.UUID]entity.User
	tests    map[uuid.UUID]entity.LabTest
	bookings map[uuid.UUID]entity.Booking
	outbox   map[uuid.UUID]entity.NotificationOutbox
	audits   []entity.AuditLog
	config   *entity.SiteConfig

	failAudit  error
	failOutbox error
	failUpdate error

	inTx          bool
	testLookups   int
	testLookupsTx int
	beforeLookup  func()
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]entity.User{},
		tests:    map[uuid.UUID]entity.LabTest{},
		bookings: map[uuid.UUID]entity.Booking{},
		outbox:   map[uuid.UUID]entity.NotificationOutbox{},
	}
}

type memSnapshot struct {
	users    map[uuid.UUID]entity.User
	tests    map[uuid.UUID]entity.LabTest
	bookings map[uuid.UUID]entity.Booking
	outbox   map[uuid.UUID]entity.NotificationOutbox
	audits   []entity.AuditLog
	config   *entity.SiteConfig
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		users:    make(map[uuid.UUID]entity.User, len(s.users)),
		tests:    make(map[uuid.UUID]entity.LabTest, len(s.tests)),
		bookings: make(map[uuid.UUID]entity.Booking, len(s.bookings)),
		outbox:   make(map[uuid.UUID]entity.NotificationOutbox, len(s.outbox)),
		audits:   append([]entity.AuditLog(nil), s.audits...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.tests {
		snap.tests[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = copyBooking(v)
	}
	for k, v := range s.outbox {
		snap.outbox[k] = v
	}
	if s.config != nil {
		c := *s.config
		snap.config = &c
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.tests = snap.tests
	s.bookings = snap.bookings
	s.outbox = snap.outbox
	s.audits = snap.audits
	s.config = snap.config
}

func copyBooking(b entity.Booking) entity.Booking {
	b.Items = append([]entity.BookingItem(nil), b.Items...)
	return b
}

func (s *memStore) addUser(name, email string, role entity.UserRole) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entity.User{ID: uuid.New(), Name: name, Email: email, Role: role}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addTest(name string, price string, active bool) entity.LabTest {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := entity.LabTest{ID: uuid.New(), Name: name, Category: "General", TestType: entity.TestTypeHome, IsActive: active}
	t.Price = mustDecimal(price)
	s.tests[t.ID] = t
	return t
}

func (s *memStore) booking(id uuid.UUID) entity.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBooking(s.bookings[id])
}

func (s *memStore) outboxEntries() []entity.NotificationOutbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]entity.NotificationOutbox, 0, len(s.outbox))
	for _, e := range s.outbox {
		entries = append(entries, e)
	}
	return entries
}

func (s *memStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, len(s.audits))
	for i, a := range s.audits {
		actions[i] = a.Action
	}
	return actions
}

func (s *memStore) setInTx(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = v
}

type fakeTransactor struct{ store *memStore }

func (f *fakeTransactor) Conn(ctx context.Context) *gorm.DB { return nil }

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.store.txMu.Lock()
	defer f.store.txMu.Unlock()

	snap := f.store.snapshot()
	f.store.setInTx(true)
	defer f.store.setInTx(false)
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return errDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, db *gorm.DB, id uuid.UUID, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = passwordHash
	r.store.users[id] = u
	return nil
}

func (r *fakeUserRepo) FindAllWithBookingCount(ctx context.Context, db *gorm.DB) ([]entity.UserWithBookingCount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entity.UserWithBookingCount
	for _, u := range r.store.users {
		var count int64
		for _, b := range r.store.bookings {
			if b.UserID == u.ID {
				count++
			}
		}
		result = append(result, entity.UserWithBookingCount{User: u, BookingCount: count})
	}
	return result, nil
}

type fakeLabTestRepo struct{ store *memStore }

func (r *fakeLabTestRepo) Create(ctx context.Context, db *gorm.DB, test *entity.LabTest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tests[test.ID] = *test
	return nil
}

func (r *fakeLabTestRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.LabTest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tests[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeLabTestRepo) FindActiveByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]entity.LabTest, error) {
	if r.store.beforeLookup != nil {
		r.store.beforeLookup()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.testLookups++
	if r.store.inTx {
		r.store.testLookupsTx++
	}
	var tests []entity.LabTest
	for _, id := range ids {
		if t, ok := r.store.tests[id]; ok && t.IsActive {
			tests = append(tests, t)
		}
	}
	// the database returns rows in no particular order
	sort.Slice(tests, func(i, j int) bool { return tests[i].Name > tests[j].Name })
	return tests, nil
}

func (r *fakeLabTestRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.LabTestFilter) ([]entity.LabTest, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var tests []entity.LabTest
	for _, t := range r.store.tests {
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		tests = append(tests, t)
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].Name < tests[j].Name })
	total := int64(len(tests))
	if filter.Offset < len(tests) {
		tests = tests[filter.Offset:]
	} else {
		tests = nil
	}
	if filter.Limit > 0 && len(tests) > filter.Limit {
		tests = tests[:filter.Limit]
	}
	return tests, total, nil
}

func (r *fakeLabTestRepo) Update(ctx context.Context, db *gorm.DB, test *entity.LabTest) error {
	return r.Create(ctx, db, test)
}

func (r *fakeLabTestRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.tests, id)
	return nil
}

func (r *fakeLabTestRepo) IsReferenced(ctx context.Context, db *gorm.DB, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.bookings {
		for _, item := range b.Items {
			if item.TestID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeBookingRepo struct{ store *memStore }

func (r *fakeBookingRepo) Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *booking
	stored.Items = nil
	stored.User = nil
	now := time.Now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	booking.CreatedAt, booking.UpdatedAt = now, now
	r.store.bookings[booking.ID] = stored
	return nil
}

func (r *fakeBookingRepo) CreateItems(ctx context.Context, db *gorm.DB, items []entity.BookingItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, item := range items {
		b := r.store.bookings[item.BookingID]
		item.Test = nil
		b.Items = append(b.Items, item)
		r.store.bookings[item.BookingID] = b
	}
	return nil
}

func (r *fakeBookingRepo) load(b entity.Booking) *entity.Booking {
	loaded := copyBooking(b)
	for i := range loaded.Items {
		if t, ok := r.store.tests[loaded.Items[i].TestID]; ok {
			test := t
			loaded.Items[i].Test = &test
		}
	}
	if u, ok := r.store.users[loaded.UserID]; ok {
		user := u
		loaded.User = &user
	}
	return &loaded
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, nil
	}
	return r.load(b), nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error) {
	return r.FindAll(ctx, db, entity.BookingFilter{UserID: &userID})
}

func (r *fakeBookingRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entity.Booking
	for _, b := range r.store.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.BookingType != "" && b.BookingType != filter.BookingType {
			continue
		}
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		result = append(result, *r.load(b))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, db *gorm.DB, booking *entity.Booking, expectedVersion int) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failUpdate != nil {
		return 0, r.store.failUpdate
	}
	current, ok := r.store.bookings[booking.ID]
	if !ok || current.Version != expectedVersion {
		return 0, nil
	}
	stored := copyBooking(*booking)
	stored.Items = current.Items
	stored.User = nil
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()
	r.store.bookings[booking.ID] = stored
	booking.Version = expectedVersion + 1
	return 1, nil
}

type fakeOutboxRepo struct{ store *memStore }

func (r *fakeOutboxRepo) CreateBatch(ctx context.Context, db *gorm.DB, entries []*entity.NotificationOutbox) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failOutbox != nil {
		return r.store.failOutbox
	}
	for _, e := range entries {
		r.store.outbox[e.ID] = *e
	}
	return nil
}

func (r *fakeOutboxRepo) Claim(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.NotificationOutbox, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.outbox[id]
	if !ok || e.Status != entity.NotificationStatusPending {
		return nil, nil
	}
	e.Status = entity.NotificationStatusSending
	e.Attempts++
	r.store.outbox[id] = e
	return &e, nil
}

func (r *fakeOutboxRepo) MarkSent(ctx context.Context, db *gorm.DB, id uuid.UUID, sentAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e := r.store.outbox[id]
	e.Status = entity.NotificationStatusSent
	e.SentAt = &sentAt
	r.store.outbox[id] = e
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e := r.store.outbox[id]
	e.Status = entity.NotificationStatusFailed
	e.Error = &reason
	r.store.outbox[id] = e
	return nil
}

func (r *fakeOutboxRepo) FindPendingIDs(ctx context.Context, db *gorm.DB, createdBefore time.Time, limit int) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var ids []uuid.UUID
	for id, e := range r.store.outbox {
		if e.Status == entity.NotificationStatusPending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeAuditRepo struct{ store *memStore }

func (r *fakeAuditRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failAudit != nil {
		return r.store.failAudit
	}
	log.ID = int64(len(r.store.audits) + 1)
	log.CreatedAt = time.Now()
	r.store.audits = append(r.store.audits, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.AuditLog, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	logs := append([]entity.AuditLog(nil), r.store.audits...)
	total := int64(len(logs))
	if offset < len(logs) {
		logs = logs[offset:]
	} else {
		logs = nil
	}
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, total, nil
}

func (r *fakeAuditRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.audits {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

type fakeSiteConfigRepo struct{ store *memStore }

func (r *fakeSiteConfigRepo) FindFirst(ctx context.Context, db *gorm.DB) (*entity.SiteConfig, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.config == nil {
		return nil, nil
	}
	c := *r.store.config
	return &c, nil
}

func (r *fakeSiteConfigRepo) Save(ctx context.Context, db *gorm.DB, config *entity.SiteConfig) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *config
	r.store.config = &c
	return nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (p *recordingPublisher) Enqueue(ids ...uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, ids...)
}

func (p *recordingPublisher) published() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.ids...)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestAuditService(store *memStore) service.AuditService {
	return service.NewAuditService(newTestLogger(), &fakeAuditRepo{store: store})
}

var (
	_ repository.Transactor                   = (*fakeTransactor)(nil)
	_ repository.UserRepository               = (*fakeUserRepo)(nil)
	_ repository.LabTestRepository            = (*fakeLabTestRepo)(nil)
	_ repository.BookingRepository            = (*fakeBookingRepo)(nil)
	_ repository.NotificationOutboxRepository = (*fakeOutboxRepo)(nil)
	_ repository.AuditLogRepository           = (*fakeAuditRepo)(nil)
	_ repository.SiteConfigRepository         = (*fakeSiteConfigRepo)(nil)
)

var errDuplicateEmail = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
