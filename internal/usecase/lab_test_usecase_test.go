package usecase

import (
	"context"
	"testing"

	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLabTestFixture() (*memStore, LabTestUsecase) {
	store := newMemStore()
	uc := NewLabTestUsecase(&fakeTransactor{store: store}, newTestLogger(), &fakeLabTestRepo{store: store}, newTestAuditService(store))
	return store, uc
}

var testAdmin = entity.Actor{ID: uuid.New(), Email: "admin@example.com", Role: entity.RoleAdmin}

func TestLabTestCreate(t *testing.T) {
	store, uc := newLabTestFixture()

	resp, err := uc.Create(context.Background(), testAdmin, &dto.CreateLabTestRequest{
		Name:        "  Vitamin D ",
		Category:    "Vitamins",
		Price:       mustDecimal("1200.456"),
		TestType:    "CLINIC_TEST",
		Description: strPtr(`<p onclick="x()">Checks <strong>25-OH</strong> levels</p><script>bad()</script>`),
		FAQs: []dto.FAQRequest{
			{Question: "Fasting?", Answer: "No"},
			{Question: "", Answer: "dropped"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Vitamin D", resp.Name)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "1200.46", resp.Price.StringFixed(2))
	require.NotNil(t, resp.Description)
	assert.Equal(t, "<p>Checks <strong>25-OH</strong> levels</p>", *resp.Description)
	assert.Len(t, resp.FAQs, 1)
	assert.Equal(t, []string{entity.AuditActionTestCreate}, store.auditActions())
}

func TestLabTestCreate_Validation(t *testing.T) {
	_, uc := newLabTestFixture()

	_, err := uc.Create(context.Background(), testAdmin, &dto.CreateLabTestRequest{
		Name: "CBC", Category: "Blood", Price: mustDecimal("0"), TestType: "HOME_TEST",
	})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "price", ve.Field)

	_, err = uc.Create(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleUser}, &dto.CreateLabTestRequest{})
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestLabTestUpdate_IgnoresInvalidPriceAndType(t *testing.T) {
	store, uc := newLabTestFixture()
	test := store.addTest("CBC", "300", true)

	negative := mustDecimal("-5")
	resp, err := uc.Update(context.Background(), testAdmin, test.ID, &dto.UpdateLabTestRequest{
		Price:    &negative,
		TestType: strPtr("TELEPATHY"),
		Category: strPtr("Haematology"),
	})
	require.NoError(t, err)
	assert.Equal(t, "300.00", resp.Price.StringFixed(2))
	assert.Equal(t, "HOME_TEST", resp.TestType)
	assert.Equal(t, "Haematology", resp.Category)
}

func TestLabTestVisibility(t *testing.T) {
	store, uc := newLabTestFixture()
	active := store.addTest("CBC", "300", true)
	hidden := store.addTest("Legacy", "100", false)
	public := entity.Actor{}

	list, err := uc.GetAll(context.Background(), public, dto.LabTestQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 10, list.Limit)

	all, err := uc.GetAll(context.Background(), testAdmin, dto.LabTestQuery{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 100, all.Limit)

	_, err = uc.GetByID(context.Background(), public, active.ID)
	assert.NoError(t, err)
	_, err = uc.GetByID(context.Background(), public, hidden.ID)
	assert.ErrorIs(t, err, ErrLabTestNotFound)
	_, err = uc.GetByID(context.Background(), testAdmin, hidden.ID)
	assert.NoError(t, err)
}

func TestLabTestDelete(t *testing.T) {
	store, uc := newLabTestFixture()
	unused := store.addTest("Unused", "100", true)
	booked := store.addTest("Booked", "200", true)
	b := entity.NewBooking(uuid.New(), entity.BookingTypeClinicVisit, []entity.LabTest{booked})
	store.bookings[b.ID] = *b

	resp, err := uc.Delete(context.Background(), testAdmin, unused.ID)
	require.NoError(t, err)
	assert.True(t, resp.Deleted)
	assert.NotContains(t, store.tests, unused.ID)

	resp, err = uc.Delete(context.Background(), testAdmin, booked.ID)
	require.NoError(t, err)
	assert.True(t, resp.Deactivated)
	assert.False(t, store.tests[booked.ID].IsActive)

	_, err = uc.Delete(context.Background(), testAdmin, uuid.New())
	assert.ErrorIs(t, err, ErrLabTestNotFound)

	assert.Equal(t, []string{entity.AuditActionTestDelete, entity.AuditActionTestDeactivate}, store.auditActions())
}
