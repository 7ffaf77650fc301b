package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/delivery/http/middleware"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/usecase"
	"lab-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookingUsecase struct {
	usecase.BookingUsecase

	editReq   *dto.EditBookingRequest
	cancelReq *dto.CancelBookingRequest
	adminReq  *dto.AdminUpdateBookingRequest
	actor     entity.Actor

	result       *usecase.BookingResult
	cancelResult *usecase.CancelResult
	err          error
}

func (s *stubBookingUsecase) EditBooking(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.EditBookingRequest) (*usecase.BookingResult, error) {
	s.actor, s.editReq = actor, req
	return s.result, s.err
}

func (s *stubBookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CancelBookingRequest) (*usecase.CancelResult, error) {
	s.actor, s.cancelReq = actor, req
	return s.cancelResult, s.err
}

func (s *stubBookingUsecase) AdminUpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.AdminUpdateBookingRequest) (*usecase.BookingResult, error) {
	s.actor, s.adminReq = actor, req
	return s.result, s.err
}

func (s *stubBookingUsecase) GetBooking(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.BookingResponse, error) {
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return s.result.Booking, nil
}

func serveBooking(h *BookingHandler, method, pattern, target, body string, headers map[string]string, handle http.HandlerFunc) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc(pattern, handle).Methods(method)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	actor := entity.Actor{ID: uuid.New(), Email: "uma@example.com", Role: entity.RoleUser}
	req = req.WithContext(context.WithValue(req.Context(), middleware.ActorKey, actor))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestEditBooking_IfMatchSuppliesVersion(t *testing.T) {
	stub := &stubBookingUsecase{result: &usecase.BookingResult{Booking: &dto.BookingResponse{Version: 4}}}
	h := NewBookingHandler(stub, validator.NewValidator())

	id := uuid.New()
	rec := serveBooking(h, http.MethodPatch, "/bookings/{id}", "/bookings/"+id.String(),
		`{"city":"Pune"}`, map[string]string{"If-Match": `W/"3"`}, h.EditBooking)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.editReq.Version)
	assert.Equal(t, 3, *stub.editReq.Version)
	assert.Equal(t, "Pune", *stub.editReq.City)
	assert.Equal(t, `"4"`, rec.Header().Get("ETag"))
	assert.Equal(t, "uma@example.com", stub.actor.Email)
}

func TestEditBooking_BodyVersionWins(t *testing.T) {
	stub := &stubBookingUsecase{result: &usecase.BookingResult{Booking: &dto.BookingResponse{Version: 6}}}
	h := NewBookingHandler(stub, validator.NewValidator())

	rec := serveBooking(h, http.MethodPatch, "/bookings/{id}", "/bookings/"+uuid.NewString(),
		`{"version":5}`, map[string]string{"If-Match": `"2"`}, h.EditBooking)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, *stub.editReq.Version)
}

func TestEditBooking_InvalidIfMatch(t *testing.T) {
	stub := &stubBookingUsecase{}
	h := NewBookingHandler(stub, validator.NewValidator())

	rec := serveBooking(h, http.MethodPatch, "/bookings/{id}", "/bookings/"+uuid.NewString(),
		`{}`, map[string]string{"If-Match": `"abc"`}, h.EditBooking)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.editReq)
}

func TestCancelBooking_EmptyBodyAndRequestOutcome(t *testing.T) {
	booking := &dto.BookingResponse{ID: uuid.New(), Status: "CONFIRMED", CancelRequested: true, Version: 2}
	stub := &stubBookingUsecase{cancelResult: &usecase.CancelResult{CancelRequested: true, Booking: booking}}
	h := NewBookingHandler(stub, validator.NewValidator())

	rec := serveBooking(h, http.MethodPost, "/bookings/{id}/cancel", "/bookings/"+booking.ID.String()+"/cancel", "", nil, h.CancelBooking)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["cancel_requested"])
	assert.NotContains(t, data, "cancelled")
	assert.Equal(t, "Cancellation request submitted for review", body["message"])
}

func TestBookingHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", usecase.ErrBookingNotFound, http.StatusNotFound},
		{"forbidden", usecase.ErrBookingForbidden, http.StatusForbidden},
		{"admin only", usecase.ErrAdminOnly, http.StatusForbidden},
		{"unauthenticated", usecase.ErrUnauthenticated, http.StatusUnauthorized},
		{"already cancelled", usecase.ErrBookingAlreadyCancelled, http.StatusConflict},
		{"version conflict", usecase.ErrBookingVersionConflict, http.StatusConflict},
		{"not editable", usecase.ErrBookingNotEditable, http.StatusBadRequest},
		{"clinic visit", usecase.ErrOnlyHomeCollectionEditable, http.StatusBadRequest},
		{"validation", &usecase.ValidationError{Field: "patient_age", Message: "Age must be between 1 and 150"}, http.StatusBadRequest},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubBookingUsecase{err: tt.err}
			h := NewBookingHandler(stub, validator.NewValidator())

			rec := serveBooking(h, http.MethodPatch, "/admin/bookings/{id}", "/admin/bookings/"+uuid.NewString(),
				`{"status":"CONFIRMED"}`, nil, h.AdminUpdateBooking)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "CONFIRMED", *stub.adminReq.Status)
		})
	}
}

func TestGetBooking_InvalidID(t *testing.T) {
	h := NewBookingHandler(&stubBookingUsecase{}, validator.NewValidator())

	rec := serveBooking(h, http.MethodGet, "/bookings/{id}", "/bookings/not-a-uuid", "", nil, h.GetBooking)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_ValidatesBody(t *testing.T) {
	h := NewBookingHandler(&stubBookingUsecase{}, validator.NewValidator())

	rec := serveBooking(h, http.MethodPost, "/bookings", "/bookings",
		`{"booking_type":"HOME_COLLECTION","patient_name":"Uma","city":"Pune","phone":"9876543210","test_ids":[]}`, nil, h.CreateBooking)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse(t, rec)
	assert.Contains(t, body["error"], "test_ids")
}
