package handler

import (
	"errors"
	"net/http"

	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/usecase"
	"lab-booking/pkg/response"
	"lab-booking/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.ListMyBookings(r.Context(), actorFrom(r))
	if err != nil {
		h.handleError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.bookingUsecase.CreateBooking(r.Context(), actorFrom(r), &req)
	if err != nil {
		h.handleError(w, err, "Failed to create booking")
		return
	}

	setETag(w, result.Booking.Version)
	response.Success(w, http.StatusCreated, "Booking created successfully", result.Booking)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), actorFrom(r), id)
	if err != nil {
		h.handleError(w, err, "Failed to get booking")
		return
	}

	setETag(w, booking.Version)
	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

func (h *BookingHandler) EditBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.EditBookingRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if !h.applyIfMatch(w, r, &req.Version) {
		return
	}

	result, err := h.bookingUsecase.EditBooking(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		h.handleError(w, err, "Failed to update booking")
		return
	}

	setETag(w, result.Booking.Version)
	response.Success(w, http.StatusOK, "Booking updated successfully", result.Booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.CancelBookingRequest
	if err := decodeBody(r, &req, true); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if !h.applyIfMatch(w, r, &req.Version) {
		return
	}

	result, err := h.bookingUsecase.CancelBooking(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		h.handleError(w, err, "Failed to cancel booking")
		return
	}

	message := "Booking cancelled successfully"
	if result.CancelRequested {
		message = "Cancellation request submitted for review"
	}

	setETag(w, result.Booking.Version)
	response.Success(w, http.StatusOK, message, dto.CancelBookingResponse{
		Cancelled:       result.Cancelled,
		CancelRequested: result.CancelRequested,
		Booking:         result.Booking,
	})
}

func (h *BookingHandler) AdminListBookings(w http.ResponseWriter, r *http.Request) {
	query := dto.BookingListQuery{
		Status:      r.URL.Query().Get("status"),
		BookingType: r.URL.Query().Get("booking_type"),
	}

	bookings, err := h.bookingUsecase.AdminListBookings(r.Context(), actorFrom(r), query)
	if err != nil {
		h.handleError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) AdminUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.AdminUpdateBookingRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if !h.applyIfMatch(w, r, &req.Version) {
		return
	}

	result, err := h.bookingUsecase.AdminUpdateStatus(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		h.handleError(w, err, "Failed to update booking")
		return
	}

	setETag(w, result.Booking.Version)
	response.Success(w, http.StatusOK, "Booking updated successfully", result.Booking)
}

// applyIfMatch fills version from If-Match unless the body already set it
func (h *BookingHandler) applyIfMatch(w http.ResponseWriter, r *http.Request, version **int) bool {
	headerVersion, ok := ifMatchVersion(r)
	if !ok {
		response.BadRequest(w, "Invalid If-Match header")
		return false
	}
	if *version == nil {
		*version = headerVersion
	}
	return true
}

func (h *BookingHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if writeError(w, err) {
		return
	}

	switch {
	case errors.Is(err, usecase.ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, usecase.ErrBookingForbidden):
		response.Forbidden(w, "You do not have access to this booking")
	case errors.Is(err, usecase.ErrTestsNotFound):
		response.BadRequest(w, "One or more tests not found or inactive")
	case errors.Is(err, usecase.ErrBookingAlreadyCancelled):
		response.Conflict(w, "Booking is already cancelled")
	case errors.Is(err, usecase.ErrBookingVersionConflict):
		response.Conflict(w, "Booking was modified by another request, reload and try again")
	case errors.Is(err, usecase.ErrBookingNotEditable):
		response.BadRequest(w, "Booking cannot be edited at this stage")
	case errors.Is(err, usecase.ErrOnlyHomeCollectionEditable):
		response.BadRequest(w, "Only home collection bookings can be edited")
	default:
		response.InternalServerError(w, fallback)
	}
}
