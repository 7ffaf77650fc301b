package handler

import (
	"errors"
	"net/http"

	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/usecase"
	"lab-booking/pkg/response"
	"lab-booking/pkg/validator"
)

type LabTestHandler struct {
	labTestUsecase usecase.LabTestUsecase
	validator      *validator.CustomValidator
}

func NewLabTestHandler(labTestUsecase usecase.LabTestUsecase, validator *validator.CustomValidator) *LabTestHandler {
	return &LabTestHandler{
		labTestUsecase: labTestUsecase,
		validator:      validator,
	}
}

// GetAll serves both the public catalog and the admin listing; the usecase
// narrows to active tests for non-admin callers
func (h *LabTestHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := dto.LabTestQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}

	tests, err := h.labTestUsecase.GetAll(r.Context(), actorFrom(r), query)
	if err != nil {
		h.handleError(w, err, "Failed to get tests")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Tests retrieved successfully", tests.Tests, &response.Meta{
		Page:       tests.Page,
		Limit:      tests.Limit,
		Total:      tests.Total,
		TotalPages: int((tests.Total + int64(tests.Limit) - 1) / int64(tests.Limit)),
	})
}

func (h *LabTestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid test ID", nil)
		return
	}

	test, err := h.labTestUsecase.GetByID(r.Context(), actorFrom(r), id)
	if err != nil {
		h.handleError(w, err, "Failed to get test")
		return
	}

	response.Success(w, http.StatusOK, "Test retrieved successfully", test)
}

func (h *LabTestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLabTestRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	test, err := h.labTestUsecase.Create(r.Context(), actorFrom(r), &req)
	if err != nil {
		h.handleError(w, err, "Failed to create test")
		return
	}

	response.Success(w, http.StatusCreated, "Test created successfully", test)
}

func (h *LabTestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid test ID", nil)
		return
	}

	var req dto.UpdateLabTestRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	test, err := h.labTestUsecase.Update(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		h.handleError(w, err, "Failed to update test")
		return
	}

	response.Success(w, http.StatusOK, "Test updated successfully", test)
}

func (h *LabTestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid test ID", nil)
		return
	}

	result, err := h.labTestUsecase.Delete(r.Context(), actorFrom(r), id)
	if err != nil {
		h.handleError(w, err, "Failed to delete test")
		return
	}

	message := "Test deleted successfully"
	if result.Deactivated {
		message = "Test is referenced by bookings and was deactivated instead"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *LabTestHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	if writeError(w, err) {
		return
	}
	if errors.Is(err, usecase.ErrLabTestNotFound) {
		response.NotFound(w, "Test not found")
		return
	}
	response.InternalServerError(w, fallback)
}
