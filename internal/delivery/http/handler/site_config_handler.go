package handler

import (
	"net/http"

	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/usecase"
	"lab-booking/pkg/response"
	"lab-booking/pkg/validator"
)

type SiteConfigHandler struct {
	siteConfigUsecase usecase.SiteConfigUsecase
	validator         *validator.CustomValidator
}

func NewSiteConfigHandler(siteConfigUsecase usecase.SiteConfigUsecase, validator *validator.CustomValidator) *SiteConfigHandler {
	return &SiteConfigHandler{
		siteConfigUsecase: siteConfigUsecase,
		validator:         validator,
	}
}

func (h *SiteConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	config, err := h.siteConfigUsecase.Get(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get settings")
		return
	}

	response.Success(w, http.StatusOK, "Settings retrieved successfully", config)
}

func (h *SiteConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSiteConfigRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	config, err := h.siteConfigUsecase.Update(r.Context(), actorFrom(r), &req)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to update settings")
		return
	}

	response.Success(w, http.StatusOK, "Settings updated successfully", config)
}
