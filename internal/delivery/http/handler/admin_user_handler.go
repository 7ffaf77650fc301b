package handler

import (
	"net/http"

	"lab-booking/internal/usecase"
	"lab-booking/pkg/response"
)

type AdminUserHandler struct {
	adminUserUsecase usecase.AdminUserUsecase
}

func NewAdminUserHandler(adminUserUsecase usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{adminUserUsecase: adminUserUsecase}
}

func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminUserUsecase.ListUsers(r.Context(), actorFrom(r))
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to get users")
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", users)
}

func (h *AdminUserHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	bookings, err := h.adminUserUsecase.GetUserBookings(r.Context(), actorFrom(r), userID)
	if err != nil {
		if writeError(w, err) {
			return
		}
		response.InternalServerError(w, "Failed to get user bookings")
		return
	}

	response.Success(w, http.StatusOK, "User bookings retrieved successfully", bookings)
}
