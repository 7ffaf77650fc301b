package converter

import (
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UsersWithBookingCountToResponses converts the admin listing read model
func UsersWithBookingCountToResponses(users []entity.UserWithBookingCount) []dto.AdminUserResponse {
	responses := make([]dto.AdminUserResponse, len(users))
	for i := range users {
		responses[i] = dto.AdminUserResponse{
			UserResponse: *UserToResponse(&users[i].User),
			BookingCount: users[i].BookingCount,
		}
	}
	return responses
}
