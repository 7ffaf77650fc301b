package dto

// Response DTOs

type AdminUserResponse struct {
	UserResponse
	BookingCount int64 `json:"booking_count"`
}

type AdminUserListResponse struct {
	Users []AdminUserResponse `json:"users"`
	Total int                 `json:"total"`
}
