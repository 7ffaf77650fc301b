package converter

import (
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
)

const bookingDateLayout = "2006-01-02"

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:               booking.ID,
		UserID:           booking.UserID,
		BookingType:      string(booking.BookingType),
		Status:           string(booking.Status),
		PatientName:      booking.PatientName,
		PatientAge:       booking.PatientAge,
		BookingTime:      booking.BookingTime,
		Address:          booking.Address,
		City:             booking.City,
		State:            booking.State,
		Pincode:          booking.Pincode,
		Phone:            booking.Phone,
		PrescriptionURL:  booking.PrescriptionURL,
		Notes:            booking.Notes,
		TotalAmount:      booking.TotalAmount,
		CancelRequested:  booking.CancelRequested,
		CancelReason:     booking.CancelReason,
		CancelReviewedAt: booking.CancelReviewedAt,
		CancelReviewedBy: booking.CancelReviewedBy,
		Version:          booking.Version,
		Items:            make([]dto.BookingItemResponse, 0, len(booking.Items)),
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	}

	if booking.BookingDate != nil {
		date := booking.BookingDate.Format(bookingDateLayout)
		response.BookingDate = &date
	}

	for _, item := range booking.Items {
		itemResponse := dto.BookingItemResponse{
			ID:     item.ID,
			TestID: item.TestID,
			Price:  item.Price,
		}
		if item.Test != nil {
			itemResponse.TestName = item.Test.Name
		}
		response.Items = append(response.Items, itemResponse)
	}

	// Include owner info if preloaded
	if booking.User != nil {
		response.User = &dto.BookingUserResponse{
			ID:    booking.User.ID,
			Name:  booking.User.Name,
			Email: booking.User.Email,
			Phone: booking.User.Phone,
		}
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
