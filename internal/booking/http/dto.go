package http

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
)

// CreateBookingRequest is the payload for POST /v1/bookings.
// CustomerID defaults to the caller and must match it when given.
type CreateBookingRequest struct {
	SlotID     string `json:"slot_id" binding:"required"`
	CustomerID string `json:"customer_id"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
}

type BookingResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	VendorID   string    `json:"vendor_id"`
	TimeSlotID string    `json:"time_slot_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		VendorID:   b.VendorID,
		TimeSlotID: b.TimeSlotID,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func newBookingList(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}
	return items
}
