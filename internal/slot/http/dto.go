package http

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

// CreateSlotRequest is the payload for POST /v1/slots. The owning vendor is the caller.
type CreateSlotRequest struct {
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	MaxBookings *int   `json:"max_bookings"`
}

func (r CreateSlotRequest) maxBookings() int {
	if r.MaxBookings == nil {
		return slot.DefaultMaxBookings
	}
	return *r.MaxBookings
}

type SlotResponse struct {
	ID              string    `json:"id"`
	VendorID        string    `json:"vendor_id"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	MaxBookings     int       `json:"max_bookings"`
	CurrentBookings int       `json:"current_bookings"`
	AvailableSlots  int       `json:"available_slots"`
	CreatedAt       time.Time `json:"created_at"`
}

// SlotTag is a brief representation of a slot embedded in booking views.
type SlotTag struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func NewSlotResponse(ts *slot.TimeSlot) SlotResponse {
	return SlotResponse{
		ID:              ts.ID,
		VendorID:        ts.VendorID,
		Date:            ts.Date,
		StartTime:       ts.StartTime,
		EndTime:         ts.EndTime,
		MaxBookings:     ts.MaxBookings,
		CurrentBookings: ts.CurrentBookings,
		AvailableSlots:  ts.Available(),
		CreatedAt:       ts.CreatedAt,
	}
}

// NewSlotTag returns nil for a slot that no longer exists.
func NewSlotTag(ts *slot.TimeSlot) *SlotTag {
	if ts == nil {
		return nil
	}
	return &SlotTag{ID: ts.ID, Date: ts.Date, StartTime: ts.StartTime, EndTime: ts.EndTime}
}
