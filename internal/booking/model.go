package booking

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(apperror.KindNotFound, "booking not found")
	ErrDuplicate        = apperror.New(apperror.KindDuplicateBooking, "customer already holds an active booking for this time slot")
	ErrAlreadyClosed    = apperror.New(apperror.KindConflict, "booking is already cancelled or completed")
	ErrNotConfirmed     = apperror.New(apperror.KindConflict, "only confirmed bookings can be completed")
	ErrStatusMismatch   = apperror.New(apperror.KindConflict, "booking status changed concurrently")
	ErrPermissionDenied = apperror.New(apperror.KindForbidden, "permission denied")
	ErrInvalidStatus    = apperror.New(apperror.KindValidation, "invalid booking status")
)

type Status string

const (
	// StatusPending is reserved for a future approval or payment step; nothing creates it yet.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses hold capacity on their slot.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Active reports whether the booking still holds a place on its slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ParseStatus accepts an empty string as "no filter".
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Booking is a customer's reservation against one time slot.
// VendorID always equals the slot's vendor.
type Booking struct {
	ID         string
	CustomerID string
	VendorID   string
	TimeSlotID string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter narrows List. Empty fields match everything; a non-nil empty
// SlotIDs matches nothing.
type Filter struct {
	CustomerID string
	VendorID   string
	SlotIDs    []string
	Statuses   []Status
}
