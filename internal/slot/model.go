package slot

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(apperror.KindNotFound, "time slot not found")
	ErrCapacityExceeded = apperror.New(apperror.KindCapacityExceeded, "time slot is fully booked")
	ErrHasBookings      = apperror.New(apperror.KindConflict, "time slot still has bookings")
	ErrInvalidDate      = apperror.New(apperror.KindValidation, "date must be a calendar day in YYYY-MM-DD format")
	ErrInvalidTime      = apperror.New(apperror.KindValidation, "times must be in 24-hour HH:MM format")
	ErrInvalidTimeRange = apperror.New(apperror.KindValidation, "start time must be before end time")
	ErrInvalidCapacity  = apperror.New(apperror.KindValidation, "max bookings must be positive")
	ErrPermissionDenied = apperror.New(apperror.KindForbidden, "only the owning vendor can manage this time slot")
)

// DefaultMaxBookings applies when a vendor publishes a slot without a capacity.
const DefaultMaxBookings = 10

// TimeSlot is a vendor-published window with a booking capacity.
// Date is YYYY-MM-DD; StartTime and EndTime are HH:MM on that day.
type TimeSlot struct {
	ID              string
	VendorID        string
	Date            string
	StartTime       string
	EndTime         string
	MaxBookings     int
	CurrentBookings int
	CreatedAt       time.Time
}

// Available is the remaining reservable space.
func (s *TimeSlot) Available() int {
	if n := s.MaxBookings - s.CurrentBookings; n > 0 {
		return n
	}
	return 0
}

// Full reports whether no space is left.
func (s *TimeSlot) Full() bool {
	return s.CurrentBookings >= s.MaxBookings
}

// Filter narrows List. Date bounds are inclusive YYYY-MM-DD strings; empty means unbounded.
type Filter struct {
	VendorID string
	IDs      []string
	DateFrom string
	DateTo   string
}
