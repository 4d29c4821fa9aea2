package dashboard

import (
	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

var (
	ErrInvalidRange = apperror.New(apperror.KindValidation, "days must be between 1 and 31")
	ErrInvalidDate  = apperror.New(apperror.KindValidation, "date must be a calendar day in YYYY-MM-DD format")
)

// MaxDetailDays bounds the window of a vendor detail view.
const MaxDetailDays = 31

// SlotView is a slot with its remaining capacity.
type SlotView struct {
	Slot           *slot.TimeSlot
	AvailableSlots int
}

func newSlotView(ts *slot.TimeSlot) SlotView {
	return SlotView{Slot: ts, AvailableSlots: ts.Available()}
}

// BookingView joins a booking with its slot and the counterpart party.
// Slot is nil for a cancelled booking whose slot was later removed.
// Vendor views fill Customer; customer views fill Vendor.
type BookingView struct {
	Booking  *booking.Booking
	Slot     *slot.TimeSlot
	Customer *directory.Customer
	Vendor   *directory.Vendor
}

// VendorBuckets groups a vendor's bookings by slot date relative to now.
type VendorBuckets struct {
	Today    []BookingView
	Tomorrow []BookingView
	Upcoming []BookingView
	Past     []BookingView
}

// CustomerBuckets groups a customer's bookings by status.
type CustomerBuckets struct {
	Upcoming  []BookingView
	Past      []BookingView
	Cancelled []BookingView
}

type VendorDashboard struct {
	Vendor   *directory.Vendor
	Date     string
	Slots    []SlotView
	Bookings []BookingView
	Stats    DashboardStats
}

// DashboardStats summarizes the day's capacity.
type DashboardStats struct {
	Slots           int
	BookedPlaces    int
	AvailablePlaces int
	ActiveBookings  int
}

type VendorDetail struct {
	Vendor   *directory.Vendor
	From     string
	Days     int
	Slots    []SlotView
	Bookings []BookingView
}
