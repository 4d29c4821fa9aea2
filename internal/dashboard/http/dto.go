package http

import (
	bookingHttp "github.com/nekogravitycat/vendor-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/dashboard"
	dirHttp "github.com/nekogravitycat/vendor-booking-backend/internal/directory/http"
	slotHttp "github.com/nekogravitycat/vendor-booking-backend/internal/slot/http"
)

// VendorBookingsRequest defines query parameters for the grouped vendor bookings view.
type VendorBookingsRequest struct {
	Query string `form:"q"`
	Now   string `form:"now" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type VendorDetailRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	Days int    `form:"days" binding:"omitempty,min=1,max=31"`
}

type BookingViewResponse struct {
	Booking  bookingHttp.BookingResponse `json:"booking"`
	Slot     *slotHttp.SlotTag           `json:"slot"`
	Customer *dirHttp.PartyTag           `json:"customer,omitempty"`
	Vendor   *dirHttp.PartyTag           `json:"vendor,omitempty"`
}

type VendorBucketsResponse struct {
	Today    []BookingViewResponse `json:"today"`
	Tomorrow []BookingViewResponse `json:"tomorrow"`
	Upcoming []BookingViewResponse `json:"upcoming"`
	Past     []BookingViewResponse `json:"past"`
}

type CustomerBucketsResponse struct {
	Upcoming  []BookingViewResponse `json:"upcoming"`
	Past      []BookingViewResponse `json:"past"`
	Cancelled []BookingViewResponse `json:"cancelled"`
}

type StatsResponse struct {
	Slots           int `json:"slots"`
	BookedPlaces    int `json:"booked_places"`
	AvailablePlaces int `json:"available_places"`
	ActiveBookings  int `json:"active_bookings"`
}

type VendorDashboardResponse struct {
	Vendor   dirHttp.VendorResponse  `json:"vendor"`
	Date     string                  `json:"date"`
	Slots    []slotHttp.SlotResponse `json:"slots"`
	Bookings []BookingViewResponse   `json:"bookings"`
	Stats    StatsResponse           `json:"stats"`
}

type VendorDetailResponse struct {
	Vendor   dirHttp.VendorResponse  `json:"vendor"`
	From     string                  `json:"from"`
	Days     int                     `json:"days"`
	Slots    []slotHttp.SlotResponse `json:"slots"`
	Bookings []BookingViewResponse   `json:"bookings"`
}

func newBookingView(v dashboard.BookingView) BookingViewResponse {
	resp := BookingViewResponse{
		Booking: bookingHttp.NewBookingResponse(v.Booking),
		Slot:    slotHttp.NewSlotTag(v.Slot),
	}
	if v.Customer != nil {
		tag := dirHttp.NewPartyTag(&v.Customer.Party)
		resp.Customer = &tag
	}
	if v.Vendor != nil {
		tag := dirHttp.NewPartyTag(&v.Vendor.Party)
		resp.Vendor = &tag
	}
	return resp
}

func newBookingViews(views []dashboard.BookingView) []BookingViewResponse {
	out := make([]BookingViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newBookingView(v))
	}
	return out
}

func newSlotViews(views []dashboard.SlotView) []slotHttp.SlotResponse {
	out := make([]slotHttp.SlotResponse, 0, len(views))
	for _, v := range views {
		out = append(out, slotHttp.NewSlotResponse(v.Slot))
	}
	return out
}
