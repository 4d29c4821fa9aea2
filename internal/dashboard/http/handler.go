package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/dashboard"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	dirHttp "github.com/nekogravitycat/vendor-booking-backend/internal/directory/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/calendar"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

const defaultDetailDays = 7

type Handler struct {
	service dashboard.Service
	now     func() time.Time
}

// NewHandler creates the dashboard handler. now supplies the reference instant
// when a request does not pin one.
func NewHandler(service dashboard.Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{service: service, now: now}
}

// resolveNow parses an optional RFC 3339 instant, falling back to the handler clock.
func (h *Handler) resolveNow(raw string) (time.Time, bool) {
	if raw == "" {
		return h.now(), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Schedule lists a vendor's slots on one day with remaining capacity.
func (h *Handler) Schedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var q request.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	date := q.Date
	if date == "" {
		date = calendar.DateOf(h.now())
	}

	views, err := h.service.VendorSchedule(c.Request.Context(), uri.ID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newSlotViews(views)))
}

func (h *Handler) Dashboard(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var q request.NowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	now, ok := h.resolveNow(q.Now)
	if !ok {
		response.BadRequest(c, "now must be an RFC 3339 timestamp")
		return
	}

	d, err := h.service.VendorDashboard(c.Request.Context(), uri.ID, now)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, VendorDashboardResponse{
		Vendor:   dirHttp.NewVendorResponse(d.Vendor),
		Date:     d.Date,
		Slots:    newSlotViews(d.Slots),
		Bookings: newBookingViews(d.Bookings),
		Stats: StatsResponse{
			Slots:           d.Stats.Slots,
			BookedPlaces:    d.Stats.BookedPlaces,
			AvailablePlaces: d.Stats.AvailablePlaces,
			ActiveBookings:  d.Stats.ActiveBookings,
		},
	})
}

func (h *Handler) VendorBookings(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var q VendorBookingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	now, ok := h.resolveNow(q.Now)
	if !ok {
		response.BadRequest(c, "now must be an RFC 3339 timestamp")
		return
	}

	b, err := h.service.VendorBookings(c.Request.Context(), uri.ID, now, q.Query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, VendorBucketsResponse{
		Today:    newBookingViews(b.Today),
		Tomorrow: newBookingViews(b.Tomorrow),
		Upcoming: newBookingViews(b.Upcoming),
		Past:     newBookingViews(b.Past),
	})
}

func (h *Handler) CustomerBookings(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}

	b, err := h.service.CustomerBookings(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, CustomerBucketsResponse{
		Upcoming:  newBookingViews(b.Upcoming),
		Past:      newBookingViews(b.Past),
		Cancelled: newBookingViews(b.Cancelled),
	})
}

// VendorDetail shows a vendor's upcoming slots and, for customer callers,
// the caller's own bookings with that vendor.
func (h *Handler) VendorDetail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var q VendorDetailRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	from := q.From
	if from == "" {
		from = calendar.DateOf(h.now())
	}
	days := q.Days
	if days == 0 {
		days = defaultDetailDays
	}
	var customerID string
	if auth.GetUserRole(c) == string(directory.RoleCustomer) {
		customerID = auth.GetUserID(c)
	}

	d, err := h.service.VendorDetail(c.Request.Context(), uri.ID, customerID, from, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, VendorDetailResponse{
		Vendor:   dirHttp.NewVendorResponse(d.Vendor),
		From:     d.From,
		Days:     d.Days,
		Slots:    newSlotViews(d.Slots),
		Bookings: newBookingViews(d.Bookings),
	})
}
