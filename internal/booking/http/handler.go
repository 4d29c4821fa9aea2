package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	actorID := auth.GetUserID(c)
	customerID := body.CustomerID
	if customerID == "" {
		customerID = actorID
	}

	b, err := h.service.Create(c.Request.Context(), actorID, booking.CreateRequest{
		CustomerID: customerID,
		SlotID:     body.SlotID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Access Check: only the two parties of a booking may read it.
	userID := auth.GetUserID(c)
	if userID != b.CustomerID && userID != b.VendorID {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Complete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	ctx := c.Request.Context()
	current, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if current.VendorID != auth.GetUserID(c) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	b, err := h.service.MarkCompleted(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) ListByVendor(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	bookings, err := h.service.ListByVendor(c.Request.Context(), uri.ID, booking.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newBookingList(bookings)))
}

func (h *Handler) ListByCustomer(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	bookings, err := h.service.ListByCustomer(c.Request.Context(), uri.ID, booking.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newBookingList(bookings)))
}
