package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

// defaultRadiusKm applies when a nearby search names no radius.
const defaultRadiusKm = 5.0

type Handler struct {
	service    directory.Service
	jwtManager *auth.JWTManager
}

func NewHandler(service directory.Service, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		service:    service,
		jwtManager: jwtManager,
	}
}

// Register creates a vendor or customer account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p, err := h.service.Register(c.Request.Context(), directory.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     directory.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPartyResponse(p))
}

// Login authenticates a party using email and password and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(p.ID, string(p.Role))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwtManager.TTL().Seconds()),
		Party:       NewPartyResponse(p),
	})
}

// Me returns the profile of the party named by the bearer token.
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.GetParty(ctx, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := MeResponse{Party: NewPartyResponse(p)}
	switch p.Role {
	case directory.RoleVendor:
		v, err := h.service.GetVendor(ctx, p.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		vr := NewVendorResponse(v)
		resp.Vendor = &vr
	case directory.RoleCustomer:
		cu, err := h.service.GetCustomer(ctx, p.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		cr := NewCustomerResponse(cu)
		resp.Customer = &cr
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListVendors(c *gin.Context) {
	var req ListVendorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	vendors, err := h.service.ListVendors(c.Request.Context(), directory.VendorFilter{
		Query:    req.Query,
		Category: req.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		items = append(items, NewVendorResponse(v))
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) NearbyVendors(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	radius := req.RadiusKm
	if radius == 0 {
		radius = defaultRadiusKm
	}

	hits, err := h.service.NearbyVendors(c.Request.Context(), *req.Lat, *req.Long, radius)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]NearbyVendorResponse, 0, len(hits))
	for _, hit := range hits {
		items = append(items, NearbyVendorResponse{
			VendorResponse: NewVendorResponse(hit.Vendor),
			DistanceKm:     hit.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) GetVendor(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}

	v, err := h.service.GetVendor(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVendorResponse(v))
}

func (h *Handler) UpdateVendor(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	v, err := h.service.UpdateVendorProfile(c.Request.Context(), uri.ID, req.toDomain())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVendorResponse(v))
}

func (h *Handler) UpdateVendorStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	v, err := h.service.UpdateVendorStatus(c.Request.Context(), uri.ID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVendorResponse(v))
}

func (h *Handler) UpdateVendorLocation(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	v, err := h.service.UpdateVendorLocation(c.Request.Context(), uri.ID, *req.Lat, *req.Long)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVendorResponse(v))
}

func (h *Handler) GetCustomer(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}

	cu, err := h.service.GetCustomer(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCustomerResponse(cu))
}

func (h *Handler) AddAddress(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid customer id")
		return
	}
	var req AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	cu, err := h.service.AddCustomerAddress(c.Request.Context(), uri.ID, directory.AddAddressRequest{
		Title:      req.Title,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCustomerResponse(cu))
}

func (h *Handler) RemoveAddress(c *gin.Context) {
	var uri AddressURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid address path")
		return
	}

	cu, err := h.service.RemoveCustomerAddress(c.Request.Context(), uri.ID, uri.AddressID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCustomerResponse(cu))
}

func (h *Handler) SetDefaultAddress(c *gin.Context) {
	var uri AddressURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid address path")
		return
	}

	cu, err := h.service.SetDefaultAddress(c.Request.Context(), uri.ID, uri.AddressID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCustomerResponse(cu))
}
