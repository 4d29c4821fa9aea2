package http

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
)

// RegisterRequest is the payload for POST /v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=vendor customer"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ListVendorsRequest struct {
	Query    string `form:"q"`
	Category string `form:"category"`
}

type NearbyRequest struct {
	Lat      *float64 `form:"lat" binding:"required"`
	Long     *float64 `form:"long" binding:"required"`
	RadiusKm float64  `form:"radius_km" binding:"omitempty,gt=0"`
}

type UpdateStatusRequest struct {
	Message string `json:"message" binding:"max=280"`
}

type UpdateLocationRequest struct {
	Lat  *float64 `json:"lat" binding:"required"`
	Long *float64 `json:"long" binding:"required"`
}

type ServiceAreaBody struct {
	PostalCode *string  `json:"postal_code"`
	RadiusKm   *float64 `json:"radius_km"`
}

type LocationBody struct {
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
	Address string  `json:"address"`
}

// UpdateVendorRequest is a partial profile update; absent fields are kept.
type UpdateVendorRequest struct {
	Name        *string          `json:"name"`
	Phone       *string          `json:"phone"`
	Description *string          `json:"description"`
	Categories  []string         `json:"categories"`
	ServiceArea *ServiceAreaBody `json:"service_area"`
	Home        *LocationBody    `json:"home"`
}

func (r UpdateVendorRequest) toDomain() directory.VendorProfileUpdate {
	out := directory.VendorProfileUpdate{
		Name:        r.Name,
		Phone:       r.Phone,
		Description: r.Description,
		Categories:  r.Categories,
	}
	if r.ServiceArea != nil {
		out.ServiceArea = &directory.ServiceArea{PostalCode: r.ServiceArea.PostalCode, RadiusKm: r.ServiceArea.RadiusKm}
	}
	if r.Home != nil {
		out.Home = &directory.Location{Latitude: r.Home.Lat, Longitude: r.Home.Long, Address: r.Home.Address}
	}
	return out
}

type AddAddressRequest struct {
	Title      string `json:"title" binding:"required"`
	Address    string `json:"address" binding:"required"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default"`
}

// AddressURI addresses one saved address of a customer.
type AddressURI struct {
	ID        string `uri:"id" binding:"required"`
	AddressID string `uri:"addressId" binding:"required"`
}

// PartyResponse is the shape of a party's public data.
type PartyResponse struct {
	ID        string       `json:"id"`
	Role      string       `json:"role"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Home      LocationBody `json:"home"`
	CreatedAt time.Time    `json:"created_at"`
}

// PartyTag is a brief representation of a vendor or customer.
type PartyTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type LiveLocationResponse struct {
	Lat         float64   `json:"lat"`
	Long        float64   `json:"long"`
	LastUpdated time.Time `json:"last_updated"`
}

type VendorResponse struct {
	PartyResponse
	ServiceArea     ServiceAreaBody       `json:"service_area"`
	Categories      []string              `json:"categories"`
	Description     string                `json:"description"`
	CurrentLocation *LiveLocationResponse `json:"current_location"`
	StatusMessage   string                `json:"status_message"`
}

type NearbyVendorResponse struct {
	VendorResponse
	DistanceKm float64 `json:"distance_km"`
}

type AddressResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	IsDefault  bool   `json:"is_default"`
}

type CustomerResponse struct {
	PartyResponse
	Addresses []AddressResponse `json:"addresses"`
}

// LoginResponse is the response for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	Party       PartyResponse `json:"party"`
}

// MeResponse carries the caller's full profile; exactly one of Vendor and Customer is set.
type MeResponse struct {
	Party    PartyResponse     `json:"party"`
	Vendor   *VendorResponse   `json:"vendor,omitempty"`
	Customer *CustomerResponse `json:"customer,omitempty"`
}

func NewPartyResponse(p *directory.Party) PartyResponse {
	return PartyResponse{
		ID:        p.ID,
		Role:      string(p.Role),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Home:      LocationBody{Lat: p.Home.Latitude, Long: p.Home.Longitude, Address: p.Home.Address},
		CreatedAt: p.CreatedAt,
	}
}

func NewPartyTag(p *directory.Party) PartyTag {
	return PartyTag{ID: p.ID, Name: p.Name, Phone: p.Phone}
}

func NewVendorResponse(v *directory.Vendor) VendorResponse {
	resp := VendorResponse{
		PartyResponse: NewPartyResponse(&v.Party),
		ServiceArea:   ServiceAreaBody{PostalCode: v.ServiceArea.PostalCode, RadiusKm: v.ServiceArea.RadiusKm},
		Categories:    v.Categories,
		Description:   v.Description,
		StatusMessage: v.StatusMessage,
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	if v.CurrentLocation != nil {
		resp.CurrentLocation = &LiveLocationResponse{
			Lat:         v.CurrentLocation.Latitude,
			Long:        v.CurrentLocation.Longitude,
			LastUpdated: v.CurrentLocation.LastUpdated,
		}
	}
	return resp
}

func NewCustomerResponse(c *directory.Customer) CustomerResponse {
	addresses := make([]AddressResponse, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		addresses = append(addresses, AddressResponse{
			ID:         a.ID,
			Title:      a.Title,
			Address:    a.Address,
			PostalCode: a.PostalCode,
			IsDefault:  a.IsDefault,
		})
	}
	return CustomerResponse{
		PartyResponse: NewPartyResponse(&c.Party),
		Addresses:     addresses,
	}
}
