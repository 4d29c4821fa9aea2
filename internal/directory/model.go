package directory

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
)

var (
	ErrPartyNotFound      = apperror.New(apperror.KindNotFound, "party not found")
	ErrVendorNotFound     = apperror.New(apperror.KindNotFound, "vendor not found")
	ErrCustomerNotFound   = apperror.New(apperror.KindNotFound, "customer not found")
	ErrAddressNotFound    = apperror.New(apperror.KindNotFound, "address not found")
	ErrEmailAlreadyUsed   = apperror.New(apperror.KindConflict, "email already used")
	ErrPartyExists        = apperror.New(apperror.KindConflict, "party id already exists")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(apperror.KindValidation, "email is required")
	ErrNameRequired       = apperror.New(apperror.KindValidation, "name is required")
	ErrPasswordTooShort   = apperror.New(apperror.KindValidation, "password must be at least 8 characters")
	ErrInvalidRole        = apperror.New(apperror.KindValidation, "role must be vendor or customer")
	ErrInvalidCoordinates = apperror.New(apperror.KindValidation, "latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrInvalidRadius      = apperror.New(apperror.KindValidation, "radius must be positive")
	ErrAddressIncomplete  = apperror.New(apperror.KindValidation, "title, address and postal code are required")
)

type Role string

const (
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleVendor || r == RoleCustomer
}

// Location is a point with an optional human-readable address.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Party holds the fields shared by vendors and customers.
type Party struct {
	ID           string
	Role         Role
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Home         Location
	CreatedAt    time.Time
}

// ServiceArea bounds where a vendor operates. Both fields are optional.
type ServiceArea struct {
	PostalCode *string
	RadiusKm   *float64
}

// LiveLocation is the last position a vendor shared.
type LiveLocation struct {
	Latitude    float64
	Longitude   float64
	LastUpdated time.Time
}

type Vendor struct {
	Party
	ServiceArea     ServiceArea
	Categories      []string
	Description     string
	CurrentLocation *LiveLocation
	StatusMessage   string
}

type Address struct {
	ID         string
	Title      string
	Address    string
	PostalCode string
	IsDefault  bool
}

type Customer struct {
	Party
	Addresses []Address
}

// DefaultAddress returns the customer's default address, if any.
func (c *Customer) DefaultAddress() (Address, bool) {
	for _, a := range c.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// VendorFilter narrows ListVendors. Query matches name, description and
// categories case-insensitively; Category must match one category exactly
// (ignoring case).
type VendorFilter struct {
	Query    string
	Category string
}

// NearbyVendor is a vendor with its distance from the search origin.
type NearbyVendor struct {
	Vendor     *Vendor
	DistanceKm float64
}

// VendorProfileUpdate carries the optional fields of a profile edit.
type VendorProfileUpdate struct {
	Name        *string
	Phone       *string
	Description *string
	Categories  []string
	ServiceArea *ServiceArea
	Home        *Location
}

func validCoordinates(lat, long float64) bool {
	return lat >= -90 && lat <= 90 && long >= -180 && long <= 180
}

func cloneVendor(v *Vendor) *Vendor {
	out := *v
	out.Categories = append([]string(nil), v.Categories...)
	if v.CurrentLocation != nil {
		loc := *v.CurrentLocation
		out.CurrentLocation = &loc
	}
	if v.ServiceArea.PostalCode != nil {
		pc := *v.ServiceArea.PostalCode
		out.ServiceArea.PostalCode = &pc
	}
	if v.ServiceArea.RadiusKm != nil {
		r := *v.ServiceArea.RadiusKm
		out.ServiceArea.RadiusKm = &r
	}
	return &out
}

func cloneCustomer(c *Customer) *Customer {
	out := *c
	out.Addresses = append([]Address(nil), c.Addresses...)
	return &out
}
