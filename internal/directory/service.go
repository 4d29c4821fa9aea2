package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/keylock"
)

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     Role
}

// AddAddressRequest is the input of AddCustomerAddress.
type AddAddressRequest struct {
	Title      string
	Address    string
	PostalCode string
	IsDefault  bool
}

// Service defines lookups and profile edits for vendors and customers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Party, error)
	Authenticate(ctx context.Context, email, password string) (*Party, error)

	GetParty(ctx context.Context, id string) (*Party, error)
	GetVendor(ctx context.Context, id string) (*Vendor, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListVendors(ctx context.Context, filter VendorFilter) ([]*Vendor, error)
	NearbyVendors(ctx context.Context, lat, long, radiusKm float64) ([]NearbyVendor, error)

	UpdateVendorStatus(ctx context.Context, id, message string) (*Vendor, error)
	UpdateVendorLocation(ctx context.Context, id string, lat, long float64) (*Vendor, error)
	UpdateVendorProfile(ctx context.Context, id string, req VendorProfileUpdate) (*Vendor, error)

	AddCustomerAddress(ctx context.Context, customerID string, req AddAddressRequest) (*Customer, error)
	RemoveCustomerAddress(ctx context.Context, customerID, addressID string) (*Customer, error)
	SetDefaultAddress(ctx context.Context, customerID, addressID string) (*Customer, error)

	// SyncLocationIndex loads every stored vendor location into the index.
	SyncLocationIndex(ctx context.Context) error
}

// Option customizes the service.
type Option func(*service)

// WithClock overrides the clock used to stamp location updates.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repo   Repository
	index  LocationIndex
	hasher auth.PasswordHasher
	logger *zap.Logger
	now    func() time.Time

	// vendorLocks serializes read-modify-write updates per vendor.
	vendorLocks *keylock.Map

	minPasswordLength int
}

// NewService creates a new directory Service.
func NewService(repo Repository, index LocationIndex, hasher auth.PasswordHasher, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		repo:              repo,
		index:             index,
		hasher:            hasher,
		logger:            logger,
		now:               time.Now,
		vendorLocks:       keylock.New(),
		minPasswordLength: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Party, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if len(req.Password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Check if email is already used.
	_, err := s.repo.GetPartyByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, ErrPartyNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	party := Party{
		Role:         req.Role,
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	}

	switch req.Role {
	case RoleVendor:
		v := &Vendor{Party: party, Categories: []string{}}
		if err := s.repo.CreateVendor(ctx, v); err != nil {
			return nil, err
		}
		party = v.Party
	default:
		c := &Customer{Party: party, Addresses: []Address{}}
		if err := s.repo.CreateCustomer(ctx, c); err != nil {
			return nil, err
		}
		party = c.Party
	}

	s.logger.Info("party registered", zap.String("party_id", party.ID), zap.String("role", string(party.Role)))
	return &party, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*Party, error) {
	p, err := s.repo.GetPartyByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrPartyNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

func (s *service) GetParty(ctx context.Context, id string) (*Party, error) {
	return s.repo.GetParty(ctx, id)
}

func (s *service) GetVendor(ctx context.Context, id string) (*Vendor, error) {
	return s.repo.GetVendor(ctx, id)
}

func (s *service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *service) ListVendors(ctx context.Context, filter VendorFilter) ([]*Vendor, error) {
	return s.repo.ListVendors(ctx, filter)
}

func (s *service) NearbyVendors(ctx context.Context, lat, long, radiusKm float64) ([]NearbyVendor, error) {
	if !validCoordinates(lat, long) {
		return nil, ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}

	hits, err := s.index.Nearby(ctx, lat, long, radiusKm)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyVendor, 0, len(hits))
	for _, h := range hits {
		v, err := s.repo.GetVendor(ctx, h.VendorID)
		if err != nil {
			if errors.Is(err, ErrVendorNotFound) {
				s.logger.Warn("location index references unknown vendor", zap.String("vendor_id", h.VendorID))
				continue
			}
			return nil, err
		}
		out = append(out, NearbyVendor{Vendor: v, DistanceKm: h.DistanceKm})
	}
	return out, nil
}

// updateVendor applies mutate to the stored vendor under the vendor's lock.
func (s *service) updateVendor(ctx context.Context, id string, mutate func(v *Vendor) error) (*Vendor, error) {
	unlock := s.vendorLocks.Lock(id)
	defer unlock()

	v, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(v); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) UpdateVendorStatus(ctx context.Context, id, message string) (*Vendor, error) {
	return s.updateVendor(ctx, id, func(v *Vendor) error {
		v.StatusMessage = strings.TrimSpace(message)
		return nil
	})
}

func (s *service) UpdateVendorLocation(ctx context.Context, id string, lat, long float64) (*Vendor, error) {
	if !validCoordinates(lat, long) {
		return nil, ErrInvalidCoordinates
	}

	v, err := s.updateVendor(ctx, id, func(v *Vendor) error {
		v.CurrentLocation = &LiveLocation{
			Latitude:    lat,
			Longitude:   long,
			LastUpdated: s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.index.Set(ctx, id, lat, long); err != nil {
		// The stored location is authoritative; the index catches up on the next sync.
		s.logger.Warn("failed to update location index", zap.String("vendor_id", id), zap.Error(err))
	}
	return v, nil
}

func (s *service) UpdateVendorProfile(ctx context.Context, id string, req VendorProfileUpdate) (*Vendor, error) {
	return s.updateVendor(ctx, id, func(v *Vendor) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return ErrNameRequired
			}
			v.Name = name
		}
		if req.Phone != nil {
			v.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Description != nil {
			v.Description = strings.TrimSpace(*req.Description)
		}
		if req.Categories != nil {
			v.Categories = normalizeCategories(req.Categories)
		}
		if req.ServiceArea != nil {
			if r := req.ServiceArea.RadiusKm; r != nil && *r <= 0 {
				return ErrInvalidRadius
			}
			v.ServiceArea = *req.ServiceArea
		}
		if req.Home != nil {
			if !validCoordinates(req.Home.Latitude, req.Home.Longitude) {
				return ErrInvalidCoordinates
			}
			v.Home = *req.Home
		}
		return nil
	})
}

// normalizeCategories trims entries and drops blanks and case-insensitive duplicates.
func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (s *service) AddCustomerAddress(ctx context.Context, customerID string, req AddAddressRequest) (*Customer, error) {
	addr := &Address{
		Title:      strings.TrimSpace(req.Title),
		Address:    strings.TrimSpace(req.Address),
		PostalCode: strings.TrimSpace(req.PostalCode),
		IsDefault:  req.IsDefault,
	}
	if addr.Title == "" || addr.Address == "" || addr.PostalCode == "" {
		return nil, ErrAddressIncomplete
	}

	if err := s.repo.AddAddress(ctx, customerID, addr); err != nil {
		return nil, err
	}
	return s.repo.GetCustomer(ctx, customerID)
}

func (s *service) RemoveCustomerAddress(ctx context.Context, customerID, addressID string) (*Customer, error) {
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveAddress(ctx, customerID, addressID); err != nil {
		return nil, err
	}
	return s.repo.GetCustomer(ctx, customerID)
}

func (s *service) SetDefaultAddress(ctx context.Context, customerID, addressID string) (*Customer, error) {
	if err := s.repo.SetDefaultAddress(ctx, customerID, addressID); err != nil {
		return nil, err
	}
	return s.repo.GetCustomer(ctx, customerID)
}

func (s *service) SyncLocationIndex(ctx context.Context) error {
	vendors, err := s.repo.ListVendors(ctx, VendorFilter{})
	if err != nil {
		return err
	}

	indexed := 0
	for _, v := range vendors {
		if v.CurrentLocation == nil {
			continue
		}
		if err := s.index.Set(ctx, v.ID, v.CurrentLocation.Latitude, v.CurrentLocation.Longitude); err != nil {
			return err
		}
		indexed++
	}
	s.logger.Info("location index synced", zap.Int("vendors", indexed))
	return nil
}
