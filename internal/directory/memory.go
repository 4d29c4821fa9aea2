package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu        sync.RWMutex
	vendors   map[string]*Vendor
	customers map[string]*Customer
	emails    map[string]string
	now       func() time.Time
}

// NewMemoryRepository creates an in-process repository. Returned records are copies.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		vendors:   make(map[string]*Vendor),
		customers: make(map[string]*Customer),
		emails:    make(map[string]string),
		now:       time.Now,
	}
}

func (r *memoryRepository) claim(p *Party) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, taken := r.emails[p.Email]; taken {
		return ErrEmailAlreadyUsed
	}
	if _, ok := r.vendors[p.ID]; ok {
		return ErrPartyExists
	}
	if _, ok := r.customers[p.ID]; ok {
		return ErrPartyExists
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}
	r.emails[p.Email] = p.ID
	return nil
}

func (r *memoryRepository) CreateVendor(_ context.Context, v *Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v.Role = RoleVendor
	if err := r.claim(&v.Party); err != nil {
		return err
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	r.vendors[v.ID] = cloneVendor(v)
	return nil
}

func (r *memoryRepository) CreateCustomer(_ context.Context, c *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.Role = RoleCustomer
	if err := r.claim(&c.Party); err != nil {
		return err
	}
	for i := range c.Addresses {
		if c.Addresses[i].ID == "" {
			c.Addresses[i].ID = uuid.NewString()
		}
	}
	if c.Addresses == nil {
		c.Addresses = []Address{}
	}
	r.customers[c.ID] = cloneCustomer(c)
	return nil
}

func (r *memoryRepository) GetParty(_ context.Context, id string) (*Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.vendors[id]; ok {
		p := v.Party
		return &p, nil
	}
	if c, ok := r.customers[id]; ok {
		p := c.Party
		return &p, nil
	}
	return nil, ErrPartyNotFound
}

func (r *memoryRepository) GetPartyByEmail(ctx context.Context, email string) (*Party, error) {
	r.mu.RLock()
	id, ok := r.emails[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrPartyNotFound
	}
	return r.GetParty(ctx, id)
}

func (r *memoryRepository) GetVendor(_ context.Context, id string) (*Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vendors[id]
	if !ok {
		return nil, ErrVendorNotFound
	}
	return cloneVendor(v), nil
}

func (r *memoryRepository) GetCustomer(_ context.Context, id string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return cloneCustomer(c), nil
}

func (r *memoryRepository) ListVendors(_ context.Context, filter VendorFilter) ([]*Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Vendor{}
	for _, v := range r.vendors {
		if matchesVendor(v, filter) {
			out = append(out, cloneVendor(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesVendor(v *Vendor, filter VendorFilter) bool {
	if cat := strings.TrimSpace(filter.Category); cat != "" {
		found := false
		for _, c := range v.Categories {
			if strings.EqualFold(c, cat) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	kw := strings.ToLower(strings.TrimSpace(filter.Query))
	if kw == "" {
		return true
	}
	if strings.Contains(strings.ToLower(v.Name), kw) || strings.Contains(strings.ToLower(v.Description), kw) {
		return true
	}
	for _, c := range v.Categories {
		if strings.Contains(strings.ToLower(c), kw) {
			return true
		}
	}
	return false
}

func (r *memoryRepository) UpdateVendor(_ context.Context, v *Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.vendors[v.ID]
	if !ok {
		return ErrVendorNotFound
	}
	updated := cloneVendor(v)
	// Identity fields are not editable through an update.
	updated.Role = existing.Role
	updated.Email = existing.Email
	updated.PasswordHash = existing.PasswordHash
	updated.CreatedAt = existing.CreatedAt
	r.vendors[v.ID] = updated
	return nil
}

func (r *memoryRepository) AddAddress(_ context.Context, customerID string, addr *Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[customerID]
	if !ok {
		return ErrCustomerNotFound
	}
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}

	if len(c.Addresses) == 0 || addr.IsDefault {
		addr.IsDefault = true
		rest := make([]Address, 0, len(c.Addresses)+1)
		rest = append(rest, *addr)
		for _, a := range c.Addresses {
			a.IsDefault = false
			rest = append(rest, a)
		}
		c.Addresses = rest
		return nil
	}

	c.Addresses = append(c.Addresses, *addr)
	return nil
}

func (r *memoryRepository) RemoveAddress(_ context.Context, customerID, addressID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[customerID]
	if !ok {
		return ErrCustomerNotFound
	}
	for i, a := range c.Addresses {
		if a.ID == addressID {
			c.Addresses = append(c.Addresses[:i:i], c.Addresses[i+1:]...)
			return nil
		}
	}
	return ErrAddressNotFound
}

func (r *memoryRepository) SetDefaultAddress(_ context.Context, customerID, addressID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[customerID]
	if !ok {
		return ErrCustomerNotFound
	}
	found := false
	for _, a := range c.Addresses {
		if a.ID == addressID {
			found = true
			break
		}
	}
	if !found {
		return ErrAddressNotFound
	}
	for i := range c.Addresses {
		c.Addresses[i].IsDefault = c.Addresses[i].ID == addressID
	}
	return nil
}
