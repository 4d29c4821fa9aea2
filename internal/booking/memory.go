package booking

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	now      func() time.Time
}

// NewMemoryRepository creates an in-process booking repository. Returned bookings are copies.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		bookings: make(map[string]*Booking),
		now:      time.Now,
	}
}

func (r *memoryRepository) hasActiveLocked(customerID, slotID string) bool {
	for _, b := range r.bookings {
		if b.CustomerID == customerID && b.TimeSlotID == slotID && b.Status.Active() {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.Status.Active() && r.hasActiveLocked(b.CustomerID, b.TimeSlotID) {
		return ErrDuplicate
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now().UTC()
	}
	b.UpdatedAt = b.CreatedAt

	stored := *b
	r.bookings[b.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (r *memoryRepository) List(_ context.Context, filter Filter) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Booking{}
	for _, b := range r.bookings {
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.VendorID != "" && b.VendorID != filter.VendorID {
			continue
		}
		if filter.SlotIDs != nil && !slices.Contains(filter.SlotIDs, b.TimeSlotID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, b.Status) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) HasActive(_ context.Context, customerID, slotID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasActiveLocked(customerID, slotID), nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, from []Status, to Status) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !slices.Contains(from, b.Status) {
		return nil, ErrStatusMismatch
	}
	b.Status = to
	b.UpdatedAt = r.now().UTC()

	out := *b
	return &out, nil
}
