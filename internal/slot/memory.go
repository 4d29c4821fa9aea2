package slot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	slots map[string]*TimeSlot
	now   func() time.Time
}

// NewMemoryRepository creates an in-process slot repository. Returned slots are copies.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		slots: make(map[string]*TimeSlot),
		now:   time.Now,
	}
}

func (r *memoryRepository) Create(_ context.Context, s *TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}
	stored := *s
	r.slots[s.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s
	return &out, nil
}

func (r *memoryRepository) List(_ context.Context, filter Filter) ([]*TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids map[string]struct{}
	if filter.IDs != nil {
		ids = make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = struct{}{}
		}
	}

	out := []*TimeSlot{}
	for _, s := range r.slots {
		if filter.VendorID != "" && s.VendorID != filter.VendorID {
			continue
		}
		if ids != nil {
			if _, ok := ids[s.ID]; !ok {
				continue
			}
		}
		// YYYY-MM-DD strings order the same way as the dates they denote.
		if filter.DateFrom != "" && s.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && s.Date > filter.DateTo {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *memoryRepository) Increment(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return 0, ErrNotFound
	}
	if s.Full() {
		return 0, ErrCapacityExceeded
	}
	s.CurrentBookings++
	return s.CurrentBookings, nil
}

func (r *memoryRepository) Decrement(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return 0, ErrNotFound
	}
	if s.CurrentBookings > 0 {
		s.CurrentBookings--
	}
	return s.CurrentBookings, nil
}

func (r *memoryRepository) DeleteIfEmpty(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return ErrNotFound
	}
	if s.CurrentBookings > 0 {
		return ErrHasBookings
	}
	delete(r.slots, id)
	return nil
}
