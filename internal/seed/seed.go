// Package seed loads the demo vendors, customers, slots and bookings.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

// Repositories are the stores the fixtures are written to.
type Repositories struct {
	Directory directory.Repository
	Slots     slot.Repository
	Bookings  booking.Repository
}

// Load writes the fixtures unless v1 already exists, and reports whether it wrote anything.
// Rows go straight to the repositories so that ids and demo counters are kept.
func Load(ctx context.Context, repos Repositories, hasher auth.PasswordHasher, logger *zap.Logger, now time.Time) (bool, error) {
	if _, err := repos.Directory.GetParty(ctx, "v1"); err == nil {
		logger.Info("fixtures already present, skipping seed")
		return false, nil
	} else if !errors.Is(err, directory.ErrPartyNotFound) {
		return false, fmt.Errorf("check existing fixtures: %w", err)
	}

	hash, err := hasher.Hash(Password)
	if err != nil {
		return false, fmt.Errorf("hash fixture password: %w", err)
	}

	vendors, customers, slots, bookings := Vendors(now), Customers(), Slots(), Bookings()

	for _, v := range vendors {
		v.PasswordHash = hash
		if err := repos.Directory.CreateVendor(ctx, v); err != nil {
			return false, fmt.Errorf("seed vendor %s: %w", v.ID, err)
		}
	}
	for _, c := range customers {
		c.PasswordHash = hash
		if err := repos.Directory.CreateCustomer(ctx, c); err != nil {
			return false, fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}
	for _, ts := range slots {
		if err := repos.Slots.Create(ctx, ts); err != nil {
			return false, fmt.Errorf("seed slot %s: %w", ts.ID, err)
		}
	}
	for _, b := range bookings {
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return false, fmt.Errorf("seed booking %s: %w", b.ID, err)
		}
	}

	logger.Info("fixtures loaded",
		zap.Int("vendors", len(vendors)),
		zap.Int("customers", len(customers)),
		zap.Int("slots", len(slots)),
		zap.Int("bookings", len(bookings)),
	)
	return true, nil
}
