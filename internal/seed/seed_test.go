package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

func TestLoadIntoMemory(t *testing.T) {
	ctx := context.Background()
	repos := Repositories{
		Directory: directory.NewMemoryRepository(),
		Slots:     slot.NewMemoryRepository(),
		Bookings:  booking.NewMemoryRepository(),
	}
	hasher := auth.NewBcryptPasswordHasher(bcrypt.MinCost)
	now := time.Date(2025, 5, 18, 8, 0, 0, 0, time.UTC)

	loaded, err := Load(ctx, repos, hasher, zap.NewNop(), now)
	require.NoError(t, err)
	assert.True(t, loaded)

	v1, err := repos.Directory.GetVendor(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "Farm Fresh Vegetables", v1.Name)
	require.NotNil(t, v1.CurrentLocation)
	assert.Equal(t, now, v1.CurrentLocation.LastUpdated)
	assert.NoError(t, hasher.Compare(v1.PasswordHash, Password))

	c1, err := repos.Directory.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, c1.Addresses, 2)
	assert.Equal(t, "a1", c1.Addresses[0].ID)
	assert.True(t, c1.Addresses[0].IsDefault)

	ts2, err := repos.Slots.GetByID(ctx, "ts2")
	require.NoError(t, err)
	assert.Equal(t, 5, ts2.CurrentBookings)

	b1, err := repos.Bookings.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, b1.Status)
	assert.Equal(t, "ts2", b1.TimeSlotID)

	again, err := Load(ctx, repos, hasher, zap.NewNop(), now)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestFixturesAreConsistent(t *testing.T) {
	slots := map[string]*slot.TimeSlot{}
	for _, ts := range Slots() {
		assert.LessOrEqual(t, ts.CurrentBookings, ts.MaxBookings, ts.ID)
		slots[ts.ID] = ts
	}
	for _, b := range Bookings() {
		ts, ok := slots[b.TimeSlotID]
		require.True(t, ok, b.ID)
		assert.Equal(t, ts.VendorID, b.VendorID, b.ID)
	}
}
