package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

var now = time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	slots    slot.Service
	bookings booking.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dir := directory.NewMemoryRepository()
	require.NoError(t, dir.CreateVendor(ctx, &directory.Vendor{
		Party: directory.Party{ID: "v1", Role: directory.RoleVendor, Name: "Fresh Fruits Co.", Email: "v1@example.com"},
	}))
	require.NoError(t, dir.CreateVendor(ctx, &directory.Vendor{
		Party: directory.Party{ID: "v2", Role: directory.RoleVendor, Name: "Veggie Delight", Email: "v2@example.com"},
	}))
	require.NoError(t, dir.CreateCustomer(ctx, &directory.Customer{
		Party: directory.Party{
			ID: "c1", Role: directory.RoleCustomer, Name: "John Doe", Email: "c1@example.com",
			Phone: "555-123-4567", Home: directory.Location{Address: "123 Main St, Anytown"},
		},
	}))
	require.NoError(t, dir.CreateCustomer(ctx, &directory.Customer{
		Party: directory.Party{
			ID: "c2", Role: directory.RoleCustomer, Name: "Jane Smith", Email: "c2@example.com",
			Phone: "555-987-6543", Home: directory.Location{Address: "456 Elm St, Othertown"},
		},
	}))

	slotRepo := slot.NewMemoryRepository()
	for _, ts := range []*slot.TimeSlot{
		{ID: "yesterday", VendorID: "v1", Date: "2025-05-17", StartTime: "09:00", EndTime: "10:00", MaxBookings: 5},
		{ID: "today-late", VendorID: "v1", Date: "2025-05-18", StartTime: "16:00", EndTime: "18:00", MaxBookings: 10, CurrentBookings: 5},
		{ID: "today-early", VendorID: "v1", Date: "2025-05-18", StartTime: "08:00", EndTime: "10:00", MaxBookings: 3},
		{ID: "tomorrow", VendorID: "v1", Date: "2025-05-19", StartTime: "09:00", EndTime: "11:00", MaxBookings: 5},
		{ID: "next-week", VendorID: "v1", Date: "2025-05-25", StartTime: "09:00", EndTime: "11:00", MaxBookings: 5},
		{ID: "v2-today", VendorID: "v2", Date: "2025-05-18", StartTime: "10:00", EndTime: "12:00", MaxBookings: 5},
	} {
		require.NoError(t, slotRepo.Create(ctx, ts))
	}

	slots := slot.NewService(slotRepo, dir, zap.NewNop())
	bookings := booking.NewService(booking.NewMemoryRepository(), slots, slot.NewMemoryLocker(), dir, zap.NewNop())

	return &fixture{
		svc:      NewService(slots, bookings, dir, zap.NewNop()),
		slots:    slots,
		bookings: bookings,
	}
}

func (f *fixture) book(t *testing.T, customerID, slotID string) *booking.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), customerID, booking.CreateRequest{CustomerID: customerID, SlotID: slotID})
	require.NoError(t, err)
	return b
}

func bookingIDs(views []BookingView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Booking.TimeSlotID+"/"+v.Booking.CustomerID)
	}
	return out
}

func TestVendorSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	views, err := f.svc.VendorSchedule(ctx, "v1", "2025-05-18")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "today-early", views[0].Slot.ID)
	assert.Equal(t, 3, views[0].AvailableSlots)
	assert.Equal(t, "today-late", views[1].Slot.ID)
	assert.Equal(t, 5, views[1].AvailableSlots)

	_, err = f.svc.VendorSchedule(ctx, "ghost", "2025-05-18")
	assert.ErrorIs(t, err, directory.ErrVendorNotFound)

	_, err = f.svc.VendorSchedule(ctx, "v1", "18/05/2025")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestVendorDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "c1", "today-late")
	f.book(t, "c2", "today-early")
	f.book(t, "c1", "tomorrow")
	f.book(t, "c2", "v2-today")

	d, err := f.svc.VendorDashboard(ctx, "v1", now)
	require.NoError(t, err)
	assert.Equal(t, "Fresh Fruits Co.", d.Vendor.Name)
	assert.Equal(t, "2025-05-18", d.Date)
	require.Len(t, d.Slots, 2)

	assert.Equal(t, []string{"today-early/c2", "today-late/c1"}, bookingIDs(d.Bookings))
	require.NotNil(t, d.Bookings[0].Customer)
	assert.Equal(t, "Jane Smith", d.Bookings[0].Customer.Name)

	assert.Equal(t, DashboardStats{Slots: 2, BookedPlaces: 7, AvailablePlaces: 6, ActiveBookings: 2}, d.Stats)
}

func TestVendorBookingsBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "c1", "yesterday")
	f.book(t, "c1", "today-late")
	f.book(t, "c2", "tomorrow")
	f.book(t, "c2", "next-week")

	buckets, err := f.svc.VendorBookings(ctx, "v1", now, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"today-late/c1"}, bookingIDs(buckets.Today))
	assert.Equal(t, []string{"tomorrow/c2"}, bookingIDs(buckets.Tomorrow))
	assert.Equal(t, []string{"next-week/c2"}, bookingIDs(buckets.Upcoming))
	assert.Equal(t, []string{"yesterday/c1"}, bookingIDs(buckets.Past))

	t.Run("search by phone", func(t *testing.T) {
		buckets, err := f.svc.VendorBookings(ctx, "v1", now, "987")
		require.NoError(t, err)
		assert.Empty(t, buckets.Today)
		assert.Empty(t, buckets.Past)
		assert.Len(t, buckets.Tomorrow, 1)
		assert.Len(t, buckets.Upcoming, 1)
	})

	t.Run("search by address is case insensitive", func(t *testing.T) {
		buckets, err := f.svc.VendorBookings(ctx, "v1", now, "MAIN st")
		require.NoError(t, err)
		assert.Len(t, buckets.Today, 1)
		assert.Len(t, buckets.Past, 1)
		assert.Empty(t, buckets.Tomorrow)
	})
}

func TestCustomerBookingsBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := f.book(t, "c1", "yesterday")
	f.book(t, "c1", "tomorrow")
	f.book(t, "c1", "v2-today")
	dropped := f.book(t, "c1", "next-week")

	_, err := f.bookings.MarkCompleted(ctx, done.ID)
	require.NoError(t, err)
	_, err = f.bookings.Cancel(ctx, dropped.ID, "c1")
	require.NoError(t, err)

	buckets, err := f.svc.CustomerBookings(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v2-today/c1", "tomorrow/c1"}, bookingIDs(buckets.Upcoming))
	assert.Equal(t, []string{"yesterday/c1"}, bookingIDs(buckets.Past))
	assert.Equal(t, []string{"next-week/c1"}, bookingIDs(buckets.Cancelled))
	require.NotNil(t, buckets.Upcoming[0].Vendor)
	assert.Equal(t, "Veggie Delight", buckets.Upcoming[0].Vendor.Name)

	_, err = f.svc.CustomerBookings(ctx, "ghost")
	assert.ErrorIs(t, err, directory.ErrCustomerNotFound)
}

func TestCancelledBookingSurvivesSlotDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.book(t, "c1", "next-week")
	_, err := f.bookings.Cancel(ctx, b.ID, "v1")
	require.NoError(t, err)
	require.NoError(t, f.slots.Delete(ctx, "v1", "next-week"))

	buckets, err := f.svc.CustomerBookings(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, buckets.Cancelled, 1)
	assert.Nil(t, buckets.Cancelled[0].Slot)

	vb, err := f.svc.VendorBookings(ctx, "v1", now, "")
	require.NoError(t, err)
	require.Len(t, vb.Past, 1)
	assert.Nil(t, vb.Past[0].Slot)
}

func TestVendorDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "c1", "tomorrow")
	f.book(t, "c1", "v2-today")
	f.book(t, "c2", "today-late")

	d, err := f.svc.VendorDetail(ctx, "v1", "c1", "2025-05-18", 7)
	require.NoError(t, err)
	assert.Equal(t, "v1", d.Vendor.ID)

	ids := make([]string, 0, len(d.Slots))
	for _, v := range d.Slots {
		ids = append(ids, v.Slot.ID)
	}
	assert.Equal(t, []string{"today-early", "today-late", "tomorrow", "next-week"}, ids)
	assert.Equal(t, []string{"tomorrow/c1"}, bookingIDs(d.Bookings))

	anon, err := f.svc.VendorDetail(ctx, "v1", "", "2025-05-18", 1)
	require.NoError(t, err)
	assert.Len(t, anon.Slots, 2)
	assert.Empty(t, anon.Bookings)

	_, err = f.svc.VendorDetail(ctx, "v1", "c1", "2025-05-18", 0)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = f.svc.VendorDetail(ctx, "v1", "c1", "2025-05-18", MaxDetailDays+1)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = f.svc.VendorDetail(ctx, "v1", "c1", "tomorrow", 7)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
