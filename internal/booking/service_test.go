package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

type fixture struct {
	svc      Service
	repo     Repository
	slots    slot.Service
	slotRepo slot.Repository
	recorder *fakeRecorder
}

type fakeRecorder struct {
	mu    sync.Mutex
	ops   map[string]int
	swept int
}

func (r *fakeRecorder) ObserveBookingOp(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op+"/"+outcome]++
}

func (r *fakeRecorder) AddSwept(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swept += n
}

func (r *fakeRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops[key]
}

func newFixture(t *testing.T, repo Repository) *fixture {
	t.Helper()
	ctx := context.Background()

	dir := directory.NewMemoryRepository()
	for _, id := range []string{"v1", "v2"} {
		require.NoError(t, dir.CreateVendor(ctx, &directory.Vendor{
			Party: directory.Party{ID: id, Name: "Vendor " + id, Email: id + "@example.com"},
		}))
	}
	for i := 1; i <= 30; i++ {
		id := fmt.Sprintf("c%d", i)
		require.NoError(t, dir.CreateCustomer(ctx, &directory.Customer{
			Party: directory.Party{ID: id, Name: "Customer " + id, Email: id + "@example.com"},
		}))
	}

	slotRepo := slot.NewMemoryRepository()
	slots := slot.NewService(slotRepo, dir, zap.NewNop())

	require.NoError(t, slotRepo.Create(ctx, &slot.TimeSlot{
		ID: "ts2", VendorID: "v1", Date: "2025-05-18", StartTime: "16:00", EndTime: "18:00",
		MaxBookings: 10, CurrentBookings: 5,
	}))
	require.NoError(t, slotRepo.Create(ctx, &slot.TimeSlot{
		ID: "solo", VendorID: "v1", Date: "2025-05-19", StartTime: "09:00", EndTime: "10:00",
		MaxBookings: 1,
	}))

	if repo == nil {
		repo = NewMemoryRepository()
	}
	rec := &fakeRecorder{ops: map[string]int{}}
	svc := NewService(repo, slots, slot.NewMemoryLocker(), dir, zap.NewNop(), WithRecorder(rec))

	return &fixture{svc: svc, repo: repo, slots: slots, slotRepo: slotRepo, recorder: rec}
}

func (f *fixture) count(t *testing.T, slotID string) int {
	t.Helper()
	ts, err := f.slots.GetByID(context.Background(), slotID)
	require.NoError(t, err)
	return ts.CurrentBookings
}

func book(t *testing.T, f *fixture, customerID, slotID string) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), customerID, CreateRequest{CustomerID: customerID, SlotID: slotID})
	require.NoError(t, err)
	return b
}

func TestCreateBookingOnPartiallyFilledSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	b := book(t, f, "c1", "ts2")
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, "v1", b.VendorID)
	assert.Equal(t, "ts2", b.TimeSlotID)
	assert.NotEmpty(t, b.ID)

	slots, err := f.slots.ListByVendorAndDate(ctx, "v1", "2025-05-18")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 6, slots[0].CurrentBookings)
	assert.Equal(t, 4, slots[0].Available())

	assert.Equal(t, 1, f.recorder.count("create/success"))
}

func TestCreateBookingErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "c2", CreateRequest{CustomerID: "c1", SlotID: "ts2"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.Create(ctx, "c1", CreateRequest{CustomerID: "c1", SlotID: "missing"})
	assert.ErrorIs(t, err, slot.ErrNotFound)

	_, err = f.svc.Create(ctx, "ghost", CreateRequest{CustomerID: "ghost", SlotID: "ts2"})
	assert.ErrorIs(t, err, directory.ErrCustomerNotFound)

	assert.Equal(t, 5, f.count(t, "ts2"), "failed requests leave the counter alone")
	assert.Equal(t, 1, f.recorder.count("create/forbidden"))
	assert.Equal(t, 2, f.recorder.count("create/not_found"))
}

func TestDuplicateActiveBooking(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := book(t, f, "c1", "ts2")

	_, err := f.svc.Create(ctx, "c1", CreateRequest{CustomerID: "c1", SlotID: "ts2"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.True(t, apperror.Is(err, apperror.KindDuplicateBooking))
	assert.Equal(t, 6, f.count(t, "ts2"))

	// After cancelling, the customer may book the slot again.
	_, err = f.svc.Cancel(ctx, first.ID, "c1")
	require.NoError(t, err)
	again := book(t, f, "c1", "ts2")
	assert.NotEqual(t, first.ID, again.ID)
	assert.Equal(t, 6, f.count(t, "ts2"))
}

func TestCapacityExceeded(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	book(t, f, "c1", "solo")
	_, err := f.svc.Create(ctx, "c2", CreateRequest{CustomerID: "c2", SlotID: "solo"})
	assert.ErrorIs(t, err, slot.ErrCapacityExceeded)
	assert.Equal(t, 1, f.count(t, "solo"))

	bookings, err := f.svc.ListByCustomer(ctx, "c2", "")
	require.NoError(t, err)
	assert.Empty(t, bookings, "no orphaned booking against a full slot")
	assert.Equal(t, 1, f.recorder.count("create/capacity_exceeded"))
}

func TestConcurrentBookingsForLastPlace(t *testing.T) {
	for run := 0; run < 20; run++ {
		f := newFixture(t, nil)
		ctx := context.Background()

		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i, customer := range []string{"c1", "c2"} {
			wg.Add(1)
			go func(i int, customer string) {
				defer wg.Done()
				<-start
				_, errs[i] = f.svc.Create(ctx, customer, CreateRequest{CustomerID: customer, SlotID: "solo"})
			}(i, customer)
		}
		close(start)
		wg.Wait()

		var ok, full int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, slot.ErrCapacityExceeded):
				full++
			}
		}
		require.Equal(t, 1, ok, "run %d", run)
		require.Equal(t, 1, full, "run %d", run)
		require.Equal(t, 1, f.count(t, "solo"))
	}
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 30; i++ {
		wg.Add(1)
		go func(customer string) {
			defer wg.Done()
			_, _ = f.svc.Create(ctx, customer, CreateRequest{CustomerID: customer, SlotID: "ts2"})
		}(fmt.Sprintf("c%d", i))
	}
	wg.Wait()

	assert.Equal(t, 10, f.count(t, "ts2"))
	confirmed, err := f.svc.ListByVendor(ctx, "v1", StatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 5, "five places were free")
}

func TestBookThenCancelRestoresCounter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	b := book(t, f, "c1", "ts2")
	cancelled, err := f.svc.Cancel(ctx, b.ID, "c1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.count(t, "ts2"))
}

func TestDoubleCancelIsConflict(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	b := book(t, f, "c1", "ts2")
	_, err := f.svc.Cancel(ctx, b.ID, "c1")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, b.ID, "c1")
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 5, f.count(t, "ts2"), "second cancel must not decrement")
}

func TestConcurrentCancelDecrementsOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	b := book(t, f, "c1", "ts2")

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			_, err := f.svc.Cancel(ctx, b.ID, actor)
			results <- err
		}([]string{"c1", "v1"}[i%2])
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyClosed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 5, f.count(t, "ts2"))
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	b := book(t, f, "c1", "ts2")

	_, err := f.svc.Cancel(ctx, "missing", "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Cancel(ctx, b.ID, "c2")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.svc.Cancel(ctx, b.ID, "v2")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// The slot's vendor may cancel.
	_, err = f.svc.Cancel(ctx, b.ID, "v1")
	require.NoError(t, err)
}

func TestDeleteSlotAfterCancellations(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	ts, err := f.slots.Create(ctx, "v1", slot.CreateRequest{
		VendorID: "v1", Date: "2025-05-20", StartTime: "10:00", EndTime: "11:00", MaxBookings: 3,
	})
	require.NoError(t, err)

	b1 := book(t, f, "c1", ts.ID)
	b2 := book(t, f, "c2", ts.ID)

	assert.ErrorIs(t, f.slots.Delete(ctx, "v1", ts.ID), slot.ErrHasBookings)

	_, err = f.svc.Cancel(ctx, b1.ID, "c1")
	require.NoError(t, err)
	assert.ErrorIs(t, f.slots.Delete(ctx, "v1", ts.ID), slot.ErrHasBookings)

	_, err = f.svc.Cancel(ctx, b2.ID, "v1")
	require.NoError(t, err)
	require.NoError(t, f.slots.Delete(ctx, "v1", ts.ID))

	history, err := f.svc.ListByCustomer(ctx, "c1", StatusCancelled)
	require.NoError(t, err)
	assert.Len(t, history, 1, "cancelled bookings outlive their slot")
}

func TestCancelledContextLeavesNoTrace(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Create(ctx, "c1", CreateRequest{CustomerID: "c1", SlotID: "ts2"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, f.count(t, "ts2"))

	bookings, err := f.svc.ListByCustomer(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

type failingCreateRepo struct {
	Repository
}

func (failingCreateRepo) Create(context.Context, *Booking) error {
	return errors.New("disk full")
}

func TestFailedPersistReleasesPlace(t *testing.T) {
	f := newFixture(t, failingCreateRepo{Repository: NewMemoryRepository()})

	_, err := f.svc.Create(context.Background(), "c1", CreateRequest{CustomerID: "c1", SlotID: "ts2"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, 5, f.count(t, "ts2"))
	assert.Equal(t, 1, f.recorder.count("create/internal"))
}

func TestMarkCompleted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	b := book(t, f, "c1", "ts2")

	done, err := f.svc.MarkCompleted(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 6, f.count(t, "ts2"), "completion has no capacity effect")

	_, err = f.svc.MarkCompleted(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	_, err = f.svc.Cancel(ctx, b.ID, "c1")
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	_, err = f.svc.MarkCompleted(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	other := book(t, f, "c2", "ts2")
	_, err = f.svc.Cancel(ctx, other.ID, "c2")
	require.NoError(t, err)
	_, err = f.svc.MarkCompleted(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestCompleteElapsed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	onPast := book(t, f, "c1", "ts2")    // 2025-05-18
	onToday := book(t, f, "c1", "solo")  // 2025-05-19
	cancelled := book(t, f, "c2", "ts2") // 2025-05-18
	_, err := f.svc.Cancel(ctx, cancelled.ID, "c2")
	require.NoError(t, err)

	now := time.Date(2025, 5, 19, 8, 0, 0, 0, time.UTC)
	n, err := f.svc.CompleteElapsed(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetByID(ctx, onPast.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	got, err = f.svc.GetByID(ctx, onToday.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status, "slots dated today are not elapsed")

	got, err = f.svc.GetByID(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	n, err = f.svc.CompleteElapsed(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, f.recorder.swept)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	b1 := book(t, f, "c1", "ts2")
	book(t, f, "c1", "solo")
	_, err := f.svc.Cancel(ctx, b1.ID, "c1")
	require.NoError(t, err)

	all, err := f.svc.ListByCustomer(ctx, "c1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := f.svc.ListByCustomer(ctx, "c1", StatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, b1.ID, cancelled[0].ID)

	vendor, err := f.svc.ListByVendor(ctx, "v1", StatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, vendor, 1)

	_, err = f.svc.ListByVendor(ctx, "v1", "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
