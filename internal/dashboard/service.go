// Package dashboard assembles the read-only views shown to vendors and customers.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/calendar"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

// SlotReader is the read side of the slot registry.
type SlotReader interface {
	ListByVendorAndDate(ctx context.Context, vendorID, date string) ([]*slot.TimeSlot, error)
	List(ctx context.Context, filter slot.Filter) ([]*slot.TimeSlot, error)
}

// BookingReader is the read side of the booking ledger.
type BookingReader interface {
	ListByCustomer(ctx context.Context, customerID string, status booking.Status) ([]*booking.Booking, error)
	ListByVendor(ctx context.Context, vendorID string, status booking.Status) ([]*booking.Booking, error)
}

// PartyReader is the read side of the directory.
type PartyReader interface {
	GetVendor(ctx context.Context, id string) (*directory.Vendor, error)
	GetCustomer(ctx context.Context, id string) (*directory.Customer, error)
}

type Service interface {
	VendorSchedule(ctx context.Context, vendorID, date string) ([]SlotView, error)
	VendorDashboard(ctx context.Context, vendorID string, now time.Time) (*VendorDashboard, error)
	VendorBookings(ctx context.Context, vendorID string, now time.Time, search string) (*VendorBuckets, error)
	CustomerBookings(ctx context.Context, customerID string) (*CustomerBuckets, error)
	VendorDetail(ctx context.Context, vendorID, customerID, from string, days int) (*VendorDetail, error)
}

type service struct {
	slots    SlotReader
	bookings BookingReader
	parties  PartyReader
	logger   *zap.Logger
}

func NewService(slots SlotReader, bookings BookingReader, parties PartyReader, logger *zap.Logger) Service {
	return &service{
		slots:    slots,
		bookings: bookings,
		parties:  parties,
		logger:   logger,
	}
}

func (s *service) VendorSchedule(ctx context.Context, vendorID, date string) ([]SlotView, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := s.parties.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByVendorAndDate(ctx, vendorID, date)
	if err != nil {
		return nil, err
	}
	return slotViews(slots), nil
}

func (s *service) VendorDashboard(ctx context.Context, vendorID string, now time.Time) (*VendorDashboard, error) {
	vendor, err := s.parties.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	today := calendar.DateOf(now)

	slots, err := s.slots.ListByVendorAndDate(ctx, vendorID, today)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.ListByVendor(ctx, vendorID, "")
	if err != nil {
		return nil, err
	}
	views, err := s.vendorViews(ctx, all)
	if err != nil {
		return nil, err
	}

	out := &VendorDashboard{
		Vendor:   vendor,
		Date:     today,
		Slots:    slotViews(slots),
		Bookings: []BookingView{},
	}
	for _, v := range views {
		if v.Slot == nil || v.Slot.Date != today {
			continue
		}
		out.Bookings = append(out.Bookings, v)
		if v.Booking.Status.Active() {
			out.Stats.ActiveBookings++
		}
	}
	for _, ts := range slots {
		out.Stats.Slots++
		out.Stats.BookedPlaces += ts.CurrentBookings
		out.Stats.AvailablePlaces += ts.Available()
	}
	return out, nil
}

func (s *service) VendorBookings(ctx context.Context, vendorID string, now time.Time, search string) (*VendorBuckets, error) {
	if _, err := s.parties.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	all, err := s.bookings.ListByVendor(ctx, vendorID, "")
	if err != nil {
		return nil, err
	}
	views, err := s.vendorViews(ctx, all)
	if err != nil {
		return nil, err
	}

	today := calendar.DateOf(now)
	tomorrow := calendar.AddDays(today, 1)
	search = strings.ToLower(strings.TrimSpace(search))

	out := &VendorBuckets{
		Today:    []BookingView{},
		Tomorrow: []BookingView{},
		Upcoming: []BookingView{},
		Past:     []BookingView{},
	}
	for _, v := range views {
		if search != "" && !matchesCustomer(v.Customer, search) {
			continue
		}
		switch {
		case v.Slot == nil || v.Slot.Date < today:
			out.Past = append(out.Past, v)
		case v.Slot.Date == today:
			out.Today = append(out.Today, v)
		case v.Slot.Date == tomorrow:
			out.Tomorrow = append(out.Tomorrow, v)
		default:
			out.Upcoming = append(out.Upcoming, v)
		}
	}
	// Past reads newest first.
	sort.SliceStable(out.Past, func(i, j int) bool {
		return slotKey(out.Past[i].Slot) > slotKey(out.Past[j].Slot)
	})
	return out, nil
}

func (s *service) CustomerBookings(ctx context.Context, customerID string) (*CustomerBuckets, error) {
	if _, err := s.parties.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	all, err := s.bookings.ListByCustomer(ctx, customerID, "")
	if err != nil {
		return nil, err
	}
	views, err := s.customerViews(ctx, all)
	if err != nil {
		return nil, err
	}

	out := &CustomerBuckets{
		Upcoming:  []BookingView{},
		Past:      []BookingView{},
		Cancelled: []BookingView{},
	}
	for _, v := range views {
		switch {
		case v.Booking.Status.Active():
			out.Upcoming = append(out.Upcoming, v)
		case v.Booking.Status == booking.StatusCompleted:
			out.Past = append(out.Past, v)
		default:
			out.Cancelled = append(out.Cancelled, v)
		}
	}
	return out, nil
}

func (s *service) VendorDetail(ctx context.Context, vendorID, customerID, from string, days int) (*VendorDetail, error) {
	if _, err := calendar.ParseDate(from); err != nil {
		return nil, ErrInvalidDate
	}
	if days < 1 || days > MaxDetailDays {
		return nil, ErrInvalidRange
	}
	vendor, err := s.parties.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.List(ctx, slot.Filter{
		VendorID: vendorID,
		DateFrom: from,
		DateTo:   calendar.AddDays(from, days-1),
	})
	if err != nil {
		return nil, err
	}

	out := &VendorDetail{
		Vendor:   vendor,
		From:     from,
		Days:     days,
		Slots:    slotViews(slots),
		Bookings: []BookingView{},
	}
	if customerID == "" {
		return out, nil
	}

	mine, err := s.bookings.ListByCustomer(ctx, customerID, "")
	if err != nil {
		return nil, err
	}
	withVendor := make([]*booking.Booking, 0, len(mine))
	for _, b := range mine {
		if b.VendorID == vendorID {
			withVendor = append(withVendor, b)
		}
	}
	slotByID, err := s.slotIndex(ctx, withVendor)
	if err != nil {
		return nil, err
	}
	for _, b := range withVendor {
		out.Bookings = append(out.Bookings, BookingView{Booking: b, Slot: slotByID[b.TimeSlotID], Vendor: vendor})
	}
	sortViews(out.Bookings)
	return out, nil
}

// vendorViews joins bookings with their slot and customer, ordered by slot start.
func (s *service) vendorViews(ctx context.Context, bookings []*booking.Booking) ([]BookingView, error) {
	slotByID, err := s.slotIndex(ctx, bookings)
	if err != nil {
		return nil, err
	}
	customers := make(map[string]*directory.Customer)
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		c, ok := customers[b.CustomerID]
		if !ok {
			c, err = s.parties.GetCustomer(ctx, b.CustomerID)
			if err != nil && !errors.Is(err, directory.ErrCustomerNotFound) {
				return nil, err
			}
			customers[b.CustomerID] = c
		}
		views = append(views, BookingView{Booking: b, Slot: slotByID[b.TimeSlotID], Customer: c})
	}
	sortViews(views)
	return views, nil
}

// customerViews joins bookings with their slot and vendor, ordered by slot start.
func (s *service) customerViews(ctx context.Context, bookings []*booking.Booking) ([]BookingView, error) {
	slotByID, err := s.slotIndex(ctx, bookings)
	if err != nil {
		return nil, err
	}
	vendors := make(map[string]*directory.Vendor)
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		v, ok := vendors[b.VendorID]
		if !ok {
			v, err = s.parties.GetVendor(ctx, b.VendorID)
			if err != nil && !errors.Is(err, directory.ErrVendorNotFound) {
				return nil, err
			}
			vendors[b.VendorID] = v
		}
		views = append(views, BookingView{Booking: b, Slot: slotByID[b.TimeSlotID], Vendor: v})
	}
	sortViews(views)
	return views, nil
}

// slotIndex loads the slots referenced by bookings in one query.
// Slots that no longer exist are simply absent from the map.
func (s *service) slotIndex(ctx context.Context, bookings []*booking.Booking) (map[string]*slot.TimeSlot, error) {
	out := make(map[string]*slot.TimeSlot)
	if len(bookings) == 0 {
		return out, nil
	}
	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.TimeSlotID]; ok {
			continue
		}
		seen[b.TimeSlotID] = struct{}{}
		ids = append(ids, b.TimeSlotID)
	}
	slots, err := s.slots.List(ctx, slot.Filter{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, ts := range slots {
		out[ts.ID] = ts
	}
	return out, nil
}

func slotViews(slots []*slot.TimeSlot) []SlotView {
	out := make([]SlotView, 0, len(slots))
	for _, ts := range slots {
		out = append(out, newSlotView(ts))
	}
	return out
}

// slotKey orders slots by date then start time. Missing slots sort first.
func slotKey(ts *slot.TimeSlot) string {
	if ts == nil {
		return ""
	}
	return ts.Date + " " + ts.StartTime
}

func sortViews(views []BookingView) {
	sort.SliceStable(views, func(i, j int) bool {
		return slotKey(views[i].Slot) < slotKey(views[j].Slot)
	})
}

func matchesCustomer(c *directory.Customer, search string) bool {
	if c == nil {
		return false
	}
	for _, field := range []string{c.Name, c.Phone, c.Home.Address} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
