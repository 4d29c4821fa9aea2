package seed

import (
	"time"

	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

// Password is shared by every seeded party.
const Password = "password"

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

// Vendors returns fresh copies of the demo vendors. Live locations are stamped with at.
func Vendors(at time.Time) []*directory.Vendor {
	return []*directory.Vendor{
		{
			Party: directory.Party{
				ID: "v1", Role: directory.RoleVendor,
				Name: "Farm Fresh Vegetables", Email: "freshveg@example.com", Phone: "9876543210",
				Home: directory.Location{Latitude: 12.9716, Longitude: 77.5946, Address: "Bangalore, Karnataka"},
			},
			ServiceArea:     directory.ServiceArea{PostalCode: strPtr("560001"), RadiusKm: floatPtr(5)},
			Categories:      []string{"Vegetables", "Fruits"},
			Description:     "Fresh vegetables directly from farm",
			StatusMessage:   "Available today at 4 PM in Richmond Town",
			CurrentLocation: &directory.LiveLocation{Latitude: 12.9746, Longitude: 77.5993, LastUpdated: at},
		},
		{
			Party: directory.Party{
				ID: "v2", Role: directory.RoleVendor,
				Name: "Organic Fruits", Email: "organicfruits@example.com", Phone: "8765432109",
				Home: directory.Location{Latitude: 12.9783, Longitude: 77.6408, Address: "Bangalore, Karnataka"},
			},
			ServiceArea:     directory.ServiceArea{PostalCode: strPtr("560008"), RadiusKm: floatPtr(3)},
			Categories:      []string{"Fruits", "Organic"},
			Description:     "Premium organic fruits",
			StatusMessage:   "Will visit Indiranagar tomorrow at 2 PM",
			CurrentLocation: &directory.LiveLocation{Latitude: 12.9780, Longitude: 77.6400, LastUpdated: at},
		},
	}
}

func Customers() []*directory.Customer {
	return []*directory.Customer{
		{
			Party: directory.Party{
				ID: "c1", Role: directory.RoleCustomer,
				Name: "Rahul Kumar", Email: "rahul@example.com", Phone: "7654321098",
				Home: directory.Location{Latitude: 12.9716, Longitude: 77.5946, Address: "Richmond Town, Bangalore"},
			},
			Addresses: []directory.Address{
				{ID: "a1", Title: "Home", Address: "123, Richmond Road, Richmond Town", PostalCode: "560001", IsDefault: true},
				{ID: "a2", Title: "Office", Address: "456, MG Road, Central Bangalore", PostalCode: "560001"},
			},
		},
		{
			Party: directory.Party{
				ID: "c2", Role: directory.RoleCustomer,
				Name: "Priya Singh", Email: "priya@example.com", Phone: "6543210987",
				Home: directory.Location{Latitude: 12.9783, Longitude: 77.6408, Address: "Indiranagar, Bangalore"},
			},
			Addresses: []directory.Address{
				{ID: "a3", Title: "Home", Address: "789, 12th Main, Indiranagar", PostalCode: "560038", IsDefault: true},
			},
		},
	}
}

// Slots carry their demo counters as-is, including places held by
// bookings that are not part of the fixture set.
func Slots() []*slot.TimeSlot {
	return []*slot.TimeSlot{
		{ID: "ts1", VendorID: "v1", Date: "2025-05-18", StartTime: "08:00", EndTime: "10:00", MaxBookings: 10, CurrentBookings: 3},
		{ID: "ts2", VendorID: "v1", Date: "2025-05-18", StartTime: "16:00", EndTime: "18:00", MaxBookings: 10, CurrentBookings: 5},
		{ID: "ts3", VendorID: "v1", Date: "2025-05-19", StartTime: "09:00", EndTime: "11:00", MaxBookings: 10, CurrentBookings: 2},
		{ID: "ts4", VendorID: "v2", Date: "2025-05-18", StartTime: "10:00", EndTime: "12:00", MaxBookings: 8, CurrentBookings: 6},
		{ID: "ts5", VendorID: "v2", Date: "2025-05-19", StartTime: "14:00", EndTime: "16:00", MaxBookings: 8, CurrentBookings: 1},
	}
}

func Bookings() []*booking.Booking {
	return []*booking.Booking{
		{
			ID: "b1", CustomerID: "c1", VendorID: "v1", TimeSlotID: "ts2", Status: booking.StatusConfirmed,
			CreatedAt: time.Date(2025, 5, 17, 10, 30, 0, 0, time.UTC),
		},
		{
			ID: "b2", CustomerID: "c2", VendorID: "v2", TimeSlotID: "ts4", Status: booking.StatusConfirmed,
			CreatedAt: time.Date(2025, 5, 17, 9, 15, 0, 0, time.UTC),
		},
	}
}
