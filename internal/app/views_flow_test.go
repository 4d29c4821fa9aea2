package app_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/vendor-booking-backend/internal/booking/http"
	dashboardHttp "github.com/nekogravitycat/vendor-booking-backend/internal/dashboard/http"
	dirHttp "github.com/nekogravitycat/vendor-booking-backend/internal/directory/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
	slotHttp "github.com/nekogravitycat/vendor-booking-backend/internal/slot/http"
)

func TestDirectoryFlow(t *testing.T) {
	a := newTestApp(t)

	t.Run("Register and login", func(t *testing.T) {
		w := a.executeRequest("POST", "/v1/auth/register", dirHttp.RegisterRequest{
			Email: "New@Example.com", Password: "longenough", Name: "New Customer", Role: "customer",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "new@example.com", decode[dirHttp.PartyResponse](t, w).Email)

		w = a.executeRequest("POST", "/v1/auth/register", dirHttp.RegisterRequest{
			Email: "new@example.com", Password: "longenough", Name: "Again", Role: "customer",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.executeRequest("POST", "/v1/auth/login", dirHttp.LoginRequest{Email: "new@example.com", Password: "wrong-password"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/me", nil, a.login(t, "rahul@example.com"))
		require.Equal(t, http.StatusOK, w.Code)
		me := decode[dirHttp.MeResponse](t, w)
		assert.Equal(t, "c1", me.Party.ID)
		require.NotNil(t, me.Customer)
		assert.Nil(t, me.Vendor)
		assert.Len(t, me.Customer.Addresses, 2)
	})

	t.Run("List and filter vendors", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/vendors?category=organic", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[response.ListResponse[dirHttp.VendorResponse]](t, w)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, "v2", list.Items[0].ID)
	})

	t.Run("Nearby vendors", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/vendors/nearby?lat=12.9746&long=77.5993&radius_km=2", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		list := decode[response.ListResponse[dirHttp.NearbyVendorResponse]](t, w)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, "v1", list.Items[0].ID)

		w = a.executeRequest("GET", "/v1/vendors/nearby?lat=12.9746", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Vendor updates own status only", func(t *testing.T) {
		vendorToken := a.login(t, "freshveg@example.com")
		w := a.executeRequest("PUT", "/v1/vendors/v1/status", dirHttp.UpdateStatusRequest{Message: "At MG Road till 6"}, vendorToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "At MG Road till 6", decode[dirHttp.VendorResponse](t, w).StatusMessage)

		w = a.executeRequest("PUT", "/v1/vendors/v2/status", dirHttp.UpdateStatusRequest{Message: "hijack"}, vendorToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Customer addresses", func(t *testing.T) {
		token := a.login(t, "priya@example.com")
		w := a.executeRequest("POST", "/v1/customers/c2/addresses", dirHttp.AddAddressRequest{
			Title: "Work", Address: "1, Residency Road", PostalCode: "560025",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		c := decode[dirHttp.CustomerResponse](t, w)
		require.Len(t, c.Addresses, 2)

		var workID string
		for _, addr := range c.Addresses {
			if addr.Title == "Work" {
				workID = addr.ID
				assert.False(t, addr.IsDefault)
			}
		}
		require.NotEmpty(t, workID)

		w = a.executeRequest("PUT", "/v1/customers/c2/addresses/"+workID+"/default", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		for _, addr := range decode[dirHttp.CustomerResponse](t, w).Addresses {
			assert.Equal(t, addr.ID == workID, addr.IsDefault, addr.ID)
		}

		w = a.executeRequest("DELETE", "/v1/customers/c2/addresses/missing", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = a.executeRequest("GET", "/v1/customers/c2", nil, a.login(t, "rahul@example.com"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestVendorViews(t *testing.T) {
	a := newTestApp(t)
	vendorToken := a.login(t, "freshveg@example.com")
	customerToken := a.login(t, "priya@example.com")

	w := a.executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{SlotID: "ts3"}, customerToken)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("Schedule shows availability", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/vendors/v1/slots?date=2025-05-18", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[response.ListResponse[slotHttp.SlotResponse]](t, w)
		require.Equal(t, 2, list.Total)
		assert.Equal(t, "ts1", list.Items[0].ID)
		assert.Equal(t, 7, list.Items[0].AvailableSlots)
		assert.Equal(t, 5, list.Items[1].AvailableSlots)

		w = a.executeRequest("GET", "/v1/vendors/v1/slots?date=May-18", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Dashboard for today", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/vendors/v1/dashboard", nil, vendorToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := decode[dashboardHttp.VendorDashboardResponse](t, w)
		assert.Equal(t, "2025-05-18", d.Date)
		assert.Len(t, d.Slots, 2)
		require.Len(t, d.Bookings, 1)
		require.NotNil(t, d.Bookings[0].Customer)
		assert.Equal(t, "Rahul Kumar", d.Bookings[0].Customer.Name)
		assert.Equal(t, 8, d.Stats.BookedPlaces)

		w = a.executeRequest("GET", "/v1/vendors/v1/dashboard", nil, customerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Grouped bookings", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/vendors/v1/bookings/grouped", nil, vendorToken)
		require.Equal(t, http.StatusOK, w.Code)
		g := decode[dashboardHttp.VendorBucketsResponse](t, w)
		assert.Len(t, g.Today, 1)
		assert.Len(t, g.Tomorrow, 1)
		assert.Empty(t, g.Past)

		w = a.executeRequest("GET", "/v1/vendors/v1/bookings/grouped?now=2025-05-19T09:00:00Z&q=priya", nil, vendorToken)
		require.Equal(t, http.StatusOK, w.Code)
		g = decode[dashboardHttp.VendorBucketsResponse](t, w)
		assert.Len(t, g.Today, 1)
		assert.Empty(t, g.Past)
	})

	t.Run("Customer views", func(t *testing.T) {
		w := a.executeRequest("GET", "/v1/customers/c2/bookings/grouped", nil, customerToken)
		require.Equal(t, http.StatusOK, w.Code)
		g := decode[dashboardHttp.CustomerBucketsResponse](t, w)
		assert.Len(t, g.Upcoming, 2)

		w = a.executeRequest("GET", "/v1/vendors/v1/detail?from=2025-05-18&days=2", nil, customerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := decode[dashboardHttp.VendorDetailResponse](t, w)
		assert.Len(t, d.Slots, 3)
		require.Len(t, d.Bookings, 1)
		assert.Equal(t, "ts3", d.Bookings[0].Booking.TimeSlotID)

		w = a.executeRequest("GET", "/v1/vendors/v1/detail?days=90", nil, customerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	a := newTestApp(t)

	w := a.executeRequest("GET", "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{SlotID: "ts5"}, a.login(t, "rahul@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.executeRequest("GET", "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `vendor_booking_booking_operations_total{op="create",outcome="success"} 1`))
	assert.True(t, strings.Contains(body, `route="/v1/bookings"`))
}
