package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the read-only vendor and customer views.
// selfMiddleware restricts a route to the party named by :id.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, selfMiddleware gin.HandlerFunc) {
	vendors := g.Group("/vendors/:id")
	{
		vendors.GET("/slots", h.Schedule)
		vendors.GET("/detail", authMiddleware, h.VendorDetail)
		vendors.GET("/dashboard", authMiddleware, selfMiddleware, h.Dashboard)
		vendors.GET("/bookings/grouped", authMiddleware, selfMiddleware, h.VendorBookings)
	}

	g.GET("/customers/:id/bookings/grouped", authMiddleware, selfMiddleware, h.CustomerBookings)
}
