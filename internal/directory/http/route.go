package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers auth, vendor profile and customer profile routes.
// selfMiddleware restricts a route to the party named by its :id segment.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, selfMiddleware gin.HandlerFunc) {
	// Public Routes
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// Authenticated Routes
	g.GET("/me", authMiddleware, h.Me)

	vendors := g.Group("/vendors")
	{
		vendors.GET("", h.ListVendors)
		vendors.GET("/nearby", h.NearbyVendors)
		vendors.GET("/:id", h.GetVendor)

		vendors.PATCH("/:id", authMiddleware, selfMiddleware, h.UpdateVendor)
		vendors.PUT("/:id/status", authMiddleware, selfMiddleware, h.UpdateVendorStatus)
		vendors.PUT("/:id/location", authMiddleware, selfMiddleware, h.UpdateVendorLocation)
	}

	customers := g.Group("/customers/:id")
	customers.Use(authMiddleware, selfMiddleware)
	{
		customers.GET("", h.GetCustomer)
		customers.POST("/addresses", h.AddAddress)
		customers.DELETE("/addresses/:addressId", h.RemoveAddress)
		customers.PUT("/addresses/:addressId/default", h.SetDefaultAddress)
	}
}
