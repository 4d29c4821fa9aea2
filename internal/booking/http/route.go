package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. customerMiddleware admits customer
// tokens only; selfMiddleware restricts a route to the party named by :id.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, customerMiddleware, selfMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.POST("", customerMiddleware, h.Create)
		group.GET("/:id", h.Get)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/complete", h.Complete)
	}

	g.GET("/vendors/:id/bookings", authMiddleware, selfMiddleware, h.ListByVendor)
	g.GET("/customers/:id/bookings", authMiddleware, selfMiddleware, h.ListByCustomer)
}
