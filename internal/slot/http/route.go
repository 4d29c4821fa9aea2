package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers slot routes. vendorMiddleware admits vendor tokens only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, vendorMiddleware gin.HandlerFunc) {
	group := g.Group("/slots")
	{
		group.GET("/:id", h.Get)

		group.POST("", authMiddleware, vendorMiddleware, h.Create)
		group.DELETE("/:id", authMiddleware, vendorMiddleware, h.Delete)
	}
}
