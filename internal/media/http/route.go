package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers vendor photo routes. Reads are public.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, selfMiddleware gin.HandlerFunc) {
	group := g.Group("/vendors/:id/photo")
	{
		group.GET("", h.ServePhoto)
		group.GET("/thumbnail", h.ServeThumbnail)

		group.PUT("", authMiddleware, selfMiddleware, h.UploadPhoto)
		group.DELETE("", authMiddleware, selfMiddleware, h.DeletePhoto)
	}
}
