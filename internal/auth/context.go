package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// GetUserID returns the authenticated party's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserRole returns the authenticated party's role or empty string.
func GetUserRole(c *gin.Context) string {
	return c.GetString(ctxUserRole)
}
