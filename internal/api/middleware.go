package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

// RequireSelf admits only the party whose id is in the given path parameter.
// It MUST be used after auth.AuthRequired.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		partyID := auth.GetUserID(c)
		if partyID == "" {
			response.Abort(c, apperror.KindUnauthorized, "unauthorized")
			return
		}
		if c.Param(param) != partyID {
			response.Abort(c, apperror.KindForbidden, "forbidden: not your account")
			return
		}
		c.Next()
	}
}
