package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

// AuthRequired validates "Authorization: Bearer <token>" and stores the party id and role on the context.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, apperror.KindUnauthorized, "missing Authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			response.Abort(c, apperror.KindUnauthorized, "invalid Authorization header format")
			return
		}

		claims, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			response.Abort(c, apperror.KindUnauthorized, msg)
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose token carries another role.
// It MUST be used after AuthRequired.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != role {
			response.Abort(c, apperror.KindForbidden, "forbidden: "+role+" access required")
			return
		}
		c.Next()
	}
}
