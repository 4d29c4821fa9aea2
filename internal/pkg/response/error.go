package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error writes err as JSON. An AppError keeps its status, message and kind;
// anything else becomes an opaque 500 and is attached to the context for the request logger.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message, Code: string(appErr.Kind)})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  string(apperror.KindInternal),
	})
}

// Abort stops the handler chain with an error of the given kind. Used by middleware.
func Abort(c *gin.Context, kind apperror.Kind, message string) {
	c.AbortWithStatusJSON(apperror.StatusFor(kind), ErrorResponse{Error: message, Code: string(kind)})
}

// BadRequest sends a 400 response for malformed input that never reached the service layer.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: string(apperror.KindValidation)})
}
