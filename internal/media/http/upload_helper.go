package http

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/media"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

// UploadConfig describes one multipart file field.
type UploadConfig struct {
	FormFieldName string // default: "file"
	MaxSizeBytes  int64  // 0 = no limit
}

// openUpload returns the uploaded file for the configured field, or writes an error response and returns nil.
func openUpload(c *gin.Context, config UploadConfig) io.ReadCloser {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required")
		return nil
	}
	if config.MaxSizeBytes > 0 && fileHeader.Size > config.MaxSizeBytes {
		response.Error(c, media.ErrTooLarge)
		return nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, fmt.Errorf("failed to open upload: %w", err))
		return nil
	}
	return f
}
