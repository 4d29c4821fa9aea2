package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/media"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/response"
)

type Handler struct {
	service media.Service
}

func NewHandler(service media.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) UploadPhoto(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}

	f := openUpload(c, UploadConfig{MaxSizeBytes: media.MaxUploadBytes})
	if f == nil {
		return
	}
	defer f.Close()

	if err := h.service.SetVendorPhoto(c.Request.Context(), auth.GetUserID(c), uri.ID, f); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PhotoUploadResponse{
		Message:      "photo uploaded successfully",
		URL:          photoURL(uri.ID),
		ThumbnailURL: thumbnailURL(uri.ID),
	})
}

func (h *Handler) ServePhoto(c *gin.Context) {
	h.serve(c, media.VariantFull)
}

func (h *Handler) ServeThumbnail(c *gin.Context) {
	h.serve(c, media.VariantThumb)
}

func (h *Handler) serve(c *gin.Context, variant media.Variant) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}

	stream, err := h.service.VendorPhoto(c.Request.Context(), uri.ID, variant)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	// Headers are already sent, so a copy failure cannot be reported.
	_, _ = io.Copy(c.Writer, stream)
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid vendor id")
		return
	}

	if err := h.service.DeleteVendorPhoto(c.Request.Context(), auth.GetUserID(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
