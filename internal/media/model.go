package media

import (
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
)

var (
	ErrPhotoNotFound    = apperror.New(apperror.KindNotFound, "vendor has no photo")
	ErrInvalidImage     = apperror.New(apperror.KindValidation, "file must be a JPEG, PNG or GIF image")
	ErrTooLarge         = apperror.New(apperror.KindValidation, "image exceeds the upload size limit")
	ErrPermissionDenied = apperror.New(apperror.KindForbidden, "only the vendor can change this photo")
)

// MaxUploadBytes bounds a single photo upload.
const MaxUploadBytes = 5 << 20

// Variant selects a stored rendition of a photo.
type Variant string

const (
	VariantFull  Variant = "full"
	VariantThumb Variant = "thumb"
)

// bounds is the largest width and height kept for each variant.
var bounds = map[Variant][2]int{
	VariantFull:  {1000, 1000},
	VariantThumb: {200, 200},
}

func photoPath(vendorID string, v Variant) string {
	return "vendors/" + vendorID + "/" + string(v) + ".jpg"
}
