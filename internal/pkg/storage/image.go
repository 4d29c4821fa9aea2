package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// ImageProcessor re-encodes uploaded pictures as bounded JPEGs.
type ImageProcessor struct {
	quality int
}

// NewImageProcessor creates a new ImageProcessor.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 80}
}

// FitJPEG decodes content, scales it down to fit maxWidth x maxHeight while
// keeping its aspect ratio, and returns it encoded as JPEG. Smaller images
// are re-encoded at their own size. EXIF orientation is applied first.
func (p *ImageProcessor) FitJPEG(content io.Reader, maxWidth, maxHeight int) ([]byte, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out image.Image = img
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		out = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, out, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
