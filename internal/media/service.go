// Package media stores vendor storefront photos.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/storage"
)

// VendorLookup confirms the vendor a photo belongs to.
type VendorLookup interface {
	GetVendor(ctx context.Context, id string) (*directory.Vendor, error)
}

type Service interface {
	// SetVendorPhoto replaces the vendor's photo with content, stored in every variant.
	SetVendorPhoto(ctx context.Context, actorID, vendorID string, content io.Reader) error
	VendorPhoto(ctx context.Context, vendorID string, variant Variant) (io.ReadCloser, error)
	DeleteVendorPhoto(ctx context.Context, actorID, vendorID string) error
}

type service struct {
	store   storage.Storage
	imgProc *storage.ImageProcessor
	vendors VendorLookup
	logger  *zap.Logger
}

func NewService(store storage.Storage, vendors VendorLookup, logger *zap.Logger) Service {
	return &service{
		store:   store,
		imgProc: storage.NewImageProcessor(),
		vendors: vendors,
		logger:  logger,
	}
}

func (s *service) authorize(ctx context.Context, actorID, vendorID string) error {
	if _, err := s.vendors.GetVendor(ctx, vendorID); err != nil {
		return err
	}
	if actorID != vendorID {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) SetVendorPhoto(ctx context.Context, actorID, vendorID string, content io.Reader) error {
	if err := s.authorize(ctx, actorID, vendorID); err != nil {
		return err
	}

	// Read one byte past the limit to tell "exactly at" from "over".
	raw, err := io.ReadAll(io.LimitReader(content, MaxUploadBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return ErrTooLarge
	}

	// Encode every variant before writing any, so a bad image leaves the old photo intact.
	encoded := make(map[Variant][]byte, len(bounds))
	for v, b := range bounds {
		out, err := s.imgProc.FitJPEG(bytes.NewReader(raw), b[0], b[1])
		if err != nil {
			return ErrInvalidImage
		}
		encoded[v] = out
	}

	for v, data := range encoded {
		if err := s.store.Save(ctx, photoPath(vendorID, v), bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to save %s photo: %w", v, err)
		}
	}

	s.logger.Info("vendor photo updated", zap.String("vendor_id", vendorID), zap.Int("upload_bytes", len(raw)))
	return nil
}

func (s *service) VendorPhoto(ctx context.Context, vendorID string, variant Variant) (io.ReadCloser, error) {
	if _, ok := bounds[variant]; !ok {
		variant = VariantFull
	}
	rc, err := s.store.Get(ctx, photoPath(vendorID, variant))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	return rc, nil
}

func (s *service) DeleteVendorPhoto(ctx context.Context, actorID, vendorID string) error {
	if err := s.authorize(ctx, actorID, vendorID); err != nil {
		return err
	}
	for v := range bounds {
		if err := s.store.Delete(ctx, photoPath(vendorID, v)); err != nil {
			return fmt.Errorf("failed to delete %s photo: %w", v, err)
		}
	}
	return nil
}
