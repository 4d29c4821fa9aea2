package slot

import (
	"context"

	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/calendar"
)

type CreateRequest struct {
	VendorID    string
	Date        string
	StartTime   string
	EndTime     string
	MaxBookings int
}

// VendorLookup is the part of the directory the registry validates against.
type VendorLookup interface {
	GetVendor(ctx context.Context, id string) (*directory.Vendor, error)
}

// Service owns time slots and their booking counters.
type Service interface {
	Create(ctx context.Context, actorID string, req CreateRequest) (*TimeSlot, error)
	Delete(ctx context.Context, actorID, slotID string) error
	GetByID(ctx context.Context, id string) (*TimeSlot, error)
	ListByVendorAndDate(ctx context.Context, vendorID, date string) ([]*TimeSlot, error)
	List(ctx context.Context, filter Filter) ([]*TimeSlot, error)

	// IncrementBooking and DecrementBooking are reserved for the booking ledger.
	IncrementBooking(ctx context.Context, slotID string) (int, error)
	DecrementBooking(ctx context.Context, slotID string) (int, error)
}

type service struct {
	repo    Repository
	vendors VendorLookup
	logger  *zap.Logger
}

// NewService creates a new slot Service.
func NewService(repo Repository, vendors VendorLookup, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		vendors: vendors,
		logger:  logger,
	}
}

// normalizeCreate validates req and returns it with times in canonical HH:MM form.
func normalizeCreate(req CreateRequest) (CreateRequest, error) {
	if _, err := calendar.ParseDate(req.Date); err != nil {
		return req, ErrInvalidDate
	}
	start, err := calendar.ParseClock(req.StartTime)
	if err != nil {
		return req, ErrInvalidTime
	}
	end, err := calendar.ParseClock(req.EndTime)
	if err != nil {
		return req, ErrInvalidTime
	}
	if start >= end {
		return req, ErrInvalidTimeRange
	}
	if req.MaxBookings <= 0 {
		return req, ErrInvalidCapacity
	}
	req.StartTime = calendar.FormatClock(start)
	req.EndTime = calendar.FormatClock(end)
	return req, nil
}

func (s *service) Create(ctx context.Context, actorID string, req CreateRequest) (*TimeSlot, error) {
	req, err := normalizeCreate(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.vendors.GetVendor(ctx, req.VendorID); err != nil {
		return nil, err
	}
	if actorID != req.VendorID {
		return nil, ErrPermissionDenied
	}

	ts := &TimeSlot{
		VendorID:        req.VendorID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxBookings:     req.MaxBookings,
		CurrentBookings: 0,
	}
	if err := s.repo.Create(ctx, ts); err != nil {
		return nil, err
	}

	s.logger.Info("time slot created",
		zap.String("slot_id", ts.ID),
		zap.String("vendor_id", ts.VendorID),
		zap.String("date", ts.Date),
	)
	return ts, nil
}

func (s *service) Delete(ctx context.Context, actorID, slotID string) error {
	ts, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if ts.VendorID != actorID {
		return ErrPermissionDenied
	}
	if err := s.repo.DeleteIfEmpty(ctx, slotID); err != nil {
		return err
	}

	s.logger.Info("time slot deleted", zap.String("slot_id", slotID), zap.String("vendor_id", ts.VendorID))
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*TimeSlot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByVendorAndDate(ctx context.Context, vendorID, date string) ([]*TimeSlot, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.repo.List(ctx, Filter{VendorID: vendorID, DateFrom: date, DateTo: date})
}

func (s *service) List(ctx context.Context, filter Filter) ([]*TimeSlot, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) IncrementBooking(ctx context.Context, slotID string) (int, error) {
	return s.repo.Increment(ctx, slotID)
}

func (s *service) DecrementBooking(ctx context.Context, slotID string) (int, error) {
	return s.repo.Decrement(ctx, slotID)
}
