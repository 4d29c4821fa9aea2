package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/calendar"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

type CreateRequest struct {
	CustomerID string
	SlotID     string
}

// SlotRegistry is the part of the slot service the ledger drives.
type SlotRegistry interface {
	GetByID(ctx context.Context, id string) (*slot.TimeSlot, error)
	List(ctx context.Context, filter slot.Filter) ([]*slot.TimeSlot, error)
	IncrementBooking(ctx context.Context, slotID string) (int, error)
	DecrementBooking(ctx context.Context, slotID string) (int, error)
}

// CustomerLookup validates the customer named on a new booking.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, id string) (*directory.Customer, error)
}

// Recorder receives ledger outcomes, typically a metrics collector.
type Recorder interface {
	ObserveBookingOp(op, outcome string)
	AddSwept(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBookingOp(string, string) {}
func (nopRecorder) AddSwept(int)                    {}

// Service is the booking ledger.
type Service interface {
	Create(ctx context.Context, actorID string, req CreateRequest) (*Booking, error)
	Cancel(ctx context.Context, bookingID, actorID string) (*Booking, error)
	MarkCompleted(ctx context.Context, bookingID string) (*Booking, error)
	// CompleteElapsed completes confirmed bookings whose slot date is before now's date.
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByCustomer(ctx context.Context, customerID string, status Status) ([]*Booking, error)
	ListByVendor(ctx context.Context, vendorID string, status Status) ([]*Booking, error)
}

// Option customizes the service.
type Option func(*service)

// WithRecorder reports every create, cancel and complete outcome to rec.
func WithRecorder(rec Recorder) Option {
	return func(s *service) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

type service struct {
	repo      Repository
	slots     SlotRegistry
	locker    slot.Locker
	customers CustomerLookup
	logger    *zap.Logger
	recorder  Recorder
}

// NewService creates the booking ledger. locker must match the storage backend
// of repo and slots so that one slot's writes are serialized.
func NewService(
	repo Repository,
	slots SlotRegistry,
	locker slot.Locker,
	customers CustomerLookup,
	logger *zap.Logger,
	opts ...Option,
) Service {
	s := &service{
		repo:      repo,
		slots:     slots,
		locker:    locker,
		customers: customers,
		logger:    logger,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) observe(op string, err error) {
	if err == nil {
		s.recorder.ObserveBookingOp(op, "success")
		return
	}
	s.recorder.ObserveBookingOp(op, string(apperror.KindOf(err)))
}

func (s *service) Create(ctx context.Context, actorID string, req CreateRequest) (b *Booking, err error) {
	defer func() { s.observe("create", err) }()

	if actorID != req.CustomerID {
		return nil, ErrPermissionDenied
	}

	ts, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	err = s.locker.WithSlotLock(ctx, ts.ID, func(ctx context.Context) error {
		// A request abandoned before the increment leaves no trace.
		if err := ctx.Err(); err != nil {
			return err
		}

		active, err := s.repo.HasActive(ctx, req.CustomerID, ts.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrDuplicate
		}

		if _, err := s.slots.IncrementBooking(ctx, ts.ID); err != nil {
			return err
		}

		created := &Booking{
			CustomerID: req.CustomerID,
			VendorID:   ts.VendorID,
			TimeSlotID: ts.ID,
			Status:     StatusConfirmed,
		}
		if err := s.repo.Create(ctx, created); err != nil {
			// Inside a transaction the rollback releases the place.
			if !db.InTx(ctx) {
				s.compensateIncrement(ts.ID, err)
			}
			return err
		}
		b = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("slot_id", b.TimeSlotID),
		zap.String("customer_id", b.CustomerID),
	)
	return b, nil
}

// compensateIncrement gives back a place reserved for a booking that was never stored.
// It runs detached from the request context so a disconnect cannot strand the place.
func (s *service) compensateIncrement(slotID string, cause error) {
	if _, err := s.slots.DecrementBooking(context.Background(), slotID); err != nil {
		s.logger.Error("failed to release reserved place",
			zap.String("slot_id", slotID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

func (s *service) Cancel(ctx context.Context, bookingID, actorID string) (b *Booking, err error) {
	defer func() { s.observe("cancel", err) }()

	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != current.CustomerID && actorID != current.VendorID {
		return nil, ErrPermissionDenied
	}
	if !current.Status.Active() {
		return nil, ErrAlreadyClosed
	}

	err = s.locker.WithSlotLock(ctx, current.TimeSlotID, func(ctx context.Context) error {
		// The status swap admits exactly one cancel per booking, so the
		// slot is decremented at most once.
		cancelled, err := s.repo.UpdateStatus(ctx, bookingID, ActiveStatuses, StatusCancelled)
		if err != nil {
			if errors.Is(err, ErrStatusMismatch) {
				return ErrAlreadyClosed
			}
			return err
		}
		if _, err := s.slots.DecrementBooking(ctx, current.TimeSlotID); err != nil {
			return fmt.Errorf("release place on slot %s: %w", current.TimeSlotID, err)
		}
		b = cancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", b.ID),
		zap.String("slot_id", b.TimeSlotID),
		zap.String("actor_id", actorID),
	)
	return b, nil
}

func (s *service) MarkCompleted(ctx context.Context, bookingID string) (b *Booking, err error) {
	defer func() { s.observe("complete", err) }()

	b, err = s.repo.UpdateStatus(ctx, bookingID, []Status{StatusConfirmed}, StatusCompleted)
	if err != nil {
		if errors.Is(err, ErrStatusMismatch) {
			return nil, ErrNotConfirmed
		}
		return nil, err
	}
	return b, nil
}

func (s *service) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	yesterday := calendar.AddDays(calendar.DateOf(now), -1)

	elapsed, err := s.slots.List(ctx, slot.Filter{DateTo: yesterday})
	if err != nil {
		return 0, err
	}
	if len(elapsed) == 0 {
		return 0, nil
	}

	slotIDs := make([]string, len(elapsed))
	for i, ts := range elapsed {
		slotIDs[i] = ts.ID
	}

	due, err := s.repo.List(ctx, Filter{SlotIDs: slotIDs, Statuses: []Status{StatusConfirmed}})
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, b := range due {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		_, err := s.repo.UpdateStatus(ctx, b.ID, []Status{StatusConfirmed}, StatusCompleted)
		switch {
		case err == nil:
			completed++
		case errors.Is(err, ErrStatusMismatch), errors.Is(err, ErrNotFound):
			// Cancelled or completed since the listing.
		default:
			return completed, err
		}
	}

	s.recorder.AddSwept(completed)
	return completed, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func statusFilter(status Status) ([]Status, error) {
	if status == "" {
		return nil, nil
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return []Status{status}, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID string, status Status) ([]*Booking, error) {
	statuses, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filter{CustomerID: customerID, Statuses: statuses})
}

func (s *service) ListByVendor(ctx context.Context, vendorID string, status Status) ([]*Booking, error) {
	statuses, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filter{VendorID: vendorID, Statuses: statuses})
}
