package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
)

type Repository interface {
	// Create stores b. It fails with ErrDuplicate when the customer already
	// holds an active booking on the same slot.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// List returns matching bookings, oldest first.
	List(ctx context.Context, filter Filter) ([]*Booking, error)
	HasActive(ctx context.Context, customerID, slotID string) (bool, error)

	// UpdateStatus moves the booking to `to` only if its current status is one
	// of `from`. It returns ErrStatusMismatch otherwise.
	UpdateStatus(ctx context.Context, id string, from []Status, to Status) (*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Postgres-backed booking repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{"id", "customer_id", "vendor_id", "time_slot_id", "status", "created_at", "updated_at"}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(&b.ID, &b.CustomerID, &b.VendorID, &b.TimeSlotID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := []string{"customer_id", "vendor_id", "time_slot_id", "status"}
	vals := []any{b.CustomerID, b.VendorID, b.TimeSlotID, string(b.Status)}
	if b.ID != "" {
		cols = append(cols, "id")
		vals = append(vals, b.ID)
	}
	if !b.CreatedAt.IsZero() {
		cols = append(cols, "created_at", "updated_at")
		vals = append(vals, b.CreatedAt, b.CreatedAt)
	}

	query, args, err := psql.Insert("public.bookings").
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation &&
			pgErr.ConstraintName == "bookings_one_active_per_customer_slot" {
			return ErrDuplicate
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	q := psql.Select(bookingColumns...).From("public.bookings")

	if filter.CustomerID != "" {
		q = q.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.VendorID != "" {
		q = q.Where(squirrel.Eq{"vendor_id": filter.VendorID})
	}
	if filter.SlotIDs != nil {
		q = q.Where(squirrel.Eq{"time_slot_id": filter.SlotIDs})
	}
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}

	query, args, err := q.OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	bookings := []*Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) HasActive(ctx context.Context, customerID, slotID string) (bool, error) {
	var exists bool
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM public.bookings
			WHERE customer_id = $1 AND time_slot_id = $2 AND status = ANY($3)
		)`, customerID, slotID, statusStrings(ActiveStatuses),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active booking failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from []Status, to Status) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": statusStrings(from)}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update booking status query failed: %w", err)
	}

	b, err := scanBooking(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	// Nothing matched: either the booking is gone or its status moved on.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusMismatch
}
