package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
)

// Repository stores time slots. Increment, Decrement and DeleteIfEmpty are
// each atomic with respect to the counter they check.
type Repository interface {
	// Create stores s as given, including CurrentBookings. An empty ID is generated.
	Create(ctx context.Context, s *TimeSlot) error
	GetByID(ctx context.Context, id string) (*TimeSlot, error)
	// List returns matching slots ordered by date then start time.
	List(ctx context.Context, filter Filter) ([]*TimeSlot, error)

	// Increment adds one booking and returns the new count, or ErrCapacityExceeded when full.
	Increment(ctx context.Context, id string) (int, error)
	// Decrement removes one booking, floored at zero, and returns the new count.
	Decrement(ctx context.Context, id string) (int, error)
	// DeleteIfEmpty removes the slot only while it has no bookings.
	DeleteIfEmpty(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Postgres-backed slot repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var slotColumns = []string{
	"id", "vendor_id", "to_char(slot_date, 'YYYY-MM-DD')", "to_char(start_time, 'HH24:MI')",
	"to_char(end_time, 'HH24:MI')", "max_bookings", "current_bookings", "created_at",
}

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var s TimeSlot
	if err := row.Scan(
		&s.ID, &s.VendorID, &s.Date, &s.StartTime, &s.EndTime,
		&s.MaxBookings, &s.CurrentBookings, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgxRepository) Create(ctx context.Context, s *TimeSlot) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := []string{"vendor_id", "slot_date", "start_time", "end_time", "max_bookings", "current_bookings"}
	vals := []any{
		s.VendorID,
		squirrel.Expr("?::date", s.Date),
		squirrel.Expr("?::time", s.StartTime),
		squirrel.Expr("?::time", s.EndTime),
		s.MaxBookings,
		s.CurrentBookings,
	}
	if s.ID != "" {
		cols = append(cols, "id")
		vals = append(vals, s.ID)
	}

	query, args, err := psql.Insert("public.time_slots").
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create slot query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("create slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*TimeSlot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(slotColumns...).
		From("public.time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get slot query failed: %w", err)
	}

	s, err := scanSlot(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*TimeSlot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	q := psql.Select(slotColumns...).From("public.time_slots")

	if filter.VendorID != "" {
		q = q.Where(squirrel.Eq{"vendor_id": filter.VendorID})
	}
	if filter.IDs != nil {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.DateFrom != "" {
		q = q.Where(squirrel.Expr("slot_date >= ?::date", filter.DateFrom))
	}
	if filter.DateTo != "" {
		q = q.Where(squirrel.Expr("slot_date <= ?::date", filter.DateTo))
	}

	query, args, err := q.OrderBy("slot_date", "start_time", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots failed: %w", err)
	}
	defer rows.Close()

	slots := []*TimeSlot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots failed: %w", err)
	}
	return slots, nil
}

func (r *pgxRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM public.time_slots WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) Increment(ctx context.Context, id string) (int, error) {
	var count int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE public.time_slots SET current_bookings = current_bookings + 1
		 WHERE id = $1 AND current_bookings < max_bookings
		 RETURNING current_bookings`, id,
	).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("increment slot failed: %w", err)
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrCapacityExceeded
}

func (r *pgxRepository) Decrement(ctx context.Context, id string) (int, error) {
	var count int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE public.time_slots SET current_bookings = GREATEST(current_bookings - 1, 0)
		 WHERE id = $1
		 RETURNING current_bookings`, id,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("decrement slot failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) DeleteIfEmpty(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.time_slots").
		Where(squirrel.Eq{"id": id, "current_bookings": 0}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete slot query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete slot failed: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrHasBookings
	}
	return ErrNotFound
}
