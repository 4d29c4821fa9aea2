package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/keylock"
)

// Locker runs fn as the only writer of one slot's bookings. Everything fn does
// through ctx commits or fails as a unit where the backend supports it.
type Locker interface {
	WithSlotLock(ctx context.Context, slotID string, fn func(ctx context.Context) error) error
}

type memoryLocker struct {
	locks *keylock.Map
}

// NewMemoryLocker serializes callers with an in-process mutex per slot.
func NewMemoryLocker() Locker {
	return &memoryLocker{locks: keylock.New()}
}

func (l *memoryLocker) WithSlotLock(ctx context.Context, slotID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := l.locks.Lock(slotID)
	defer unlock()
	return fn(ctx)
}

type pgxLocker struct {
	pool *pgxpool.Pool
	tx   *db.TxManager
}

// NewPgxLocker opens a transaction and row-locks the slot for the duration of fn.
// Repositories reached through the ctx passed to fn join that transaction.
func NewPgxLocker(pool *pgxpool.Pool) Locker {
	return &pgxLocker{pool: pool, tx: db.NewTxManager(pool)}
}

func (l *pgxLocker) WithSlotLock(ctx context.Context, slotID string, fn func(ctx context.Context) error) error {
	return l.tx.Do(ctx, func(ctx context.Context) error {
		var id string
		err := db.Conn(ctx, l.pool).QueryRow(ctx,
			`SELECT id FROM public.time_slots WHERE id = $1 FOR UPDATE`, slotID,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock slot failed: %w", err)
		}
		return fn(ctx)
	})
}
