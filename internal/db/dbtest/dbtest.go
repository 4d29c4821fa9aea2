// Package dbtest opens a migrated Postgres pool for repository tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
)

// NewPool connects to TEST_DB_DSN, applies migrations and empties every
// table. The test is skipped when TEST_DB_DSN is unset.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping postgres test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, db.PoolOptions{MaxConns: 4}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.RunMigrations(ctx, pool, zap.NewNop()))

	_, err = pool.Exec(ctx, `TRUNCATE public.bookings, public.time_slots, public.customer_addresses,
		public.vendor_profiles, public.parties CASCADE`)
	require.NoError(t, err)

	return pool
}
