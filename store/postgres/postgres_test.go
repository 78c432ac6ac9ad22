package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies migrations.
func setupTestDB(t *testing.T) *Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")
	require.NoError(t, Migrate(ctx, pool), "failed to migrate")
	// twice, migrations are idempotent.
	require.NoError(t, Migrate(ctx, pool), "failed to migrate again")

	t.Cleanup(func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
	return pool
}

func TestStores(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runID := uuid.New()

	t.Run("series", func(t *testing.T) {
		s := NewSeriesStore(pool)
		dates := []date.Date{date.MustParse("2021-01-07"), date.MustParse("2021-01-08")}
		f := wealth.NewFrame(dates)
		require.NoError(t, f.SetColumn("XDEM", []float64{3728.27, 3750}))
		require.NoError(t, f.SetColumn("PORT", []float64{0.01, -0.02}))

		points := store.Points(runID, "returns", f)
		require.NoError(t, s.InsertBulk(ctx, points))

		got, err := store.LoadSeries(ctx, s, runID, "returns")
		require.NoError(t, err)
		assert.True(t, f.Equal(got, 1e-12))

		assert.ErrorIs(t, s.InsertBulk(ctx, points[1:]), store.ErrDuplicateKey)
		_, err = s.GetBySeries(ctx, runID, "weights")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("run log", func(t *testing.T) {
		l := NewRunLog(pool)
		now := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, l.Insert(ctx, &store.LogEntry{RunID: runID, Level: "warn", Message: "insufficient data", AddTime: now}))

		entries, err := l.ListByRun(ctx, runID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "insufficient data", entries[0].Message)
		assert.True(t, entries[0].AddTime.Equal(now))
	})
}
