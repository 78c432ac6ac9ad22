package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *wealth.Frame {
	t.Helper()
	dates := []date.Date{date.MustParse("2021-01-07"), date.MustParse("2021-01-08"), date.MustParse("2021-01-11")}
	f := wealth.NewFrame(dates)
	require.NoError(t, f.SetColumn("XDEM", []float64{3728.27, 3750, math.NaN()}))
	require.NoError(t, f.SetColumn("4GLD", []float64{300.88, 301, 299.5}))
	return f
}

func TestSeriesStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSeriesStore()
	runID := uuid.New()
	f := testFrame(t)

	points := store.Points(runID, "wealth", f)
	assert.Len(t, points, 5, "missing values are not stored")
	require.NoError(t, s.InsertBulk(ctx, points))

	got, err := store.LoadSeries(ctx, s, runID, "wealth")
	require.NoError(t, err)
	assert.Equal(t, []string{"XDEM", "4GLD"}, got.Columns())
	assert.True(t, f.Equal(got, 0), "loaded frame differs")
}

func TestSeriesStore_SaveRunWithSameDayTrades(t *testing.T) {
	ctx := context.Background()
	xdem, gld := wealth.NewPriceSeries("XDEM"), wealth.NewPriceSeries("4GLD")
	for i, on := range []string{"2021-01-04", "2021-01-05", "2021-01-06", "2021-01-07"} {
		xdem.Append(date.MustParse(on), 100+float64(i))
		gld.Append(date.MustParse(on), 50-float64(i))
	}
	ledger := wealth.NewLedger(
		wealth.NewTrade(date.MustParse("2021-01-05"), "XDEM", decimal.NewFromInt(100)),
		wealth.NewTrade(date.MustParse("2021-01-05"), "4GLD", decimal.NewFromInt(200)),
	)
	cfg := wealth.DefaultConfig()
	cfg.Window = 2
	run, err := wealth.NewTracker(wealth.Providers{}, cfg, zerolog.Nop()).TrackPrices(ctx, []*wealth.PriceSeries{xdem, gld}, ledger)
	require.NoError(t, err)
	require.Equal(t, 4, run.Wealth.Len())

	s := NewSeriesStore()
	n, err := store.SaveRun(ctx, s, run)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestSeriesStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewSeriesStore()
	runID := uuid.New()
	points := store.Points(runID, "wealth", testFrame(t))
	require.NoError(t, s.InsertBulk(ctx, points))

	t.Run("duplicate", func(t *testing.T) {
		err := s.InsertBulk(ctx, points[:1])
		assert.ErrorIs(t, err, store.ErrDuplicateKey)
	})

	t.Run("invalid", func(t *testing.T) {
		err := s.InsertBulk(ctx, []*store.Point{{RunID: runID, Series: "wealth", Column: "X"}})
		assert.ErrorIs(t, err, store.ErrInvalidInput)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetBySeries(ctx, runID, "weights")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRunLog(t *testing.T) {
	ctx := context.Background()
	l := NewRunLog()
	runID := uuid.New()
	now := time.Now()

	require.NoError(t, l.Insert(ctx, &store.LogEntry{RunID: runID, Level: "error", Message: "second", AddTime: now.Add(time.Second)}))
	require.NoError(t, l.Insert(ctx, &store.LogEntry{RunID: runID, Level: "warn", Message: "first", AddTime: now}))

	entries, err := l.ListByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)

	_, err = l.ListByRun(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, l.Insert(ctx, &store.LogEntry{Level: "error"}), store.ErrInvalidInput)
}
