// Package store persists the outputs of tracking runs: the run log and the derived
// series (wealth, weights, returns, rolling statistics).
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/google/uuid"
)

// Storage errors.
var (
	// ErrNotFound is returned when a requested run does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a point with the same key is already stored.
	// Stores are append-only.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// LogEntry is a run log record.
type LogEntry struct {
	RunID   uuid.UUID
	Level   string
	Message string
	AddTime time.Time
}

// Point is one value of a derived series, keyed by (RunID, Series, Date, Column).
type Point struct {
	RunID  uuid.UUID
	Series string // wealth, weights, returns, volatility, correlation, ...
	Date   date.Date
	Column string
	Index  int // column position in the series
	Value  float64
}

// RunLog provides access to the run log.
type RunLog interface {
	// Insert appends an entry.
	Insert(ctx context.Context, e *LogEntry) error

	// ListByRun returns the entries of a run, in insertion time order.
	// Returns ErrNotFound if the run has no entry.
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*LogEntry, error)
}

// SeriesStore provides access to derived series.
type SeriesStore interface {
	// InsertBulk adds points atomically. Fails the entire batch on any duplicate.
	InsertBulk(ctx context.Context, points []*Point) error

	// GetBySeries returns the points of a run series ordered by date then column index.
	// Returns ErrNotFound if there is none.
	GetBySeries(ctx context.Context, runID uuid.UUID, series string) ([]*Point, error)
}

// Validate checks the fields of a point.
func (p *Point) Validate() error {
	if p == nil || p.RunID == uuid.Nil || p.Series == "" || p.Column == "" || p.Date.IsZero() || wealth.Missing(p.Value) {
		return ErrInvalidInput
	}
	return nil
}

// Points returns the defined values of a frame as points. Missing values are not stored.
func Points(runID uuid.UUID, series string, f *wealth.Frame) []*Point {
	var points []*Point
	for c, column := range f.Columns() {
		values := f.Column(column)
		for i, v := range values {
			if wealth.Missing(v) {
				continue
			}
			points = append(points, &Point{
				RunID:  runID,
				Series: series,
				Date:   f.Date(i),
				Column: column,
				Index:  c,
				Value:  v,
			})
		}
	}
	return points
}

// Frame rebuilds a frame from points. Dates without a value are not restored.
func Frame(points []*Point) *wealth.Frame {
	var dates []date.Date
	type column struct {
		name  string
		index int
	}
	var columns []column
	seen := make(map[string]bool)
	for _, p := range points {
		dates = append(dates, p.Date)
		if !seen[p.Column] {
			seen[p.Column] = true
			columns = append(columns, column{p.Column, p.Index})
		}
	}
	slices.SortStableFunc(columns, func(a, b column) int { return cmp.Compare(a.index, b.index) })
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}

	slices.SortFunc(dates, date.Date.Compare)
	f := wealth.NewFrame(slices.Compact(dates), names...)
	for _, p := range points {
		if i, ok := f.Row(p.Date); ok {
			f.Set(i, p.Column, p.Value)
		}
	}
	return f
}

// SaveRun stores the derived series of a run.
func SaveRun(ctx context.Context, s SeriesStore, run *wealth.Run) (int, error) {
	series := map[string]*wealth.Frame{
		"wealth":      run.Wealth,
		"weights":     run.Weights,
		"returns":     run.Returns,
		"volatility":  run.Volatility,
		"correlation": run.Correlation,
	}
	var points []*Point
	for _, name := range []string{"wealth", "weights", "returns", "volatility", "correlation"} {
		if f := series[name]; f != nil {
			points = append(points, Points(run.ID, name, f)...)
		}
	}
	if len(points) == 0 {
		return 0, nil
	}
	return len(points), s.InsertBulk(ctx, points)
}

// LoadSeries returns a stored run series as a frame.
func LoadSeries(ctx context.Context, s SeriesStore, runID uuid.UUID, series string) (*wealth.Frame, error) {
	points, err := s.GetBySeries(ctx, runID, series)
	if err != nil {
		return nil, err
	}
	return Frame(points), nil
}
