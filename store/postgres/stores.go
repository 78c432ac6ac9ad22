package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RunLog implements store.RunLog using PostgreSQL.
type RunLog struct {
	pool *Pool
}

// NewRunLog creates a new RunLog.
func NewRunLog(pool *Pool) *RunLog { return &RunLog{pool: pool} }

// Compile-time interface check.
var _ store.RunLog = (*RunLog)(nil)

// Insert appends an entry.
func (s *RunLog) Insert(ctx context.Context, e *store.LogEntry) error {
	if e == nil || e.RunID == uuid.Nil || e.Level == "" {
		return store.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_log (run_id, level, message, add_time) VALUES ($1, $2, $3, $4)`,
		e.RunID, e.Level, e.Message, e.AddTime)
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}

// ListByRun returns the entries of a run ordered by time.
func (s *RunLog) ListByRun(ctx context.Context, runID uuid.UUID) ([]*store.LogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT level, message, add_time
		FROM run_log
		WHERE run_id = $1
		ORDER BY add_time ASC, id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run log: %w", err)
	}
	defer rows.Close()

	var entries []*store.LogEntry
	for rows.Next() {
		e := &store.LogEntry{RunID: runID}
		if err := rows.Scan(&e.Level, &e.Message, &e.AddTime); err != nil {
			return nil, fmt.Errorf("scan run log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run log: %w", err)
	}
	if len(entries) == 0 {
		return nil, store.ErrNotFound
	}
	return entries, nil
}

// SeriesStore implements store.SeriesStore using PostgreSQL.
type SeriesStore struct {
	pool *Pool
}

// NewSeriesStore creates a new SeriesStore.
func NewSeriesStore(pool *Pool) *SeriesStore { return &SeriesStore{pool: pool} }

// Compile-time interface check.
var _ store.SeriesStore = (*SeriesStore)(nil)

// InsertBulk adds points atomically with a batch. Fails entire batch on any duplicate.
func (s *SeriesStore) InsertBulk(ctx context.Context, points []*store.Point) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO series_points (run_id, series, date, column_name, col_index, value)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(query, p.RunID, p.Series, p.Date.Time(), p.Column, p.Index, p.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isDuplicateKeyError(err) {
			return store.ErrDuplicateKey
		}
		return fmt.Errorf("insert series points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySeries returns the points of a run series ordered by date then column index.
func (s *SeriesStore) GetBySeries(ctx context.Context, runID uuid.UUID, series string) ([]*store.Point, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, column_name, col_index, value
		FROM series_points
		WHERE run_id = $1 AND series = $2
		ORDER BY date ASC, col_index ASC
	`, runID, series)
	if err != nil {
		return nil, fmt.Errorf("get series points: %w", err)
	}
	defer rows.Close()

	var points []*store.Point
	for rows.Next() {
		p := &store.Point{RunID: runID, Series: series}
		var on time.Time
		if err := rows.Scan(&on, &p.Column, &p.Index, &p.Value); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		p.Date = date.FromTime(on)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series points: %w", err)
	}
	if len(points) == 0 {
		return nil, store.ErrNotFound
	}
	return points, nil
}
