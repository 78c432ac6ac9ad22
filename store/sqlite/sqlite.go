// Package sqlite implements the stores on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/store"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at dsn and creates the schema.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the tables if they do not exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS run_log(
		run_id TEXT NOT NULL, level TEXT NOT NULL, message TEXT, add_time INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS series_points(
		run_id TEXT NOT NULL, series TEXT NOT NULL, date TEXT NOT NULL,
		column_name TEXT NOT NULL, col_index INTEGER NOT NULL, value REAL NOT NULL,
		UNIQUE(run_id, series, date, column_name)
	)`)
	return err
}

// RunLog implements store.RunLog.
type RunLog struct{ db *sql.DB }

// NewRunLog creates a run log on db.
func NewRunLog(db *sql.DB) *RunLog { return &RunLog{db: db} }

var _ store.RunLog = (*RunLog)(nil)

// Insert appends an entry.
func (s *RunLog) Insert(ctx context.Context, e *store.LogEntry) error {
	if e == nil || e.RunID == uuid.Nil || e.Level == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO run_log(run_id,level,message,add_time) VALUES(?,?,?,?)`,
		e.RunID.String(), e.Level, e.Message, e.AddTime.UnixNano())
	return err
}

// ListByRun returns the entries of a run in time order.
func (s *RunLog) ListByRun(ctx context.Context, runID uuid.UUID) ([]*store.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level,message,add_time FROM run_log WHERE run_id=? ORDER BY add_time ASC`,
		runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*store.LogEntry
	for rows.Next() {
		e := &store.LogEntry{RunID: runID}
		var ns int64
		if err := rows.Scan(&e.Level, &e.Message, &ns); err != nil {
			return nil, err
		}
		e.AddTime = time.Unix(0, ns)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return out, nil
}

// SeriesStore implements store.SeriesStore.
type SeriesStore struct{ db *sql.DB }

// NewSeriesStore creates a series store on db.
func NewSeriesStore(db *sql.DB) *SeriesStore { return &SeriesStore{db: db} }

var _ store.SeriesStore = (*SeriesStore)(nil)

// InsertBulk adds points in a single transaction.
func (s *SeriesStore) InsertBulk(ctx context.Context, points []*store.Point) error {
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO series_points(run_id,series,date,column_name,col_index,value) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.RunID.String(), p.Series, p.Date.String(), p.Column, p.Index, p.Value); err != nil {
			if isDuplicateKeyError(err) {
				return store.ErrDuplicateKey
			}
			return fmt.Errorf("insert %s %s %s: %w", p.Series, p.Column, p.Date, err)
		}
	}
	return tx.Commit()
}

// GetBySeries returns the points of a run series ordered by date then column index.
func (s *SeriesStore) GetBySeries(ctx context.Context, runID uuid.UUID, series string) ([]*store.Point, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date,column_name,col_index,value FROM series_points
		WHERE run_id=? AND series=? ORDER BY date ASC, col_index ASC`, runID.String(), series)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*store.Point
	for rows.Next() {
		p := &store.Point{RunID: runID, Series: series}
		var on string
		if err := rows.Scan(&on, &p.Column, &p.Index, &p.Value); err != nil {
			return nil, err
		}
		if p.Date, err = date.Parse(on); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func isDuplicateKeyError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
