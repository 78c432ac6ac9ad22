package wealth

import (
	"errors"
	"fmt"

	"github.com/etnz/wealth/date"
)

var (
	// ErrReservedTicker is returned when a real asset uses the PORT ticker.
	ErrReservedTicker = errors.New("ticker is reserved for the portfolio")
	// ErrDuplicateAsset is returned when two tracked assets share a ticker.
	ErrDuplicateAsset = errors.New("duplicate asset")
	// ErrNoWeights is returned when there is no defined weight vector to freeze.
	ErrNoWeights = errors.New("no defined weights")
	// ErrEmptySeries is returned when a provider returns no price.
	ErrEmptySeries = errors.New("empty price series")
)

// UnknownAssetError is returned when a trade references an asset that is not tracked.
type UnknownAssetError struct {
	Asset  string
	Date   date.Date
	Amount float64
}

func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("trade of %.2f on %s references unknown asset %q", e.Amount, e.Date, e.Asset)
}

// UnsupportedSourceError is returned when no provider serves an asset's source.
type UnsupportedSourceError struct {
	Asset  string
	Source Source
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("asset %q: %q is not a supported price source", e.Asset, e.Source)
}

// InsufficientDataWarning reports rolling statistics left missing because their
// trailing window had too few observations.
type InsufficientDataWarning struct {
	Column   string
	Points   int // number of missing statistics
	Required int // minimum observations per window
}

func (w InsufficientDataWarning) Error() string {
	return fmt.Sprintf("%s: %d points with fewer than %d observations", w.Column, w.Points, w.Required)
}

// DivisionUndefinedWarning reports a date where total wealth is zero so weights are missing.
type DivisionUndefinedWarning struct {
	Date date.Date
}

func (w DivisionUndefinedWarning) Error() string {
	return fmt.Sprintf("total wealth is zero on %s, weights undefined", w.Date)
}
