// Package localcsv reads and writes price series kept in local CSV files:
//
//	Date;Close
//	07/01/2021;52,10
//	08/01/2021;52,43
//
// Fields are separated by ';', numbers use a decimal comma and dates are day/month/year.
package localcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

// DateColumn is the header of the date column.
const DateColumn = "Date"

// Provider reads {Dir}/{TICKER}.csv files.
type Provider struct {
	Dir string
}

// New returns a provider reading files in dir.
func New(dir string) *Provider { return &Provider{Dir: dir} }

// Path returns the file of an asset.
func (p *Provider) Path(asset wealth.Asset) string {
	return filepath.Join(p.Dir, asset.Ticker+".csv")
}

// Fetch implements wealth.Provider.
func (p *Provider) Fetch(ctx context.Context, asset wealth.Asset) (*wealth.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(p.Path(asset))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Read(f, asset.ID())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path(asset), err)
	}
	return s, nil
}

// Read parses a price series. The close is the first column after the date column.
func Read(r io.Reader, id string) (*wealth.PriceSeries, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	dateCol, closeCol := -1, -1
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		switch {
		case strings.EqualFold(h, DateColumn):
			dateCol = i
		case closeCol < 0:
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("header %q has no %s and value columns", strings.Join(header, ";"), DateColumn)
	}

	s := wealth.NewPriceSeries(id)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if len(record) <= max(dateCol, closeCol) {
			return nil, fmt.Errorf("line %d: %d fields", line, len(record))
		}
		on, err := date.ParseLayout(date.SlashFormat, strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v := strings.TrimSpace(record[closeCol])
		if v == "" {
			s.Append(on, 0) // gap
			continue
		}
		price, err := ParseDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price %q: %w", line, v, err)
		}
		s.Append(on, price.InexactFloat64())
	}
	return s, nil
}

// ParseDecimal parses a number written with a decimal comma and optional '.' or
// space thousands separators, like "1.234,56".
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// Write writes a price series in the same format. Gaps are empty fields.
func Write(w io.Writer, s *wealth.PriceSeries) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write([]string{DateColumn, "Close"}); err != nil {
		return err
	}
	for on, price := range s.Prices.Values() {
		v := ""
		if !wealth.Missing(price) {
			v = strings.Replace(decimal.NewFromFloat(price).String(), ".", ",", 1)
		}
		if err := writer.Write([]string{on.Format(date.SlashFormat), v}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save writes a price series to {Dir}/{TICKER}.csv.
func (p *Provider) Save(asset wealth.Asset, s *wealth.PriceSeries) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(p.Path(asset))
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
