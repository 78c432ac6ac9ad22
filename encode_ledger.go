package wealth

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// tradeLine is the JSONL representation of a Trade.
type tradeLine struct {
	Date   string          `json:"date"`
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
}

// DecodeLedger decodes trades from a stream of JSONL data, one trade per line:
//
//	{"date":"07-01-2021","ticker":"4GLD","amount":300.88}
//
// Dates are day-month-year, ISO dates are accepted too.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	lineno := 0

	for scanner.Scan() {
		lineno++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var line tradeLine
		if err := json.Unmarshal(lineBytes, &line); err != nil {
			return nil, fmt.Errorf("line %d: could not decode trade %q: %w", lineno, string(lineBytes), err)
		}
		on, err := date.Parse(line.Date)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		if line.Ticker == "" {
			return nil, fmt.Errorf("line %d: trade has no ticker", lineno)
		}
		ledger.Append(NewTrade(on, line.Ticker, line.Amount))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeLedger writes the ledger as JSONL, in the ledger order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	enc := json.NewEncoder(w)
	for t := range l.Trades() {
		line := tradeLine{
			Date:   t.Date.Format(date.LedgerFormat),
			Ticker: t.Ticker,
			Amount: t.Amount,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("could not encode trade on %s for %s: %w", t.Date, t.Ticker, err)
		}
	}
	return nil
}
