package wealth

import (
	"iter"
	"slices"
	"strings"

	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

// Trade is a cash-flow event: a signed amount invested in (positive) or withdrawn
// from (negative) an asset on a date.
type Trade struct {
	Date   date.Date
	Ticker string
	Amount decimal.Decimal
}

// NewTrade returns a trade with an upper-cased ticker.
func NewTrade(on date.Date, ticker string, amount decimal.Decimal) Trade {
	return Trade{Date: on, Ticker: strings.ToUpper(strings.TrimSpace(ticker)), Amount: amount}
}

// Ledger is an append-only list of trades.
//
// Trades keep their insertion order, several trades can share a date and an asset.
type Ledger struct {
	trades []Trade
}

// NewLedger creates a ledger holding trades.
func NewLedger(trades ...Trade) *Ledger {
	l := &Ledger{}
	l.Append(trades...)
	return l
}

// Append adds trades at the end of the ledger.
func (l *Ledger) Append(trades ...Trade) {
	l.trades = append(l.trades, trades...)
}

// Len returns the number of trades.
func (l *Ledger) Len() int { return len(l.trades) }

// Trades returns an iterator over the trades in insertion order.
func (l *Ledger) Trades() iter.Seq[Trade] {
	return func(yield func(Trade) bool) {
		for _, t := range l.trades {
			if !yield(t) {
				return
			}
		}
	}
}

// Tickers returns the sorted list of tickers traded in the ledger.
func (l *Ledger) Tickers() []string {
	var res []string
	for _, t := range l.trades {
		if !slices.Contains(res, t.Ticker) {
			res = append(res, t.Ticker)
		}
	}
	slices.Sort(res)
	return res
}

// Total returns the net amount invested in a ticker, or in all tickers if ticker is empty.
func (l *Ledger) Total(ticker string) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l.trades {
		if ticker == "" || t.Ticker == ticker {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// Sorted returns a copy of the ledger with trades in chronological order.
// Trades on the same date keep their relative order.
func (l *Ledger) Sorted() *Ledger {
	trades := slices.Clone(l.trades)
	slices.SortStableFunc(trades, func(a, b Trade) int { return a.Date.Compare(b.Date) })
	return &Ledger{trades: trades}
}
