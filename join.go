package wealth

import (
	"slices"

	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

// Joined is the (date, asset) table of returns and trades.
//
// Dates are the sorted union of every return observation and every trade date.
// Returns are missing where an asset has no observation, trades default to 0.
type Joined struct {
	Returns *Frame
	Trades  *Frame
}

// Assets returns the joined assets, in order.
func (j *Joined) Assets() []string { return j.Returns.Columns() }

// Dates returns the joined dates.
func (j *Joined) Dates() []date.Date { return j.Returns.Dates() }

// Join aligns the return series of tracked assets with the ledger trades.
//
// Trades on the same asset and date are summed. It fails with an *UnknownAssetError
// when a trade references an asset that has no return series.
func Join(returns []ReturnSeries, ledger *Ledger) (*Joined, error) {
	index := make(map[string]int, len(returns))
	for i, r := range returns {
		index[r.Asset] = i
	}

	// net trades per asset and date, summed as decimals.
	trades := make([]map[date.Date]decimal.Decimal, len(returns))
	for i := range trades {
		trades[i] = make(map[date.Date]decimal.Decimal)
	}
	var tradeDates []date.Date
	for t := range ledger.Trades() {
		i, ok := index[t.Ticker]
		if !ok {
			return nil, &UnknownAssetError{Asset: t.Ticker, Date: t.Date, Amount: t.Amount.InexactFloat64()}
		}
		trades[i][t.Date] = trades[i][t.Date].Add(t.Amount)
		tradeDates = append(tradeDates, t.Date)
	}
	slices.SortFunc(tradeDates, date.Date.Compare)
	tradeDates = slices.Compact(tradeDates)

	days := make([][]date.Date, 0, len(returns)+1)
	for _, r := range returns {
		days = append(days, r.Dates)
	}
	days = append(days, tradeDates)
	dates := date.Union(days...)

	j := &Joined{
		Returns: NewFrame(dates),
		Trades:  NewFrame(dates),
	}
	for i, r := range returns {
		j.Returns.addColumn(r.Asset, spread(j.Returns, r.Dates, r.Returns))

		values := make([]float64, len(dates))
		for on, amount := range trades[i] {
			if row, ok := j.Trades.Row(on); ok {
				values[row] = amount.InexactFloat64()
			}
		}
		j.Trades.addColumn(r.Asset, values)
	}
	return j, nil
}
