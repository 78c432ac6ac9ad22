package wealth

import (
	"math"

	"github.com/etnz/wealth/date"
)

// PriceSeries is the chronological series of closing prices of an asset.
//
// A missing price (a gap) is NaN.
type PriceSeries struct {
	Asset  string
	Prices date.History[float64]
}

// NewPriceSeries returns an empty series for an asset.
func NewPriceSeries(asset string) *PriceSeries {
	return &PriceSeries{Asset: asset}
}

// Append adds a closing price, non positive prices are recorded as gaps.
func (p *PriceSeries) Append(on date.Date, price float64) *PriceSeries {
	if price <= 0 || math.IsInf(price, 0) {
		price = math.NaN()
	}
	p.Prices.Append(on, price)
	return p
}

// Len returns the number of observations.
func (p *PriceSeries) Len() int { return p.Prices.Len() }

// PriceFrame aligns several price series on the union of their dates.
func PriceFrame(series ...*PriceSeries) *Frame {
	days := make([][]date.Date, len(series))
	for i, s := range series {
		days[i] = s.Prices.Days()
	}
	f := NewFrame(date.Union(days...))
	for _, s := range series {
		values := nans(f.Len())
		for on, v := range s.Prices.Values() {
			if i, ok := f.Row(on); ok {
				values[i] = v
			}
		}
		f.addColumn(s.Asset, values)
	}
	return f
}
