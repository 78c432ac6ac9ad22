package wealth

import (
	"math"

	"github.com/etnz/wealth/date"
)

// ReturnSeries is the chronological series of simple returns of an asset.
//
// Returns are aligned with the observations of the price series they derive from,
// the first one is always missing.
type ReturnSeries struct {
	Asset   string
	Dates   []date.Date
	Returns []float64
}

// Len returns the number of observations.
func (r ReturnSeries) Len() int { return len(r.Dates) }

// Returns computes the simple returns between consecutive observations of a price series:
// price[t]/price[t-1] - 1 when both prices are present, missing otherwise.
func Returns(p *PriceSeries) ReturnSeries {
	r := ReturnSeries{
		Asset:   p.Asset,
		Dates:   make([]date.Date, 0, p.Len()),
		Returns: make([]float64, 0, p.Len()),
	}
	prev := math.NaN()
	for on, price := range p.Prices.Values() {
		ret := math.NaN()
		if !Missing(prev) && !Missing(price) && prev != 0 {
			ret = price/prev - 1
		}
		r.Dates = append(r.Dates, on)
		r.Returns = append(r.Returns, ret)
		prev = price
	}
	return r
}

// ReturnFrame aligns return series on the union of their dates.
func ReturnFrame(series ...ReturnSeries) *Frame {
	days := make([][]date.Date, len(series))
	for i, s := range series {
		days[i] = s.Dates
	}
	f := NewFrame(date.Union(days...))
	for _, s := range series {
		f.addColumn(s.Asset, spread(f, s.Dates, s.Returns))
	}
	return f
}

// spread places values observed on dates onto the rows of f, missing elsewhere.
func spread(f *Frame, dates []date.Date, values []float64) []float64 {
	res := nans(f.Len())
	for j, on := range dates {
		if i, ok := f.Row(on); ok {
			res[i] = values[j]
		}
	}
	return res
}
