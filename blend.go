package wealth

import (
	"math"
	"slices"
)

// Weights returns each asset's share of total wealth at every date.
//
// When total wealth is exactly zero every weight of that date is missing and a
// DivisionUndefinedWarning is reported for it. An asset whose wealth is zero on
// every date was never funded, its weight is always missing.
func Weights(wealth *Frame) (*Frame, []DivisionUndefinedWarning) {
	w := NewFrame(wealth.dates, wealth.columns...)
	var warnings []DivisionUndefinedWarning

	funded := make([]bool, len(wealth.columns))
	for c := range wealth.columns {
		funded[c] = slices.ContainsFunc(wealth.data[c], func(v float64) bool { return !Missing(v) && v != 0 })
	}

	for i := range wealth.dates {
		total := 0.0
		for c := range wealth.columns {
			if v := wealth.data[c][i]; !Missing(v) {
				total += v
			}
		}
		if total == 0 {
			warnings = append(warnings, DivisionUndefinedWarning{Date: wealth.dates[i]})
			continue // all missing
		}
		for c := range wealth.columns {
			if funded[c] {
				w.data[c][i] = wealth.data[c][i] / total
			}
		}
	}
	return w, warnings
}

// Blend computes the portfolio return: at each row t, the sum over assets of
// weight[t-lag] * return[t], using only assets where both terms are defined.
//
// lag 0 couples each return with the weights of the same date, lag 1 with the
// weights of the previous row. The result is missing when no term is defined.
// weights and returns must share rows and columns.
func Blend(weights, returns *Frame, lag int) []float64 {
	res := nans(returns.Len())
	for i := range returns.dates {
		wi := i - lag
		if wi < 0 {
			continue
		}
		sum, terms := 0.0, 0
		for _, a := range returns.columns {
			if !weights.Has(a) {
				continue
			}
			w, r := weights.At(wi, a), returns.At(i, a)
			if Missing(w) || Missing(r) {
				continue
			}
			sum += w * r
			terms++
		}
		if terms > 0 {
			res[i] = sum
		}
	}
	return res
}

// WithPortfolio returns a copy of returns with the blended portfolio return appended
// as the PortfolioTicker column.
func WithPortfolio(returns *Frame, portfolio []float64) *Frame {
	f := returns.Clone()
	f.addColumn(PortfolioTicker, slices.Clone(portfolio))
	return f
}

// WeightSum returns the sum of defined weights at row i, NaN if none is defined.
func WeightSum(weights *Frame, i int) float64 {
	sum, defined := 0.0, false
	for c := range weights.columns {
		if v := weights.data[c][i]; !Missing(v) {
			sum += v
			defined = true
		}
	}
	if !defined {
		return math.NaN()
	}
	return sum
}
