package wealth

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DefaultCoverage is the default minimum fraction of a rolling window that must be observed.
const DefaultCoverage = 0.2

// RollingOptions configures rolling statistics.
type RollingOptions struct {
	Window         int     // trailing window length, in rows
	Coverage       float64 // minimum observed fraction of the window
	PeriodsPerYear float64 // annualization factor of the returns
}

// MinObservations returns the number of observations a window needs to produce a statistic.
func (o RollingOptions) MinObservations() int {
	coverage := o.Coverage
	if coverage <= 0 {
		coverage = DefaultCoverage
	}
	return max(1, int(math.Ceil(float64(o.Window)*coverage-1e-9)))
}

// RollingVolatility returns the annualized volatility of every column over a trailing
// window: the sample standard deviation of the observed returns times sqrt(PeriodsPerYear).
//
// A window with fewer than MinObservations (and never less than 2) observed returns gives a
// missing value. Each column with such points is reported once.
func RollingVolatility(returns *Frame, o RollingOptions) (*Frame, []InsufficientDataWarning) {
	res := NewFrame(returns.dates, returns.columns...)
	need := max(2, o.MinObservations())
	scale := math.Sqrt(o.PeriodsPerYear)
	var warnings []InsufficientDataWarning

	window := make([]float64, 0, o.Window)
	for c, name := range returns.columns {
		values := returns.data[c]
		short := 0
		for i := range values {
			window = window[:0]
			for k := max(0, i-o.Window+1); k <= i; k++ {
				if !Missing(values[k]) {
					window = append(window, values[k])
				}
			}
			if len(window) < need {
				short++
				continue
			}
			res.data[c][i] = stat.StdDev(window, nil) * scale
		}
		if short > 0 {
			warnings = append(warnings, InsufficientDataWarning{Column: name, Points: short, Required: need})
		}
	}
	return res, warnings
}

// RollingCorrelation returns the correlation of every column against the reference column
// over a trailing window, using the rows where both are observed.
//
// The reference column itself is not part of the result. The same coverage rule as
// RollingVolatility applies to pairwise observations.
func RollingCorrelation(returns *Frame, reference string, o RollingOptions) (*Frame, []InsufficientDataWarning) {
	var others []string
	for _, c := range returns.columns {
		if c != reference {
			others = append(others, c)
		}
	}
	res := NewFrame(returns.dates, others...)
	if !returns.Has(reference) {
		return res, nil
	}
	need := max(2, o.MinObservations())
	ref := returns.col(reference)
	var warnings []InsufficientDataWarning

	x := make([]float64, 0, o.Window)
	y := make([]float64, 0, o.Window)
	for c, name := range res.columns {
		values := returns.col(name)
		short := 0
		for i := range values {
			x, y = x[:0], y[:0]
			for k := max(0, i-o.Window+1); k <= i; k++ {
				if !Missing(values[k]) && !Missing(ref[k]) {
					x = append(x, values[k])
					y = append(y, ref[k])
				}
			}
			if len(x) < need {
				short++
				continue
			}
			if corr := stat.Correlation(x, y, nil); !math.IsNaN(corr) && !math.IsInf(corr, 0) {
				res.data[c][i] = corr
			}
		}
		if short > 0 {
			warnings = append(warnings, InsufficientDataWarning{Column: name, Points: short, Required: need})
		}
	}
	return res, warnings
}

// MeanCorrelation is the average rolling correlation of an asset against the reference.
type MeanCorrelation struct {
	Asset       string
	Correlation float64
}

// MeanCorrelations summarizes rolling correlations by their mean over the observed span,
// sorted in ascending order. Columns without any defined value are left out.
func MeanCorrelations(corr *Frame) []MeanCorrelation {
	var res []MeanCorrelation
	for c, name := range corr.columns {
		var defined []float64
		for _, v := range corr.data[c] {
			if !Missing(v) {
				defined = append(defined, v)
			}
		}
		if len(defined) == 0 {
			continue
		}
		res = append(res, MeanCorrelation{Asset: name, Correlation: stat.Mean(defined, nil)})
	}
	slices.SortStableFunc(res, func(a, b MeanCorrelation) int { return cmp.Compare(a.Correlation, b.Correlation) })
	return res
}
