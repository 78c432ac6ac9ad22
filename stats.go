package wealth

import (
	"math"
	"slices"

	"github.com/etnz/wealth/date"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stats summarizes the returns of one column over a report window.
type Stats struct {
	Asset                string
	Observations         int
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	Sharpe               float64
	MaxDrawdown          float64 // negative or zero
	Skewness             float64
	Kurtosis             float64 // not in excess of the normal distribution
	VaR                  float64 // modified (Cornish-Fisher) value at risk, as a positive loss
	CVaR                 float64 // historic conditional value at risk, as a positive loss
}

// ReportOptions configures a statistics report.
type ReportOptions struct {
	Window         date.Range
	Exclude        []string
	PeriodsPerYear float64
	RiskFree       float64 // annual risk free rate
	Level          float64 // VaR level in percent, 5 by default
}

// Summarize computes Stats for every column of returns.
//
// The frame is restricted to the window, excluded columns are dropped, then every row
// with a missing value is dropped so that all statistics cover the same dates.
func Summarize(returns *Frame, o ReportOptions) []Stats {
	f := returns.Window(o.Window).Drop(o.Exclude...).DropMissing()
	if o.PeriodsPerYear <= 0 {
		o.PeriodsPerYear = Native.PeriodsPerYear()
	}
	if o.Level <= 0 {
		o.Level = 5
	}

	res := make([]Stats, 0, len(f.columns))
	for c, name := range f.columns {
		res = append(res, summarize(name, f.data[c], o))
	}
	return res
}

func summarize(name string, r []float64, o ReportOptions) Stats {
	s := Stats{Asset: name, Observations: len(r)}
	nan := math.NaN()
	if len(r) == 0 {
		s.TotalReturn, s.AnnualizedReturn, s.AnnualizedVolatility, s.Sharpe = nan, nan, nan, nan
		s.MaxDrawdown, s.Skewness, s.Kurtosis, s.VaR, s.CVaR = nan, nan, nan, nan, nan
		return s
	}
	ppy := o.PeriodsPerYear

	s.TotalReturn, _ = Compound(r)
	s.AnnualizedReturn = annualizeReturns(r, ppy)
	s.AnnualizedVolatility = nan
	if len(r) > 1 {
		s.AnnualizedVolatility = stat.StdDev(r, nil) * math.Sqrt(ppy)
	}

	rf := math.Pow(1+o.RiskFree, 1/ppy) - 1
	excess := make([]float64, len(r))
	for i, v := range r {
		excess[i] = v - rf
	}
	s.Sharpe = annualizeReturns(excess, ppy) / s.AnnualizedVolatility

	s.MaxDrawdown = slices.Min(drawdowns(r))
	s.Skewness = skewness(r)
	s.Kurtosis = kurtosis(r)
	s.VaR = cornishFisherVaR(r, o.Level, s.Skewness, s.Kurtosis)
	s.CVaR = historicCVaR(r, o.Level)
	return s
}

// annualizeReturns returns the compound growth of r scaled to one year.
func annualizeReturns(r []float64, ppy float64) float64 {
	total, _ := Compound(r)
	return math.Pow(1+total, ppy/float64(len(r))) - 1
}

// skewness is the population third standardized moment.
func skewness(r []float64) float64 {
	variance := stat.Moment(2, r, nil)
	return stat.Moment(3, r, nil) / math.Pow(variance, 1.5)
}

// kurtosis is the population fourth standardized moment.
func kurtosis(r []float64) float64 {
	variance := stat.Moment(2, r, nil)
	return stat.Moment(4, r, nil) / (variance * variance)
}

// cornishFisherVaR adjusts the gaussian quantile for skewness and kurtosis.
func cornishFisherVaR(r []float64, level, s, k float64) float64 {
	z := distuv.UnitNormal.Quantile(level / 100)
	z = z +
		(z*z-1)*s/6 +
		(z*z*z-3*z)*(k-3)/24 -
		(2*z*z*z-5*z)*(s*s)/36
	mean := stat.Mean(r, nil)
	return -(mean + z*math.Sqrt(stat.Moment(2, r, nil)))
}

// historicCVaR is the mean loss of the returns at or below the historic VaR.
func historicCVaR(r []float64, level float64) float64 {
	sorted := slices.Clone(r)
	slices.Sort(sorted)
	threshold := percentile(sorted, level/100)
	var beyond []float64
	for _, v := range sorted {
		if v <= threshold {
			beyond = append(beyond, v)
		}
	}
	return -stat.Mean(beyond, nil)
}

// percentile returns the p-th quantile of sorted values with linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// cumulative returns the wealth index of 1 invested at the start of r.
// Missing returns leave the index unchanged.
func cumulative(r []float64) []float64 {
	res := make([]float64, len(r))
	w := 1.0
	for i, v := range r {
		if !Missing(v) {
			w *= 1 + v
		}
		res[i] = w
	}
	return res
}

// drawdowns returns the relative distance of the wealth index to its running peak.
func drawdowns(r []float64) []float64 {
	res := cumulative(r)
	peak := math.Inf(-1)
	for i, w := range res {
		peak = max(peak, w)
		res[i] = (w - peak) / peak
	}
	return res
}

// CumulativeWealth returns the wealth index (1 invested at the first row) of every column.
func CumulativeWealth(returns *Frame) *Frame {
	f := NewFrame(returns.dates)
	for c, name := range returns.columns {
		f.addColumn(name, cumulative(returns.data[c]))
	}
	return f
}

// Drawdowns returns the drawdown series of every column.
func Drawdowns(returns *Frame) *Frame {
	f := NewFrame(returns.dates)
	for c, name := range returns.columns {
		f.addColumn(name, drawdowns(returns.data[c]))
	}
	return f
}
