package wealth

import (
	"errors"
	"math"
	"testing"

	"github.com/etnz/wealth/date"
)

func TestAccumulate(t *testing.T) {
	testCases := []struct {
		name    string
		returns []float64
		trades  []float64
		want    []float64
	}{
		{
			name:    "compounds then trades",
			returns: []float64{nan, 0.10, -0.05},
			trades:  []float64{100, 0, 20},
			want:    []float64{100, 110, 124.5},
		},
		{
			name:    "missing return counts as zero",
			returns: []float64{nan, nan, 0.5},
			trades:  []float64{100, 0, 0},
			want:    []float64{100, 100, 150},
		},
		{
			name:    "no trade stays at zero",
			returns: []float64{nan, 0.1, 0.2, -0.3},
			trades:  []float64{0, 0, 0, 0},
			want:    []float64{0, 0, 0, 0},
		},
		{
			name:    "funded later",
			returns: []float64{nan, 0.1, 0.1},
			trades:  []float64{0, 100, 0},
			want:    []float64{0, 100, 110},
		},
		{
			name:    "over-withdrawn position goes negative",
			returns: []float64{nan, 0.0, 0.1},
			trades:  []float64{100, -150, 0},
			want:    []float64{100, -50, -55},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assertSlice(t, "wealth", Accumulate(tc.returns, tc.trades), tc.want)
		})
	}
}

func TestReturns(t *testing.T) {
	p := prices("XDEM", "2021-01-04", 100, 110, 0, 121, 133.1)
	r := Returns(p)
	assertSlice(t, "returns", r.Returns, []float64{nan, 0.1, nan, nan, 0.1})
	if r.Len() != 5 {
		t.Errorf("Len() = %d, want 5", r.Len())
	}
}

func TestJoin_NetsSameDayTrades(t *testing.T) {
	r := Returns(prices("XDEM", "2021-01-04", 100, 101, 102))
	ledger := NewLedger(
		trade("2021-01-05", "XDEM", 50),
		trade("2021-01-05", "XDEM", -20),
	)
	j, err := Join([]ReturnSeries{r}, ledger)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	assertSlice(t, "trades", j.Trades.Column("XDEM"), []float64{0, 30, 0})
}

func TestJoin_SameDayTradesOnSeveralAssets(t *testing.T) {
	series := []ReturnSeries{
		Returns(prices("XDEM", "2021-01-04", 100, 101, 102)),
		Returns(prices("4GLD", "2021-01-04", 50, 51, 52)),
	}
	ledger := NewLedger(
		trade("2021-01-05", "XDEM", 100),
		trade("2021-01-05", "4GLD", 200),
		trade("2021-01-05", "XDEM", 50),
	)
	j, err := Join(series, ledger)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	dates := j.Dates()
	if len(dates) != 3 {
		t.Fatalf("Dates() = %v, want 3 dates", dates)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Errorf("Dates() not strictly increasing at %d: %v", i, dates)
		}
	}
	assertSlice(t, "XDEM", j.Trades.Column("XDEM"), []float64{0, 150, 0})
	assertSlice(t, "4GLD", j.Trades.Column("4GLD"), []float64{0, 200, 0})
}

func TestJoin_TradeOnDateWithoutReturn(t *testing.T) {
	// a weekend trade keeps its own row
	gld := NewPriceSeries("4GLD")
	gld.Append(d("2021-03-26"), 100).Append(d("2021-03-29"), 110)
	ledger := NewLedger(
		trade("2021-03-26", "4GLD", 300),
		trade("2021-03-28", "4GLD", -100),
	)
	j, err := Join([]ReturnSeries{Returns(gld)}, ledger)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	want := []date.Date{d("2021-03-26"), d("2021-03-28"), d("2021-03-29")}
	if got := j.Dates(); len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("Dates() = %v, want %v", got, want)
	}
	assertSlice(t, "returns", j.Returns.Column("4GLD"), []float64{nan, nan, 0.1})
	assertSlice(t, "wealth", Wealth(j).Column("4GLD"), []float64{300, 200, 220})
}

func TestJoin_UnknownAsset(t *testing.T) {
	r := Returns(prices("XDEM", "2021-01-04", 100, 101))
	ledger := NewLedger(trade("2021-01-05", "PRUD", 700))

	_, err := Join([]ReturnSeries{r}, ledger)
	var unknown *UnknownAssetError
	if !errors.As(err, &unknown) {
		t.Fatalf("Join() error = %v, want an *UnknownAssetError", err)
	}
	if unknown.Asset != "PRUD" || unknown.Date != d("2021-01-05") || unknown.Amount != 700 {
		t.Errorf("UnknownAssetError = %+v", unknown)
	}
}

// twoAssets returns a joined table where XDEM is funded on the first day and 4GLD
// later, and PRUD never.
func twoAssets(t *testing.T) *Joined {
	t.Helper()
	series := []ReturnSeries{
		Returns(prices("XDEM", "2021-01-04", 100, 110, 99, 108.9, 119.79)),
		Returns(prices("4GLD", "2021-01-04", 50, 50, 55, 60.5, 54.45)),
		Returns(prices("PRUD", "2021-01-04", 10, 11, 12, 13, 14)),
	}
	ledger := NewLedger(
		trade("2021-01-04", "XDEM", 1000),
		trade("2021-01-06", "4GLD", 500),
	)
	j, err := Join(series, ledger)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	return j
}

func TestWealth(t *testing.T) {
	w := Wealth(twoAssets(t))
	assertSlice(t, "XDEM", w.Column("XDEM"), []float64{1000, 1100, 990, 1089, 1197.9})
	assertSlice(t, "4GLD", w.Column("4GLD"), []float64{0, 0, 500, 550, 495})
	assertSlice(t, "PRUD", w.Column("PRUD"), []float64{0, 0, 0, 0, 0})
}

func TestWeights_Normalized(t *testing.T) {
	weights, warnings := Weights(Wealth(twoAssets(t)))
	if len(warnings) != 0 {
		t.Errorf("Weights() warnings = %v, want none", warnings)
	}
	for i := range weights.Len() {
		if sum := WeightSum(weights, i); !approx(sum, 1, 1e-9) {
			t.Errorf("weights sum on %s = %v, want 1", weights.Date(i), sum)
		}
		if got := weights.At(i, "PRUD"); !Missing(got) {
			t.Errorf("PRUD weight on %s = %v, want missing, PRUD is never funded", weights.Date(i), got)
		}
	}
	assertSlice(t, "4GLD", weights.Column("4GLD"), []float64{0, 0, 500.0 / 1490, 550.0 / 1639, 495.0 / 1692.9})
}

func TestWeights_ZeroTotalIsMissing(t *testing.T) {
	j, err := Join([]ReturnSeries{Returns(prices("PRUD", "2021-01-04", 10, 11, 12))}, NewLedger())
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	weights, warnings := Weights(Wealth(j))
	assertSlice(t, "PRUD", weights.Column("PRUD"), []float64{nan, nan, nan})
	if len(warnings) != 3 {
		t.Fatalf("Weights() produced %d warnings, want 3", len(warnings))
	}
	if warnings[0].Date != d("2021-01-04") {
		t.Errorf("first warning on %s, want 2021-01-04", warnings[0].Date)
	}
}

func TestBlend(t *testing.T) {
	j := twoAssets(t)
	weights, _ := Weights(Wealth(j))

	t.Run("co-timed weights", func(t *testing.T) {
		port := Blend(weights, j.Returns, 0)
		// first row has no return at all.
		if !Missing(port[0]) {
			t.Errorf("PORT[0] = %v, want missing", port[0])
		}
		// day 3: XDEM -10% and 4GLD +10%, weighted by the same day wealth.
		want := 990.0/1490*-0.1 + 500.0/1490*0.1
		if !approx(port[2], want, 1e-12) {
			t.Errorf("PORT[2] = %v, want %v", port[2], want)
		}
	})

	t.Run("lagged weights", func(t *testing.T) {
		port := Blend(weights, j.Returns, 1)
		// day 3 uses day 2 weights where XDEM holds everything.
		if !approx(port[2], -0.1, 1e-12) {
			t.Errorf("PORT[2] = %v, want -0.1", port[2])
		}
		want := 990.0/1490*0.1 + 500.0/1490*0.1
		if !approx(port[3], want, 1e-12) {
			t.Errorf("PORT[3] = %v, want %v", port[3], want)
		}
	})

	t.Run("appended as a column", func(t *testing.T) {
		f := WithPortfolio(j.Returns, Blend(weights, j.Returns, 0))
		if !f.Has(PortfolioTicker) || j.Returns.Has(PortfolioTicker) {
			t.Errorf("WithPortfolio() must add PORT to a copy only")
		}
	})
}

func TestCompound(t *testing.T) {
	got, ok := Compound([]float64{0.01, 0.02, -0.01})
	want := 1.01*1.02*0.99 - 1
	if !ok || !approx(got, want, 1e-15) {
		t.Errorf("Compound() = %v, %v, want %v", got, ok, want)
	}
	if _, ok := Compound([]float64{nan, nan}); ok {
		t.Errorf("Compound() of missing returns must not be defined")
	}
}

func TestResample(t *testing.T) {
	// 2021-01-04 is a Monday.
	dates := days("2021-01-04", 10)
	r := frame(t, dates, map[string][]float64{
		"XDEM": {nan, 0.01, 0.02, -0.01, nan, nan, nan, 0.1, nan, nan},
		"4GLD": {nan, nan, nan, nan, nan, 0.05, nan, nan, nan, nan},
	}, "XDEM", "4GLD")

	t.Run("weekly", func(t *testing.T) {
		w := Resample(r, Weekly)
		want := []date.Date{d("2021-01-10"), d("2021-01-17")}
		if got := w.Dates(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("Dates() = %v, want %v", got, want)
		}
		assertSlice(t, "XDEM", w.Column("XDEM"), []float64{1.01*1.02*0.99 - 1, 0.1})
		assertSlice(t, "4GLD", w.Column("4GLD"), []float64{0.05, nan})
	})

	t.Run("monthly", func(t *testing.T) {
		m := Resample(r, Monthly)
		if m.Len() != 1 || m.Date(0) != d("2021-01-31") {
			t.Fatalf("Dates() = %v, want [2021-01-31]", m.Dates())
		}
		assertSlice(t, "XDEM", m.Column("XDEM"), []float64{1.01*1.02*0.99*1.1 - 1})
	})

	t.Run("business days", func(t *testing.T) {
		b := Resample(r, BusinessDaily)
		// Saturday 9th folds into Friday 8th, the empty Sunday bucket too.
		for _, on := range b.Dates() {
			if on.Weekday() == 0 || on.Weekday() == 6 {
				t.Errorf("business resampling kept weekend date %s", on)
			}
		}
		i, ok := b.Row(d("2021-01-08"))
		if !ok {
			t.Fatalf("Row(2021-01-08) not found")
		}
		if got := b.At(i, "4GLD"); !approx(got, 0.05, 1e-12) {
			t.Errorf("4GLD on 2021-01-08 = %v, want 0.05", got)
		}
	})

	t.Run("native", func(t *testing.T) {
		if !Resample(r, Native).Equal(r, 0) {
			t.Errorf("native resampling must keep the frame")
		}
	})
}

func TestBacktest(t *testing.T) {
	j := twoAssets(t)
	weights, _ := Weights(Wealth(j))
	returns := WithPortfolio(j.Returns, Blend(weights, j.Returns, 0))

	for _, f := range []Frequency{Native, Weekly, Monthly, BusinessDaily} {
		t.Run(f.String(), func(t *testing.T) {
			res, err := Backtest(weights, returns, f)
			if err != nil {
				t.Fatalf("Backtest() failed: %v", err)
			}
			last := weights.Len() - 1
			for _, a := range weights.Columns() {
				if got, want := res.Frozen[a], weights.At(last, a); !approx(got, want, 0) {
					t.Errorf("frozen %s = %v, want the live last weight %v", a, got, want)
				}
				for i := range res.Weights.Len() {
					if got := res.Weights.At(i, a); !approx(got, res.Frozen[a], 0) {
						t.Errorf("weight of %s on %s = %v, want %v", a, res.Weights.Date(i), got, res.Frozen[a])
					}
				}
			}
			if !res.Returns.Has(PortfolioTicker) {
				t.Errorf("backtest returns have no PORT column")
			}
		})
	}

	t.Run("blends frozen weights", func(t *testing.T) {
		res, err := Backtest(weights, returns, Native)
		if err != nil {
			t.Fatalf("Backtest() failed: %v", err)
		}
		wx, wg := res.Frozen["XDEM"], res.Frozen["4GLD"]
		want := wx*0.1 + wg*0
		if got := res.Returns.At(1, PortfolioTicker); !approx(got, want, 1e-12) {
			t.Errorf("PORT[1] = %v, want %v", got, want)
		}
	})

	t.Run("no weights", func(t *testing.T) {
		empty, _ := Weights(NewFrame(days("2021-01-04", 2), "XDEM"))
		if _, err := Backtest(empty, returns, Native); !errors.Is(err, ErrNoWeights) {
			t.Errorf("Backtest() error = %v, want ErrNoWeights", err)
		}
	})
}

func TestRollingOptions_MinObservations(t *testing.T) {
	testCases := []struct {
		window   int
		coverage float64
		want     int
	}{
		{window: 90, coverage: 0.2, want: 18},
		{window: 90, coverage: 0, want: 18},
		{window: 10, coverage: 0.2, want: 2},
		{window: 3, coverage: 0.2, want: 1},
		{window: 20, coverage: 1, want: 20},
	}
	for _, tc := range testCases {
		o := RollingOptions{Window: tc.window, Coverage: tc.coverage}
		if got := o.MinObservations(); got != tc.want {
			t.Errorf("MinObservations(%d, %v) = %d, want %d", tc.window, tc.coverage, got, tc.want)
		}
	}
}

func TestRollingVolatility_MissingWindow(t *testing.T) {
	const n = 100
	values := make([]float64, n)
	for i := range values {
		values[i] = nan
	}
	// 17 observed returns at the end of the series.
	for i := n - 17; i < n; i++ {
		values[i] = 0.01 * float64(i%3-1)
	}
	r := frame(t, days("2021-01-01", n), map[string][]float64{"XDEM": values}, "XDEM")
	o := RollingOptions{Window: 90, Coverage: 0.2, PeriodsPerYear: 252}

	vol, warnings := RollingVolatility(r, o)
	if got := vol.At(n-1, "XDEM"); !Missing(got) {
		t.Errorf("volatility with 17 observations = %v, want missing", got)
	}
	if len(warnings) != 1 || warnings[0].Column != "XDEM" || warnings[0].Points != n || warnings[0].Required != 18 {
		t.Errorf("warnings = %+v, want one for XDEM with %d points", warnings, n)
	}

	// one more observation is enough.
	values[n-18] = 0.01
	r = frame(t, days("2021-01-01", n), map[string][]float64{"XDEM": values}, "XDEM")
	vol, _ = RollingVolatility(r, o)
	got := vol.At(n-1, "XDEM")
	if Missing(got) {
		t.Fatalf("volatility with 18 observations is missing")
	}
	window := values[n-18:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= 18
	ss := 0.0
	for _, v := range window {
		ss += (v - mean) * (v - mean)
	}
	want := math.Sqrt(ss/17) * math.Sqrt(252)
	if !approx(got, want, 1e-12) {
		t.Errorf("volatility = %v, want %v", got, want)
	}
}

func TestRollingCorrelation(t *testing.T) {
	const n = 30
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(float64(i)) / 100
		y[i] = 2 * x[i]
		z[i] = -x[i]
	}
	x[0], y[0], z[0] = nan, nan, nan
	r := frame(t, days("2021-01-01", n), map[string][]float64{"XDEM": x, "Y": y, "Z": z}, "XDEM", "Y", "Z")

	corr, warnings := RollingCorrelation(r, "XDEM", RollingOptions{Window: 10, Coverage: 0.5, PeriodsPerYear: 252})
	if corr.Has("XDEM") {
		t.Errorf("reference must not correlate with itself")
	}
	if got := corr.At(n-1, "Y"); !approx(got, 1, 1e-9) {
		t.Errorf("corr(Y) = %v, want 1", got)
	}
	if got := corr.At(n-1, "Z"); !approx(got, -1, 1e-9) {
		t.Errorf("corr(Z) = %v, want -1", got)
	}
	// the first 5 rows have fewer than 5 observations.
	if len(warnings) != 2 || warnings[0].Points != 5 {
		t.Errorf("warnings = %+v, want 5 points for Y and Z", warnings)
	}

	means := MeanCorrelations(corr)
	if len(means) != 2 || means[0].Asset != "Z" || means[1].Asset != "Y" {
		t.Fatalf("MeanCorrelations() = %+v, want Z then Y", means)
	}
	if !approx(means[0].Correlation, -1, 1e-9) {
		t.Errorf("mean correlation of Z = %v, want -1", means[0].Correlation)
	}
}

func TestSummarize(t *testing.T) {
	r := frame(t, days("2021-01-04", 5), map[string][]float64{
		"XDEM": {nan, 0.1, -0.1, 0.1, -0.1},
		"PRUD": {nan, 0.2, 0.2, 0.2, 0.2},
	}, "XDEM", "PRUD")

	stats := Summarize(r, ReportOptions{PeriodsPerYear: 252, Exclude: []string{"PRUD"}})
	if len(stats) != 1 {
		t.Fatalf("Summarize() returned %d stats, want 1", len(stats))
	}
	s := stats[0]
	if s.Asset != "XDEM" || s.Observations != 4 {
		t.Errorf("Summarize() = %s over %d observations, want XDEM over 4", s.Asset, s.Observations)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"total return", s.TotalReturn, 1.1*0.9*1.1*0.9 - 1},
		{"annualized return", s.AnnualizedReturn, math.Pow(1.1*0.9*1.1*0.9, 252.0/4) - 1},
		{"volatility", s.AnnualizedVolatility, math.Sqrt(0.04/3) * math.Sqrt(252)},
		{"max drawdown", s.MaxDrawdown, 1.1*0.9*1.1*0.9/1.1 - 1},
		{"skewness", s.Skewness, 0},
		{"kurtosis", s.Kurtosis, 1},
		{"cvar", s.CVaR, 0.1},
	}
	for _, c := range checks {
		if !approx(c.got, c.want, 1e-9) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.VaR <= 0 {
		t.Errorf("VaR = %v, want a positive loss", s.VaR)
	}
}

func TestSummarize_Window(t *testing.T) {
	r := frame(t, days("2021-01-04", 5), map[string][]float64{
		"XDEM": {nan, 0.1, -0.1, 0.1, -0.1},
	}, "XDEM")
	stats := Summarize(r, ReportOptions{Window: date.Range{From: d("2021-01-06")}})
	if stats[0].Observations != 3 {
		t.Errorf("Observations = %d, want 3", stats[0].Observations)
	}
	if got, want := stats[0].TotalReturn, 0.9*1.1*0.9-1; !approx(got, want, 1e-12) {
		t.Errorf("TotalReturn = %v, want %v", got, want)
	}
}

func TestDrawdowns(t *testing.T) {
	r := frame(t, days("2021-01-04", 4), map[string][]float64{"XDEM": {nan, 0.1, -0.5, 1}}, "XDEM")
	assertSlice(t, "cumulative", CumulativeWealth(r).Column("XDEM"), []float64{1, 1.1, 0.55, 1.1})
	assertSlice(t, "drawdowns", Drawdowns(r).Column("XDEM"), []float64{0, 0, -0.5, 0})
}
