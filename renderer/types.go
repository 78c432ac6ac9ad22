package renderer

import (
	"math"
	"os"
	"time"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/store"
	"github.com/shopspring/decimal"
)

// Now is the current time used in reports.
// WEALTH_TESTING_NOW overrides it in tests.
func Now() time.Time {
	if v := os.Getenv("WEALTH_TESTING_NOW"); v != "" {
		t, err := time.Parse("2006-01-02 15:04:05", v)
		if err != nil {
			panic(err)
		}
		return t
	}
	return time.Now()
}

// TrackReport represents a tracking run for rendering.
type TrackReport struct {
	RunID     string
	AsOf      date.Date
	From, To  date.Date
	Generated string

	Invested Money
	Wealth   Money
	Gain     Money
	Return   Percent // gain over invested

	Assets       []AssetLine
	Stats        []StatsLine
	Reference    string
	Correlations []CorrelationLine
	Warnings     int
}

// AssetLine is the state of one asset on the last date.
type AssetLine struct {
	Ticker   string
	Invested Money
	Wealth   Money
	Gain     Money
	Weight   Percent
}

// StatsLine is the statistics of one return series.
type StatsLine struct {
	Asset                string
	Observations         int
	TotalReturn          Percent
	AnnualizedReturn     Percent
	AnnualizedVolatility Percent
	Sharpe               Number
	MaxDrawdown          Percent
	Skewness             Number
	Kurtosis             Number
	VaR                  Percent
	CVaR                 Percent
}

// CorrelationLine is the mean rolling correlation of an asset to the reference.
type CorrelationLine struct {
	Asset string
	Mean  Number
}

// NewTrackReport converts a run. Amounts are in currency.
func NewTrackReport(run *wealth.Run, ledger *wealth.Ledger, currency, reference string) *TrackReport {
	r := &TrackReport{
		RunID:     run.ID.String(),
		Generated: Now().Format(time.DateTime),
		Reference: reference,
		Warnings:  run.Warnings,
	}
	if n := run.Wealth.Len(); n > 0 {
		r.From, r.AsOf, r.To = run.Wealth.Date(0), run.Wealth.Date(n-1), run.Wealth.Date(n-1)
	}

	invested, total := decimal.Zero, 0.0
	last := run.Wealth.Len() - 1
	for _, a := range run.Wealth.Columns() {
		in := ledger.Total(a)
		line := AssetLine{Ticker: a, Invested: M(in, currency), Weight: Percent(nanOr(run.Weights, last, a))}
		w := 0.0
		if last >= 0 {
			w = run.Wealth.At(last, a)
		}
		line.Wealth = M(w, currency)
		line.Gain = M(decimal.NewFromFloat(w).Sub(in), currency)
		r.Assets = append(r.Assets, line)
		invested = invested.Add(in)
		total += w
	}
	r.Invested = M(invested, currency)
	r.Wealth = M(total, currency)
	gain := decimal.NewFromFloat(total).Sub(invested)
	r.Gain = M(gain, currency)
	r.Return = Percent(nan)
	if !invested.IsZero() {
		r.Return = Percent(gain.Div(invested).InexactFloat64())
	}

	r.Stats = statsLines(run.Stats)
	for _, c := range run.MeanCorrelations {
		r.Correlations = append(r.Correlations, CorrelationLine{Asset: c.Asset, Mean: Number(c.Correlation)})
	}
	return r
}

// BacktestReport represents a backtest for rendering.
type BacktestReport struct {
	RunID     string
	Frequency string // empty for the native frequency
	From, To  date.Date
	Weights   []WeightLine
	Stats     []StatsLine
	Warnings  int
}

// WeightLine is a frozen weight.
type WeightLine struct {
	Asset  string
	Weight Percent
}

// NewBacktestReport converts a backtest.
func NewBacktestReport(bt *wealth.BacktestRun) *BacktestReport {
	r := &BacktestReport{
		RunID:     bt.RunID.String(),
		Frequency: frequencyNames[bt.Frequency],
		Stats:     statsLines(bt.Stats),
		Warnings:  bt.Warnings,
	}
	if n := bt.Returns.Len(); n > 0 {
		r.From, r.To = bt.Returns.Date(0), bt.Returns.Date(n-1)
	}
	for _, a := range bt.Weights.Columns() {
		r.Weights = append(r.Weights, WeightLine{Asset: a, Weight: Percent(bt.Frozen[a])})
	}
	return r
}

var frequencyNames = map[wealth.Frequency]string{
	wealth.Weekly:        "weekly",
	wealth.Monthly:       "monthly",
	wealth.BusinessDaily: "business day",
}

// RollingReport is a rolling statistic sampled at a frequency.
type RollingReport struct {
	Title   string
	Columns []string
	Rows    []RollingRow
}

// RollingRow is one sampled date.
type RollingRow struct {
	Date   date.Date
	Values []string
}

// NewRollingReport samples the last row of every bucket of f. Rows without any
// defined value are left out. Values are percents when percent is true.
func NewRollingReport(title string, frame *wealth.Frame, f wealth.Frequency, percent bool) *RollingReport {
	r := &RollingReport{Title: title, Columns: frame.Columns()}
	for i := 0; i < frame.Len(); i++ {
		on := frame.Date(i)
		if i+1 < frame.Len() && f.Bucket(frame.Date(i+1)) == f.Bucket(on) {
			continue
		}
		row := RollingRow{Date: on}
		defined := false
		for _, c := range r.Columns {
			v := frame.At(i, c)
			defined = defined || !wealth.Missing(v)
			if percent {
				row.Values = append(row.Values, Percent(v).String())
			} else {
				row.Values = append(row.Values, Number(v).String())
			}
		}
		if defined {
			r.Rows = append(r.Rows, row)
		}
	}
	return r
}

// LogReport is the run log of a run.
type LogReport struct {
	RunID   string
	Entries []LogLine
}

// LogLine is a run log entry.
type LogLine struct {
	Time    string
	Level   string
	Message string
}

// NewLogReport converts run log entries.
func NewLogReport(runID string, entries []*store.LogEntry) *LogReport {
	r := &LogReport{RunID: runID}
	for _, e := range entries {
		r.Entries = append(r.Entries, LogLine{
			Time:    e.AddTime.Format(time.DateTime),
			Level:   e.Level,
			Message: e.Message,
		})
	}
	return r
}

func statsLines(stats []wealth.Stats) []StatsLine {
	var res []StatsLine
	for _, s := range stats {
		res = append(res, StatsLine{
			Asset:                s.Asset,
			Observations:         s.Observations,
			TotalReturn:          Percent(s.TotalReturn),
			AnnualizedReturn:     Percent(s.AnnualizedReturn),
			AnnualizedVolatility: Percent(s.AnnualizedVolatility),
			Sharpe:               Number(s.Sharpe),
			MaxDrawdown:          Percent(s.MaxDrawdown),
			Skewness:             Number(s.Skewness),
			Kurtosis:             Number(s.Kurtosis),
			VaR:                  Percent(s.VaR),
			CVaR:                 Percent(s.CVaR),
		})
	}
	return res
}

var nan = math.NaN()

// nanOr returns the value of column a at row i, NaN when out of range or absent.
func nanOr(f *wealth.Frame, i int, a string) float64 {
	if f == nil || i < 0 || i >= f.Len() || !f.Has(a) {
		return nan
	}
	return f.At(i, a)
}
