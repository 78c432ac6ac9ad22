package wealth

import (
	"math"
	"testing"

	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

var nan = math.NaN()

// d is a helper for tests to parse a date from a const.
func d(s string) date.Date { return date.MustParse(s) }

// days returns n consecutive days starting at from.
func days(from string, n int) []date.Date {
	start := d(from)
	res := make([]date.Date, n)
	for i := range res {
		res[i] = start.Add(i)
	}
	return res
}

// trade is a helper for tests to create a trade from consts.
func trade(on, ticker string, amount float64) Trade {
	return NewTrade(d(on), ticker, decimal.NewFromFloat(amount))
}

// prices is a helper for tests to create a price series over consecutive days.
// A zero price is a gap.
func prices(asset, from string, values ...float64) *PriceSeries {
	p := NewPriceSeries(asset)
	for i, on := range days(from, len(values)) {
		p.Append(on, values[i])
	}
	return p
}

// frame is a helper for tests to create a frame of one column per entry of cols.
func frame(t *testing.T, dates []date.Date, cols map[string][]float64, order ...string) *Frame {
	t.Helper()
	f := NewFrame(dates)
	for _, c := range order {
		if err := f.SetColumn(c, cols[c]); err != nil {
			t.Fatalf("SetColumn(%q) failed: %v", c, err)
		}
	}
	return f
}

// approx reports whether got and want are within tol, two NaN are equal.
func approx(got, want, tol float64) bool {
	if math.IsNaN(got) || math.IsNaN(want) {
		return math.IsNaN(got) && math.IsNaN(want)
	}
	return math.Abs(got-want) <= tol
}

func assertSlice(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values %v, want %d values %v", name, len(got), got, len(want), want)
	}
	for i := range got {
		if !approx(got[i], want[i], 1e-9) {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}
