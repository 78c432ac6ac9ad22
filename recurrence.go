package wealth

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Accumulate walks an asset's returns and trades forward in time and returns its wealth:
//
//	wealth[0] = trade[0]
//	wealth[i] = wealth[i-1] * (1 + return[i]) + trade[i]
//
// A missing return or trade counts as 0. Wealth can become negative when withdrawals
// exceed the accumulated value.
func Accumulate(returns, trades []float64) []float64 {
	n := max(len(returns), len(trades))
	w := make([]float64, n)
	at := func(s []float64, i int) float64 {
		if i >= len(s) || Missing(s[i]) {
			return 0
		}
		return s[i]
	}

	running := 0.0
	for i := range n {
		if i == 0 {
			running = at(trades, 0)
		} else {
			running = running*(1+at(returns, i)) + at(trades, i)
		}
		w[i] = running
	}
	return w
}

// Wealth computes the wealth of every joined asset.
//
// Assets are independent, each one is accumulated concurrently.
func Wealth(j *Joined) *Frame {
	assets := j.Assets()
	columns := make([][]float64, len(assets))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range assets {
		returns, trades := j.Returns.col(a), j.Trades.col(a)
		g.Go(func() error {
			columns[i] = Accumulate(returns, trades)
			return nil
		})
	}
	_ = g.Wait() // never fails

	f := NewFrame(j.Returns.dates)
	for i, a := range assets {
		f.addColumn(a, columns[i])
	}
	return f
}
