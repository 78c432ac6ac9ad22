package wealth

// BacktestResult is today's allocation replayed over the whole history.
type BacktestResult struct {
	Frequency Frequency
	Frozen    map[string]float64 // the weight vector applied at every date
	Weights   *Frame             // frozen weights, one row per return date
	Returns   *Frame             // asset returns, resampled, plus the PORT column
}

// FreezeWeights returns the weight vector of the last row.
//
// It fails with ErrNoWeights when that row has no defined weight.
func FreezeWeights(weights *Frame) (map[string]float64, error) {
	last := weights.Len() - 1
	if last < 0 || Missing(WeightSum(weights, last)) {
		return nil, ErrNoWeights
	}
	frozen := make(map[string]float64, len(weights.columns))
	for c, a := range weights.columns {
		frozen[a] = weights.data[c][last]
	}
	return frozen, nil
}

// Backtest freezes the last live weights, back-fills them over every date, optionally
// resamples the asset returns to f, and blends them into a counterfactual PORT series.
//
// returns must not contain the PORT column.
func Backtest(weights, returns *Frame, f Frequency) (*BacktestResult, error) {
	frozen, err := FreezeWeights(weights)
	if err != nil {
		return nil, err
	}

	r := Resample(returns.Drop(PortfolioTicker), f)
	w := NewFrame(r.dates, r.columns...)
	for c, a := range w.columns {
		v, ok := frozen[a]
		if !ok {
			continue
		}
		for i := range w.data[c] {
			w.data[c][i] = v
		}
	}

	return &BacktestResult{
		Frequency: f,
		Frozen:    frozen,
		Weights:   w,
		Returns:   WithPortfolio(r, Blend(w, r, 0)),
	}, nil
}
