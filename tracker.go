package wealth

import (
	"context"
	"time"

	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/observability"
	"github.com/etnz/wealth/trace"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Run is the result of one tracking run.
type Run struct {
	ID     uuid.UUID
	Assets []string

	Joined  *Joined
	Wealth  *Frame
	Weights *Frame
	Returns *Frame // asset returns plus the PORT column

	Stats            []Stats
	Volatility       *Frame
	Correlation      *Frame
	MeanCorrelations []MeanCorrelation

	Warnings int
}

// BacktestRun is the result of a backtest of a Run.
type BacktestRun struct {
	RunID uuid.UUID
	*BacktestResult
	Stats      []Stats
	Volatility *Frame
	Warnings   int
}

// Tracker runs the tracking pipeline: prices, returns, join, wealth, weights,
// blended returns, statistics.
type Tracker struct {
	providers Providers
	cfg       *Config
	log       zerolog.Logger
}

// NewTracker returns a tracker fetching prices from providers. A nil cfg uses DefaultConfig.
func NewTracker(providers Providers, cfg *Config, log zerolog.Logger) *Tracker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Tracker{
		providers: providers,
		cfg:       cfg,
		log:       log.With().Str("component", "tracker").Logger(),
	}
}

type runIDKey struct{}

// WithRunID returns a context carrying the run id. A tracking run started with
// this context uses it instead of a new one.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run id carried by ctx.
func RunIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDKey{}).(uuid.UUID)
	return id, ok
}

// step times f as a pipeline stage.
func step(ctx context.Context, name string, f func(ctx context.Context) error) error {
	ctx, span := trace.Start(ctx, "wealth."+name)
	start := time.Now()
	err := f(ctx)
	observability.RecordStage(name, time.Since(start).Seconds())
	trace.End(span, err)
	return err
}

// stage is a step returning a result.
func stage[T any](ctx context.Context, name string, f func(ctx context.Context) (T, error)) (T, error) {
	var res T
	err := step(ctx, name, func(ctx context.Context) (err error) {
		res, err = f(ctx)
		return err
	})
	return res, err
}

// Track fetches the assets prices and tracks the ledger over them.
func (t *Tracker) Track(ctx context.Context, assets []Asset, ledger *Ledger) (*Run, error) {
	if err := ValidateAssets(assets); err != nil {
		return nil, err
	}
	prices, err := stage(ctx, "fetch", func(ctx context.Context) ([]*PriceSeries, error) {
		return t.providers.FetchAll(ctx, assets, t.cfg.Providers.Concurrency)
	})
	if err != nil {
		return nil, err
	}
	return t.TrackPrices(ctx, prices, ledger)
}

// TrackPrices tracks the ledger over already fetched price series.
func (t *Tracker) TrackPrices(ctx context.Context, prices []*PriceSeries, ledger *Ledger) (*Run, error) {
	ctx, span := trace.Start(ctx, "wealth.track", attribute.Int("assets", len(prices)), attribute.Int("trades", ledger.Len()))
	run, err := t.track(ctx, prices, ledger)
	trace.End(span, err)
	return run, err
}

func (t *Tracker) track(ctx context.Context, prices []*PriceSeries, ledger *Ledger) (*Run, error) {
	id, ok := RunIDFrom(ctx)
	if !ok {
		id = uuid.New()
		ctx = WithRunID(ctx, id)
	}
	run := &Run{ID: id}
	log := t.log.With().Str("run_id", run.ID.String()).Ctx(ctx).Logger()

	returns := make([]ReturnSeries, len(prices))
	for i, p := range prices {
		returns[i] = Returns(p)
		run.Assets = append(run.Assets, p.Asset)
	}

	joined, err := stage(ctx, "join", func(context.Context) (*Joined, error) { return Join(returns, ledger) })
	if err != nil {
		log.Error().Err(err).Msg("join failed")
		return nil, err
	}
	run.Joined = joined

	run.Wealth, _ = stage(ctx, "wealth", func(context.Context) (*Frame, error) { return Wealth(joined), nil })

	_ = step(ctx, "blend", func(context.Context) error {
		weights, undefined := Weights(run.Wealth)
		run.Weights = weights
		run.Returns = WithPortfolio(joined.Returns, Blend(weights, joined.Returns, t.cfg.WeightLag))
		t.warnDivision(log, undefined)
		run.Warnings += len(undefined)
		return nil
	})

	_ = step(ctx, "stats", func(context.Context) error {
		run.Stats = Summarize(run.Returns, ReportOptions{
			Window:         t.window(t.cfg.Start),
			Exclude:        t.cfg.Exclude,
			PeriodsPerYear: Native.PeriodsPerYear(),
			RiskFree:       t.cfg.RiskFree,
		})
		return nil
	})

	_ = step(ctx, "rolling", func(context.Context) error {
		// rolling windows count complete rows only, so assets quoted on different
		// calendars do not thin each other's windows.
		report := run.Returns.Window(t.window(t.cfg.Start)).Drop(t.cfg.Exclude...).DropMissing()
		opts := t.cfg.Rolling(Native)

		vol, short := RollingVolatility(report, opts)
		run.Volatility = vol
		run.Warnings += t.warnInsufficient(log, "volatility", short)

		if !report.Has(t.cfg.Reference) {
			log.Warn().Str("reference", t.cfg.Reference).Msg("reference asset not tracked, no rolling correlation")
			return nil
		}
		corr, short := RollingCorrelation(report, t.cfg.Reference, opts)
		run.Correlation = corr
		run.MeanCorrelations = MeanCorrelations(corr)
		run.Warnings += t.warnInsufficient(log, "correlation", short)
		return nil
	})

	log.Info().
		Int("assets", len(run.Assets)).
		Int("dates", run.Wealth.Len()).
		Int("trades", ledger.Len()).
		Int("warnings", run.Warnings).
		Msg("tracking complete")
	return run, nil
}

// Backtest replays the last weights of run over its whole history at frequency f.
func (t *Tracker) Backtest(ctx context.Context, run *Run, f Frequency) (*BacktestRun, error) {
	ctx, span := trace.Start(ctx, "wealth.backtest", attribute.String("frequency", f.String()))
	ctx = WithRunID(ctx, run.ID)
	log := t.log.With().Str("run_id", run.ID.String()).Str("frequency", f.String()).Ctx(ctx).Logger()

	res, err := stage(ctx, "backtest", func(context.Context) (*BacktestResult, error) {
		return Backtest(run.Weights, run.Returns, f)
	})
	if err != nil {
		log.Error().Err(err).Msg("backtest failed")
		trace.End(span, err)
		return nil, err
	}

	bt := &BacktestRun{RunID: run.ID, BacktestResult: res}
	window := t.window(t.cfg.BacktestStart)
	bt.Stats = Summarize(res.Returns, ReportOptions{
		Window:         window,
		Exclude:        t.cfg.BacktestExclude,
		PeriodsPerYear: f.PeriodsPerYear(),
		RiskFree:       t.cfg.RiskFree,
	})
	vol, short := RollingVolatility(res.Returns.Window(window).Drop(t.cfg.BacktestExclude...).DropMissing(), t.cfg.Rolling(f))
	bt.Volatility = vol
	bt.Warnings = t.warnInsufficient(log, "volatility", short)

	log.Info().Int("dates", res.Returns.Len()).Msg("backtest complete")
	trace.End(span, nil)
	return bt, nil
}

func (t *Tracker) window(start date.Date) date.Range {
	return date.Range{From: start, To: t.cfg.End}
}

func (t *Tracker) warnDivision(log zerolog.Logger, warnings []DivisionUndefinedWarning) {
	if len(warnings) == 0 {
		return
	}
	observability.RecordWarnings("division_undefined", len(warnings))
	first, last := warnings[0].Date, warnings[len(warnings)-1].Date
	log.Warn().
		Int("dates", len(warnings)).
		Stringer("first", first).
		Stringer("last", last).
		Msg("total wealth is zero, weights undefined")
}

func (t *Tracker) warnInsufficient(log zerolog.Logger, stat string, warnings []InsufficientDataWarning) int {
	for _, w := range warnings {
		log.Warn().
			Str("statistic", stat).
			Str("column", w.Column).
			Int("points", w.Points).
			Int("required", w.Required).
			Msg("rolling window with insufficient data")
	}
	observability.RecordWarnings("insufficient_data", len(warnings))
	return len(warnings)
}
