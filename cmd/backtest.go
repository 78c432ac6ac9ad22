package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/observability"
	"github.com/etnz/wealth/renderer"
	"github.com/etnz/wealth/store"
	"github.com/google/subcommands"
)

type backtestCmd struct {
	resample string
	start    string
}

func (*backtestCmd) Name() string { return "backtest" }
func (*backtestCmd) Synopsis() string {
	return "replay the current weights over the whole price history"
}
func (*backtestCmd) Usage() string {
	return `wealth backtest [-resample W|M|B] [-s <start>]

  Tracks the ledger, freezes the last weight vector and applies it at every
  date of the price history. Returns are compounded into weekly (W), monthly
  (M) or business day (B) periods first, unless -resample is "none".

  The statistics of the backtest use the annualization factor of the
  resampled returns.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.resample, "resample", "", "Resampling frequency (none, W, M or B). Overrides the configuration.")
	f.StringVar(&c.start, "s", "", "Start of the backtest report window. Overrides the configuration.")
}

func (c *backtestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(c.Name(), func() error {
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.stores.Close()
		if c.resample != "" {
			e.cfg.Resample = c.resample
		}
		if c.start != "" {
			on, err := date.Parse(c.start)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			e.cfg.BacktestStart = on
		}
		freq, err := e.cfg.Frequency()
		if err != nil {
			return err
		}

		run, err := e.tracker.Track(ctx, e.cfg.Assets, e.ledger)
		if err != nil {
			return err
		}
		bt, err := e.tracker.Backtest(ctx, run, freq)
		if err != nil {
			return err
		}
		if err := e.saveBacktest(ctx, bt); err != nil {
			return err
		}
		printMarkdown(renderer.RenderBacktest(renderer.NewBacktestReport(bt)))
		return nil
	})
}

// saveBacktest stores the backtest returns, when a series store is configured.
func (e *env) saveBacktest(ctx context.Context, bt *wealth.BacktestRun) error {
	if e.stores.Series == nil {
		return nil
	}
	points := store.Points(bt.RunID, "backtest_returns", bt.Returns)
	if len(points) == 0 {
		return nil
	}
	err := e.stores.Series.InsertBulk(ctx, points)
	observability.RecordStoreWrite(e.stores.SeriesName, "series", len(points), err)
	if err != nil {
		return fmt.Errorf("could not save backtest of run %s: %w", bt.RunID, err)
	}
	return nil
}
