package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/renderer"
	"github.com/google/subcommands"
)

// dateFlags overrides the report window of the configuration.
type dateFlags struct {
	start string
	end   string
}

func (d *dateFlags) set(f *flag.FlagSet) {
	f.StringVar(&d.start, "s", "", "Start of the report window (YYYY-MM-DD, YYYY-MM or dd/mm/YYYY). Overrides the configuration.")
	f.StringVar(&d.end, "e", "", "End of the report window. Overrides the configuration.")
}

func (d *dateFlags) apply(e *env) error {
	if d.start != "" {
		on, err := date.Parse(d.start)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		e.cfg.Start = on
	}
	if d.end != "" {
		on, err := date.Parse(d.end)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		e.cfg.End = on
	}
	return nil
}

type trackCmd struct {
	dates dateFlags
}

func (*trackCmd) Name() string { return "track" }
func (*trackCmd) Synopsis() string {
	return "track the wealth of the ledger and report returns, weights and statistics"
}
func (*trackCmd) Usage() string {
	return `wealth track [-s <start>] [-e <end>]

  Fetches the daily prices of every configured asset, accumulates the ledger
  trades into a wealth per asset, and blends the asset returns into the
  portfolio (PORT) return. Prints the current wealth and weights, the
  statistics of every asset and of the portfolio, and the mean correlation
  of each asset to the reference asset.

  Derived series are saved when a series store is configured.
`
}

func (c *trackCmd) SetFlags(f *flag.FlagSet) { c.dates.set(f) }

func (c *trackCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(c.Name(), func() error {
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.stores.Close()
		if err := c.dates.apply(e); err != nil {
			return err
		}

		run, err := e.tracker.Track(ctx, e.cfg.Assets, e.ledger)
		if err != nil {
			return err
		}
		if err := e.saveRun(ctx, run); err != nil {
			return err
		}
		printMarkdown(renderer.RenderTrack(renderer.NewTrackReport(run, e.ledger, e.cfg.Currency, e.cfg.Reference)))
		return nil
	})
}
