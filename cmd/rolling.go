package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/chart"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/renderer"
	"github.com/google/subcommands"
)

type rollingCmd struct {
	dates dateFlags
	every string
	png   string
}

func (*rollingCmd) Name() string { return "rolling" }
func (*rollingCmd) Synopsis() string {
	return "report rolling volatility and correlation to the reference asset"
}
func (*rollingCmd) Usage() string {
	return `wealth rolling [-every W|M|B|none] [-png <prefix>] [-s <start>] [-e <end>]

  Tracks the ledger and reports, over a trailing window of 'window'
  observations, the annualized volatility of every asset and of the
  portfolio, and their correlation to the reference asset. A window with
  less than 'coverage' observed returns has no value.

  Tables show the last value of every period given by -every.
  With -png, charts are written to <prefix>volatility.png,
  <prefix>correlation.png and <prefix>wealth.png.
`
}

func (c *rollingCmd) SetFlags(f *flag.FlagSet) {
	c.dates.set(f)
	f.StringVar(&c.every, "every", "M", "Sampling of the tables (none, W, M or B).")
	f.StringVar(&c.png, "png", "", "Prefix of the PNG charts to write.")
}

func (c *rollingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(c.Name(), func() error {
		every, err := wealth.ParseFrequency(c.every)
		if err != nil {
			return err
		}
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

		reports := []*renderer.RollingReport{
			renderer.NewRollingReport(fmt.Sprintf("Rolling volatility over %d days", e.cfg.Window), run.Volatility, every, true),
		}
		if run.Correlation != nil {
			title := fmt.Sprintf("Rolling correlation to %s over %d days", e.cfg.Reference, e.cfg.Window)
			reports = append(reports, renderer.NewRollingReport(title, run.Correlation, every, false))
		}
		printMarkdown(renderer.RenderRolling(reports...))

		if c.png == "" {
			return nil
		}
		window := run.Returns.Window(date.Range{From: e.cfg.Start, To: e.cfg.End}).Drop(e.cfg.Exclude...)
		charts := []struct {
			name  string
			frame *wealth.Frame
			opts  chart.Options
		}{
			{"volatility", run.Volatility, chart.Options{Title: "Rolling volatility", Percent: true}},
			{"correlation", run.Correlation, chart.Options{Title: "Rolling correlation", Subtitle: e.cfg.Reference}},
			{"wealth", wealth.CumulativeWealth(window), chart.Options{Title: "Cumulative wealth", Subtitle: "growth of 1"}},
		}
		for _, ch := range charts {
			if ch.frame == nil {
				continue
			}
			b, err := chart.Line(ch.frame, ch.opts)
			if errors.Is(err, chart.ErrNoData) {
				e.log.Warn().Str("chart", ch.name).Msg("nothing to chart")
				continue
			}
			if err != nil {
				return err
			}
			path := c.png + ch.name + ".png"
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}
		return nil
	})
}
