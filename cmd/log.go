package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/wealth/renderer"
	"github.com/etnz/wealth/store"
	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type logCmd struct{}

func (*logCmd) Name() string { return "log" }
func (*logCmd) Synopsis() string {
	return "display the warnings and errors logged during a run"
}
func (*logCmd) Usage() string {
	return `wealth log <run id>

  Prints the run log of a tracking run: the warnings and errors it logged,
  in time order. The run id is printed at the top of every report.

  Requires a persistent run log store (sqlite or postgres).
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {}

func (c *logCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return execute(c.Name(), func() error {
		id, err := uuid.Parse(f.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", f.Arg(0), err)
		}
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		stores, err := OpenStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		entries, err := stores.RunLog.ListByRun(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		printMarkdown(renderer.RenderLog(renderer.NewLogReport(id.String(), entries)))
		return nil
	})
}
