package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/wealth"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `wealth fmt [-check]

  Validates and formats the ledger file. This command reads all trades,
  sorts them by date, keeping the order of trades of the same date, and
  writes them back in a canonical JSONL format.

  With -check, the ledger is left untouched and the command fails if it is
  not formatted.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "Fail if the ledger is not formatted, without writing it.")
}

func (c *fmtCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(c.Name(), func() error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		original, err := os.ReadFile(cfg.Ledger)
		if err != nil {
			return fmt.Errorf("could not read ledger: %w", err)
		}
		ledger, err := wealth.DecodeLedger(bytes.NewReader(original))
		if err != nil {
			return fmt.Errorf("could not decode ledger %q: %w", cfg.Ledger, err)
		}

		var b bytes.Buffer
		if err := wealth.EncodeLedger(&b, ledger.Sorted()); err != nil {
			return err
		}
		if bytes.Equal(original, b.Bytes()) {
			fmt.Fprintf(os.Stderr, "Ledger %q is formatted.\n", cfg.Ledger)
			return nil
		}
		if c.check {
			return fmt.Errorf("ledger %q is not formatted, run 'wealth fmt'", cfg.Ledger)
		}
		if err := writeFile(cfg.Ledger, &b); err != nil {
			return fmt.Errorf("could not write ledger: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✅ Successfully formatted %d trades in %q.\n", ledger.Len(), cfg.Ledger)
		return nil
	})
}
