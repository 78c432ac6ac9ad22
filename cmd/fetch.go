package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/eodhd"
	"github.com/etnz/wealth/localcsv"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	search string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetches price series and saves them as local csv files" }
func (*fetchCmd) Usage() string {
	return `wealth fetch [<ticker>...]
wealth fetch -search <term>

Fetches the daily closes of the configured assets (all of them, or the given
tickers) from their provider, and writes them to the csv directory as
{csv_dir}/{TICKER}.csv. Assets already read from csv files are skipped.

Saved series can be tracked offline by switching the asset source to 'csv'.

With -search, looks up securities on EOD Historical Data by name, ticker or
ISIN, and prints the tickers to use in an eodhd asset. Requires an API key
set in the EODHD_API_KEY environment variable.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Search EOD Historical Data for securities matching this term.")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(c.Name(), func() error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		if c.search != "" {
			return search(ctx, cfg, c.search)
		}

		var assets []wealth.Asset
		for _, a := range cfg.Assets {
			if a.Source == wealth.SourceCSV {
				continue
			}
			if f.NArg() > 0 && !slices.ContainsFunc(f.Args(), func(t string) bool {
				return strings.EqualFold(t, a.Ticker) || strings.EqualFold(t, a.ID())
			}) {
				continue
			}
			assets = append(assets, a)
		}
		if len(assets) == 0 {
			fmt.Fprintln(os.Stderr, "Nothing to fetch.")
			return nil
		}

		series, err := NewProviders(cfg).FetchAll(ctx, assets, cfg.Providers.Concurrency)
		if err != nil {
			return err
		}
		dst := localcsv.New(cfg.Providers.CSVDir)
		for i, s := range series {
			if err := dst.Save(assets[i], s); err != nil {
				return fmt.Errorf("could not save %s: %w", assets[i].Ticker, err)
			}
			first, _ := s.Prices.First()
			last, _ := s.Prices.Latest()
			fmt.Fprintf(os.Stderr, "%s: %d closes from %s to %s in %s\n", assets[i].Ticker, s.Len(), first, last, dst.Path(assets[i]))
		}
		return nil
	})
}

func search(ctx context.Context, cfg *wealth.Config, term string) error {
	p := NewProviders(cfg)[wealth.SourceEODHD].(*eodhd.Provider)
	results, err := p.Search(ctx, term)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Printf("No results found for '%s'.\n", term)
		return nil
	}

	fmt.Printf("Found %d results for '%s':\n\n", len(results), term)
	for _, item := range results {
		fmt.Printf("➡️   Name       : %s (%s)\n", item.Name, item.Code)
		fmt.Printf("    Type        : %s, Country: %s, Currency: %s\n", item.Type, item.Country, item.Currency)
		fmt.Printf("    ISIN        : %s\n", item.ISIN)
		fmt.Printf("    Prev. Close : %.2f on %s\n", item.PreviousClose, item.PreviousCloseDate)
		fmt.Printf("    asset       : {ticker: %s, name: %q, source: eodhd}\n\n", item.Ticker(), item.Name)
	}
	return nil
}
