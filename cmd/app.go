// Package cmd implements the CLI application to track a ledger of trades.
package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/wealth"
	"github.com/etnz/wealth/eodhd"
	"github.com/etnz/wealth/httpcache"
	"github.com/etnz/wealth/localcsv"
	"github.com/etnz/wealth/observability"
	"github.com/etnz/wealth/store"
	"github.com/etnz/wealth/store/clickhouse"
	"github.com/etnz/wealth/store/memory"
	"github.com/etnz/wealth/store/postgres"
	"github.com/etnz/wealth/store/sqlite"
	"github.com/etnz/wealth/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands returns the subcommands, by group.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"reports": {&trackCmd{}, &backtestCmd{}, &rollingCmd{}, &logCmd{}},
		"data":    {&fetchCmd{}, &fmtCmd{}},
		"help":    {&topicCmd{}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, group := range []string{"reports", "data", "help"} {
		for _, cmd := range Commands()[group] {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "wealth.yaml", "Path to the YAML configuration file")
var ledgerFile = flag.String("ledger", "", "Path to the ledger file (JSONL format), overrides the configuration")

// Log is the root logger of the commands, set by the main package.
var Log = zerolog.Nop()

// LoadConfig loads the configuration file, or the defaults when it does not exist.
func LoadConfig() (*wealth.Config, error) {
	cfg, err := wealth.LoadConfig(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		Log.Warn().Str("config", *configFile).Msg("configuration file does not exist, using defaults")
		cfg, err = wealth.DefaultConfig(), nil
		cfg.ApplyEnv()
	}
	if err != nil {
		return nil, err
	}
	if *ledgerFile != "" {
		cfg.Ledger = *ledgerFile
	}
	return cfg, nil
}

// DecodeLedger reads the ledger file of cfg.
func DecodeLedger(cfg *wealth.Config) (*wealth.Ledger, error) {
	f, err := os.Open(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger: %w", err)
	}
	defer f.Close()
	ledger, err := wealth.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger %q: %w", cfg.Ledger, err)
	}
	return ledger, nil
}

// NewProviders returns the price providers configured by cfg. HTTP providers share
// a daily disk cache unless disabled.
func NewProviders(cfg *wealth.Config) wealth.Providers {
	client := http.DefaultClient
	if !cfg.Providers.NoCache {
		client = httpcache.New("", Log.With().Str("component", "httpcache").Logger()).Client()
	}
	return wealth.Providers{
		wealth.SourceYahoo: yahoo.New(client, Log),
		wealth.SourceEODHD: eodhd.New(cfg.Providers.EODHDAPIKey, client, Log),
		wealth.SourceCSV:   localcsv.New(cfg.Providers.CSVDir),
	}
}

// Stores holds the run log and the optional series store.
type Stores struct {
	RunLog     store.RunLog
	RunLogName string
	Series     store.SeriesStore // nil when series are not stored
	SeriesName string

	closers []func()
}

// Close releases the store connections.
func (s *Stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

// OpenStores connects the stores configured by cfg.
func OpenStores(ctx context.Context, cfg *wealth.Config) (_ *Stores, err error) {
	s := &Stores{RunLogName: cfg.Store.RunLog, SeriesName: cfg.Store.Series}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	var db *sql.DB
	openSQLite := func() (*sql.DB, error) {
		if db == nil {
			d, err := sqlite.Open(cfg.Store.SQLitePath)
			if err != nil {
				return nil, fmt.Errorf("could not open sqlite store %q: %w", cfg.Store.SQLitePath, err)
			}
			db = d
			s.closers = append(s.closers, func() { d.Close() })
		}
		return db, nil
	}
	var pool *postgres.Pool
	openPostgres := func() (*postgres.Pool, error) {
		if pool == nil {
			p, err := postgres.NewPool(ctx, cfg.Store.PostgresDSN)
			if err != nil {
				return nil, err
			}
			s.closers = append(s.closers, p.Close)
			if err := postgres.Migrate(ctx, p); err != nil {
				return nil, err
			}
			pool = p
		}
		return pool, nil
	}

	switch cfg.Store.RunLog {
	case "memory":
		s.RunLog = memory.NewRunLog()
	case "sqlite":
		sdb, err := openSQLite()
		if err != nil {
			return nil, err
		}
		s.RunLog = sqlite.NewRunLog(sdb)
	case "postgres":
		pg, err := openPostgres()
		if err != nil {
			return nil, err
		}
		s.RunLog = postgres.NewRunLog(pg)
	default:
		return nil, fmt.Errorf("unknown run log store %q", cfg.Store.RunLog)
	}

	switch cfg.Store.Series {
	case "none":
	case "memory":
		s.Series = memory.NewSeriesStore()
	case "sqlite":
		sdb, err := openSQLite()
		if err != nil {
			return nil, err
		}
		s.Series = sqlite.NewSeriesStore(sdb)
	case "postgres":
		pg, err := openPostgres()
		if err != nil {
			return nil, err
		}
		s.Series = postgres.NewSeriesStore(pg)
	case "clickhouse":
		conn, err := clickhouse.NewConn(ctx, cfg.Store.ClickHouse)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { conn.Close() })
		if err := clickhouse.Migrate(ctx, conn); err != nil {
			return nil, err
		}
		s.Series = clickhouse.NewSeriesStore(conn)
	default:
		return nil, fmt.Errorf("unknown series store %q", cfg.Store.Series)
	}
	return s, nil
}

// env is what a tracking command works with.
type env struct {
	cfg     *wealth.Config
	ledger  *wealth.Ledger
	stores  *Stores
	log     zerolog.Logger
	tracker *wealth.Tracker
}

// setup loads the configuration and the ledger, connects the stores and builds the tracker.
// Warnings and errors logged during a run are copied to the run log.
func setup(ctx context.Context) (*env, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		return nil, err
	}
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log := Log.Hook(store.NewLogHook(stores.RunLog, stores.RunLogName, zerolog.WarnLevel))
	return &env{
		cfg:     cfg,
		ledger:  ledger,
		stores:  stores,
		log:     log,
		tracker: wealth.NewTracker(NewProviders(cfg), cfg, log),
	}, nil
}

// saveRun stores the derived series of run, when a series store is configured.
func (e *env) saveRun(ctx context.Context, run *wealth.Run) error {
	if e.stores.Series == nil {
		return nil
	}
	n, err := store.SaveRun(ctx, e.stores.Series, run)
	observability.RecordStoreWrite(e.stores.SeriesName, "series", n, err)
	if err != nil {
		return fmt.Errorf("could not save run %s: %w", run.ID, err)
	}
	e.log.Debug().Str("run_id", run.ID.String()).Int("points", n).Msg("run saved")
	return nil
}

// execute runs f as the command name, records its outcome and prints its error.
func execute(name string, f func() error) subcommands.ExitStatus {
	err := f()
	observability.RecordRun(name, err)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Raw disables the terminal rendering of markdown.
var Raw = false

// printMarkdown renders md for the terminal, or prints it as is when it cannot.
func printMarkdown(md string) {
	if Raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// writeFile replaces path with the bytes of b.
func writeFile(path string, b *bytes.Buffer) error {
	return os.WriteFile(path, b.Bytes(), 0o644)
}
