package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/etnz/wealth/cmd"
	"github.com/etnz/wealth/logger"
	"github.com/etnz/wealth/observability"
	"github.com/etnz/wealth/trace"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

var version = "dev"

var (
	metricsAddr = flag.String("metrics-addr", "", "Serve prometheus metrics on this address (like :9090) while the command runs")
	tracing     = flag.Bool("trace", false, "Print the pipeline spans on stderr (also WEALTH_TRACING=true)")
	raw         = flag.Bool("raw", false, "Print reports as plain markdown")
)

func main() {
	// Secrets like EODHD_API_KEY can be kept in a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Does nothing unless the shell is asking for completions.
	completion(flag.CommandLine).Complete(name)

	flag.Parse()

	log := logger.New(logger.OptionsFromEnv())
	cmd.Log = log
	cmd.Raw = *raw

	ctx := context.Background()
	if err := trace.Init(version, *tracing, nil); err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	} else if trace.Enabled() {
		log.Debug().Str("version", version).Msg("tracing enabled")
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: observability.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", *metricsAddr).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
	}

	status := commander.Execute(ctx)

	shutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(shutdown); err != nil {
		log.Warn().Err(err).Msg("could not flush spans")
	}
	if status != subcommands.ExitSuccess {
		cancel()
		os.Exit(int(status))
	}
}
