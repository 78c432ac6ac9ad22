package wealth

import (
	"errors"
	"fmt"
	"os"

	"github.com/etnz/wealth/date"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a tracking run.
type Config struct {
	// Report window. Zero dates leave the window open.
	Start date.Date `yaml:"start"`
	End   date.Date `yaml:"end"`
	// Columns left out of the tracking report.
	Exclude []string `yaml:"exclude"`

	// Backtest report window start and excluded columns.
	BacktestStart   date.Date `yaml:"backtest_start"`
	BacktestExclude []string  `yaml:"backtest_exclude"`
	// Resampling frequency for backtests: none, W, M or B.
	Resample string `yaml:"resample"`

	Window    int     `yaml:"window"`     // rolling window length
	Coverage  float64 `yaml:"coverage"`   // minimum observed fraction of a rolling window
	Reference string  `yaml:"reference"`  // reference asset for rolling correlations
	WeightLag int     `yaml:"weight_lag"` // 0 couples weights and returns of the same date, 1 lags weights
	RiskFree  float64 `yaml:"risk_free"`  // annual risk free rate for Sharpe ratios

	Assets []Asset `yaml:"assets"`
	Ledger string  `yaml:"ledger"`

	Providers struct {
		CSVDir      string `yaml:"csv_dir"`
		EODHDAPIKey string `yaml:"eodhd_api_key"`
		Concurrency int    `yaml:"concurrency"`
		NoCache     bool   `yaml:"no_cache"`
	} `yaml:"providers"`

	Store struct {
		RunLog      string `yaml:"run_log"` // memory, sqlite or postgres
		Series      string `yaml:"series"`  // none, memory, sqlite, postgres or clickhouse
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
		ClickHouse  string `yaml:"clickhouse_dsn"`
	} `yaml:"store"`

	LogLevel string `yaml:"log_level"`
	Currency string `yaml:"currency"` // ledger amounts currency, for display only
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Window == 0 {
		c.Window = 90
	}
	if c.Coverage == 0 {
		c.Coverage = DefaultCoverage
	}
	if c.Reference == "" {
		c.Reference = "XDEM"
	}
	if c.Ledger == "" {
		c.Ledger = "ledger.jsonl"
	}
	if c.Providers.CSVDir == "" {
		c.Providers.CSVDir = "."
	}
	if c.Providers.Concurrency == 0 {
		c.Providers.Concurrency = 4
	}
	if c.Store.RunLog == "" {
		c.Store.RunLog = "memory"
	}
	if c.Store.Series == "" {
		c.Store.Series = "none"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "wealth.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Currency == "" {
		c.Currency = "EUR"
	}
	for i, a := range c.Assets {
		c.Assets[i] = NewAsset(a.Ticker, a.Name, a.Source)
	}
}

// ApplyEnv overrides secrets and connection strings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		c.Providers.EODHDAPIKey = v
	}
	if v := os.Getenv("WEALTH_POSTGRES_DSN"); v != "" {
		c.Store.PostgresDSN = v
	}
	if v := os.Getenv("WEALTH_CLICKHOUSE_DSN"); v != "" {
		c.Store.ClickHouse = v
	}
	if v := os.Getenv("WEALTH_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
}

// Frequency returns the parsed backtest resampling frequency.
func (c *Config) Frequency() (Frequency, error) { return ParseFrequency(c.Resample) }

// Rolling returns the rolling options for returns observed at frequency f.
func (c *Config) Rolling(f Frequency) RollingOptions {
	return RollingOptions{Window: c.Window, Coverage: c.Coverage, PeriodsPerYear: f.PeriodsPerYear()}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Window < 2 {
		return fmt.Errorf("window must be at least 2, got %d", c.Window)
	}
	if c.Coverage <= 0 || c.Coverage > 1 {
		return fmt.Errorf("coverage must be in (0, 1], got %v", c.Coverage)
	}
	if c.WeightLag != 0 && c.WeightLag != 1 {
		return fmt.Errorf("weight_lag must be 0 or 1, got %d", c.WeightLag)
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("end %s is before start %s", c.End, c.Start)
	}
	if _, err := c.Frequency(); err != nil {
		return err
	}
	if c.Providers.Concurrency < 1 {
		return errors.New("providers.concurrency must be positive")
	}
	switch c.Store.RunLog {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store.run_log %q, want memory, sqlite or postgres", c.Store.RunLog)
	}
	switch c.Store.Series {
	case "none", "memory", "sqlite", "postgres", "clickhouse":
	default:
		return fmt.Errorf("unknown store.series %q", c.Store.Series)
	}
	return ValidateAssets(c.Assets)
}

// LoadConfig reads a yaml configuration file, applies defaults and environment overrides,
// and validates it.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("could not decode config %q: %w", path, err)
	}
	c.applyDefaults()
	c.ApplyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
