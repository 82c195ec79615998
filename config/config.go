package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// StrategyConfig holds the tunable parameters of the crossover strategy.
// All of them are fixed once the strategy is constructed.
type StrategyConfig struct {
	Symbol string `yaml:"symbol"`

	FastWindow     int     `yaml:"fast_window"`     // default 50
	SlowWindow     int     `yaml:"slow_window"`     // default 200
	EntryThreshold float64 `yaml:"entry_threshold"` // default 10, account currency
	WarmupBuffer   int     `yaml:"warmup_buffer"`   // default 10 bars beyond SlowWindow

	// TargetFraction is the share of portfolio value an Enter allocates.
	TargetFraction float64 `yaml:"target_fraction"` // default 1.0

	// QuantityPrecision defines the number of decimal places to round to.
	QuantityPrecision int `yaml:"quantity_precision"`

	// Minimum order size accepted by the broker (e.g. 0.00001 BTC).
	MinQty float64 `yaml:"min_qty"`

	// StepSize – the increment allowed by the exchange.
	StepSize float64 `yaml:"step_size"`
}

// DefaultStrategyConfig returns the BTCUSDT 50/200 setup.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Symbol:            "BTCUSDT",
		FastWindow:        50,
		SlowWindow:        200,
		EntryThreshold:    10,
		WarmupBuffer:      10,
		TargetFraction:    1.0,
		QuantityPrecision: 5,
		MinQty:            0.00001,
		StepSize:          0.00001,
	}
}

// WarmupBars is the number of observations suppressed before trading.
func (c StrategyConfig) WarmupBars() int {
	return c.SlowWindow + c.WarmupBuffer
}

// Validate checks every field and reports all problems together.
func (c *StrategyConfig) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Symbol == "" {
		add("symbol is required")
	}
	if c.FastWindow <= 0 {
		add("fast_window (%d) must be positive", c.FastWindow)
	}
	if c.SlowWindow <= 0 {
		add("slow_window (%d) must be positive", c.SlowWindow)
	}
	if c.FastWindow > 0 && c.SlowWindow > 0 && c.FastWindow >= c.SlowWindow {
		add("fast_window (%d) must be smaller than slow_window (%d)", c.FastWindow, c.SlowWindow)
	}
	if c.WarmupBuffer < 0 {
		add("warmup_buffer (%d) cannot be negative", c.WarmupBuffer)
	}
	if c.EntryThreshold < 0 {
		add("entry_threshold (%f) cannot be negative", c.EntryThreshold)
	}
	if c.TargetFraction <= 0 || c.TargetFraction > 1 {
		add("target_fraction (%f) must be >0 and <=1", c.TargetFraction)
	}
	if c.QuantityPrecision < 0 {
		add("quantity_precision cannot be negative")
	}
	if c.MinQty < 0 {
		add("min_qty cannot be negative")
	}
	if c.StepSize <= 0 {
		add("step_size must be positive")
	}
	return errs
}

// AccountConfig describes the simulated cash account.
type AccountConfig struct {
	Currency     string  `yaml:"currency"`
	StartingCash float64 `yaml:"starting_cash"`
}

// FeedConfig selects where bars come from.
type FeedConfig struct {
	Kind     string `yaml:"kind"` // csv or binance
	Path     string `yaml:"path"`
	Interval string `yaml:"interval"`
	Start    string `yaml:"start"` // RFC3339
	End      string `yaml:"end"`   // RFC3339
}

// LogConfig mirrors logger.Options.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the full runtime configuration of cmd/smacross.
type Config struct {
	Strategy    StrategyConfig `yaml:"strategy"`
	Account     AccountConfig  `yaml:"account"`
	Feed        FeedConfig     `yaml:"feed"`
	Log         LogConfig      `yaml:"log"`
	MetricsAddr string         `yaml:"metrics_addr"`
}

// Default returns a runnable configuration.
func Default() Config {
	return Config{
		Strategy: DefaultStrategyConfig(),
		Account: AccountConfig{
			Currency:     "USDT",
			StartingCash: 50,
		},
		Feed: FeedConfig{
			Kind:     "csv",
			Interval: "1m",
			Start:    "2025-01-01T00:00:00Z",
			End:      "2025-06-01T00:00:00Z",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate checks the strategy section and the runtime sections.
func (c *Config) Validate() error {
	errs := c.Strategy.Validate()
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.Account.Currency == "" {
		add("account.currency is required")
	}
	if c.Account.StartingCash <= 0 {
		add("account.starting_cash (%f) must be positive", c.Account.StartingCash)
	}
	switch c.Feed.Kind {
	case "csv":
		if c.Feed.Path == "" {
			add("feed.path is required for csv feeds")
		}
	case "binance":
		if c.Feed.Interval == "" {
			add("feed.interval is required for binance feeds")
		}
	default:
		add("feed.kind %q must be csv or binance", c.Feed.Kind)
	}
	return errs
}

// Parse overlays YAML data on top of Default. Callers validate once any
// command-line overrides are applied.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML file; an empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}
