package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marketsim/fosim/market"
	"github.com/marketsim/fosim/sim"
)

// Config is the complete simulator configuration.
type Config struct {
	Session  SessionConfig  `json:"session" yaml:"session"`
	Feed     FeedConfig     `json:"feed" yaml:"feed"`
	Provider ProviderConfig `json:"provider,omitempty" yaml:"provider,omitempty"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Run      RunConfig      `json:"run" yaml:"run"`
	Trades   []TradeConfig  `json:"trades,omitempty" yaml:"trades,omitempty"`
}

// SessionConfig seeds the paper-trading session.
type SessionConfig struct {
	Balance float64  `json:"balance" yaml:"balance"`
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// FeedConfig selects and parameterizes the price source.
type FeedConfig struct {
	Source     string  `json:"source" yaml:"source"` // "synthetic" or "historical"
	Mode       string  `json:"mode" yaml:"mode"`     // "wrap", "slide" or "bounded"
	Start      float64 `json:"start,omitempty" yaml:"start,omitempty"`
	Length     int     `json:"length,omitempty" yaml:"length,omitempty"`
	StepStdDev float64 `json:"step_stddev,omitempty" yaml:"step_stddev,omitempty"`
	Floor      float64 `json:"floor,omitempty" yaml:"floor,omitempty"`
	Seed       int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Lookback   string  `json:"lookback,omitempty" yaml:"lookback,omitempty"` // historical only, e.g. "240h"
	Interval   string  `json:"interval,omitempty" yaml:"interval,omitempty"` // e.g. "24h"
}

// ProviderConfig points at the historical-data provider.
type ProviderConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// JournalConfig selects the journal sink.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "memory", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	MarksFile  string `json:"marks_file,omitempty" yaml:"marks_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// RunConfig drives the tick loop.
type RunConfig struct {
	TickInterval string `json:"tick_interval" yaml:"tick_interval"` // e.g. "2s"
	Ticks        int    `json:"ticks" yaml:"ticks"`
	MetricsAddr  string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// TradeConfig is a scripted trade opened before the tick loop starts.
type TradeConfig struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Instrument string  `json:"instrument" yaml:"instrument"` // "future", "call", "put" or "spot"
	Side       string  `json:"side" yaml:"side"`             // "buy" or "sell"
	Quantity   float64 `json:"quantity" yaml:"quantity"`
	Strike     float64 `json:"strike,omitempty" yaml:"strike,omitempty"`
	Premium    float64 `json:"premium,omitempty" yaml:"premium,omitempty"`
	ExpiryDays int     `json:"expiry_days,omitempty" yaml:"expiry_days,omitempty"`
}

// LoadFromFile reads a YAML or JSON config and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Session.Balance <= 0 {
		return fmt.Errorf("session.balance must be positive")
	}
	if len(c.Session.Symbols) == 0 {
		return fmt.Errorf("session.symbols is required")
	}

	switch c.Feed.Source {
	case "synthetic":
		if c.Feed.Length <= 0 {
			return fmt.Errorf("feed.length must be positive for a synthetic feed")
		}
		if c.Feed.Start <= 0 {
			return fmt.Errorf("feed.start must be positive for a synthetic feed")
		}
		if c.Feed.Floor < 0 || c.Feed.Floor > c.Feed.Start {
			return fmt.Errorf("feed.floor must be between 0 and feed.start")
		}
	case "historical":
		if _, err := c.Lookback(); err != nil {
			return fmt.Errorf("feed.lookback: %w", err)
		}
		if _, err := c.Interval(); err != nil {
			return fmt.Errorf("feed.interval: %w", err)
		}
	default:
		return fmt.Errorf("feed.source must be 'synthetic' or 'historical'")
	}

	if _, err := c.Mode(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "memory":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.MarksFile == "" {
			return fmt.Errorf("journal trades_file and marks_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'memory', 'csv' or 'sqlite'")
	}

	if _, err := c.TickInterval(); err != nil {
		return fmt.Errorf("run.tick_interval: %w", err)
	}
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("run.ticks must be positive")
	}

	for i, t := range c.Trades {
		if t.Quantity <= 0 {
			return fmt.Errorf("trades[%d].quantity must be positive", i)
		}
		if _, err := sim.ParseInstrument(t.Instrument); err != nil {
			return fmt.Errorf("trades[%d]: %w", i, err)
		}
		if _, err := sim.ParseSide(t.Side); err != nil {
			return fmt.Errorf("trades[%d]: %w", i, err)
		}
	}
	return nil
}

// Mode parses feed.mode into a market advance mode.
func (c *Config) Mode() (market.Mode, error) {
	switch strings.ToLower(c.Feed.Mode) {
	case "wrap", "":
		return market.Wrap, nil
	case "slide":
		return market.Slide, nil
	case "bounded":
		return market.Bounded, nil
	}
	return 0, fmt.Errorf("feed.mode must be 'wrap', 'slide' or 'bounded'")
}

// Lookback parses feed.lookback, defaulting to 30 days.
func (c *Config) Lookback() (time.Duration, error) {
	if c.Feed.Lookback == "" {
		return 30 * 24 * time.Hour, nil
	}
	return time.ParseDuration(c.Feed.Lookback)
}

// Interval parses feed.interval, defaulting to daily samples.
func (c *Config) Interval() (time.Duration, error) {
	if c.Feed.Interval == "" {
		return 24 * time.Hour, nil
	}
	return time.ParseDuration(c.Feed.Interval)
}

// TickInterval parses run.tick_interval, defaulting to 2s.
func (c *Config) TickInterval() (time.Duration, error) {
	if c.Run.TickInterval == "" {
		return 2 * time.Second, nil
	}
	return time.ParseDuration(c.Run.TickInterval)
}

// Default returns a runnable synthetic-feed configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Balance: 1_000_000,
			Symbols: []string{"TCS.NS"},
		},
		Feed: FeedConfig{
			Source:     "synthetic",
			Mode:       "wrap",
			Start:      1000,
			Length:     178,
			StepStdDev: 5,
			Floor:      100,
		},
		Journal: JournalConfig{
			Type: "memory",
		},
		Run: RunConfig{
			TickInterval: "2s",
			Ticks:        30,
		},
	}
}
