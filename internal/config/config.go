// Package config provides configuration file parsing for champrules.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up in Dir().
const FileName = "config.toml"

// Config holds user settings. Command-line flags override every field.
type Config struct {
	Mining MiningConfig `toml:"mining"`
	Ingest IngestConfig `toml:"ingest"`
	Watch  WatchConfig  `toml:"watch"`
	Log    LogConfig    `toml:"log"`
}

// MiningConfig holds the default mining parameters.
type MiningConfig struct {
	Support    float64 `toml:"support"`    // percent, 0-100
	Confidence float64 `toml:"confidence"` // percent, 0-100
	Shards     int     `toml:"shards"`     // aggregation goroutines
	MinGames   int     `toml:"min_games"`  // hide pairs seen less often
	Sort       string  `toml:"sort"`       // confidence, support, lift, winrate, games
	Limit      int     `toml:"limit"`      // rows shown, 0 = all
}

// IngestConfig controls how match files are read.
type IngestConfig struct {
	Queues []int  `toml:"queues"`
	Region string `toml:"region"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce string `toml:"debounce"` // e.g. "2s"
	Rescan   string `toml:"rescan"`   // periodic re-import, "0" disables
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Mining: MiningConfig{
			Support:    1,
			Confidence: 50,
			Shards:     1,
			MinGames:   0,
			Sort:       "confidence",
			Limit:      25,
		},
		Ingest: IngestConfig{
			Queues: []int{400, 420, 430, 440},
		},
		Watch: WatchConfig{
			Debounce: "2s",
			Rescan:   "0",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns the champrules config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/champrules if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "champrules"), nil
}

// DefaultPath returns {Dir()}/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config at path. Keys missing from the file keep their
// default values. If the file does not exist, the defaults are returned
// without an error. The result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

var sortKeys = []string{"confidence", "support", "lift", "winrate", "games"}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if err := percent("mining.support", c.Mining.Support); err != nil {
		return err
	}
	if err := percent("mining.confidence", c.Mining.Confidence); err != nil {
		return err
	}
	if c.Mining.Shards < 1 {
		return fmt.Errorf("mining.shards must be at least 1: %d", c.Mining.Shards)
	}
	if c.Mining.MinGames < 0 {
		return fmt.Errorf("mining.min_games cannot be negative: %d", c.Mining.MinGames)
	}
	if c.Mining.Limit < 0 {
		return fmt.Errorf("mining.limit cannot be negative: %d", c.Mining.Limit)
	}
	if !oneOf(c.Mining.Sort, sortKeys) {
		return fmt.Errorf("invalid mining.sort %q (must be one of %s)", c.Mining.Sort, strings.Join(sortKeys, ", "))
	}

	for _, q := range c.Ingest.Queues {
		if q <= 0 {
			return fmt.Errorf("invalid queue id in ingest.queues: %d", q)
		}
	}

	if _, err := c.DebounceInterval(); err != nil {
		return fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}
	if _, err := c.RescanInterval(); err != nil {
		return fmt.Errorf("invalid watch.rescan %q: %w", c.Watch.Rescan, err)
	}

	if !oneOf(c.Log.Level, logLevels) {
		return fmt.Errorf("invalid log.level %q (must be one of debug, info, warn, error)", c.Log.Level)
	}

	return nil
}

// DebounceInterval returns the watch debounce as a duration.
func (c *Config) DebounceInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return d, nil
}

// RescanInterval returns the periodic re-import interval. Zero disables it.
func (c *Config) RescanInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Rescan)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return d, nil
}

func percent(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100: %v", name, v)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
