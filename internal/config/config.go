// Package config loads artscroll's persistent configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abelbrown/artscroll/internal/catalog"
	"github.com/abelbrown/artscroll/internal/feed"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the persistent application configuration
type Config struct {
	// DataDir holds the history database, events log and lock file.
	DataDir string `toml:"data_dir"`

	Catalog CatalogConfig `toml:"catalog"`
	Feed    FeedConfig    `toml:"feed"`
	UI      UIConfig      `toml:"ui"`
}

// CatalogConfig points at the museum API.
type CatalogConfig struct {
	BaseURL           string   `toml:"base_url"`
	SearchQuery       string   `toml:"search_query"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Timeout           Duration `toml:"timeout"`
}

// FeedConfig tunes the loader.
type FeedConfig struct {
	BatchSize         int      `toml:"batch_size"`
	AttemptMultiplier int      `toml:"attempt_multiplier"`
	MaxLoadTime       Duration `toml:"max_load_time"`
	LowWaterMark      int      `toml:"low_water_mark"`
	PauseEvery        int      `toml:"pause_every"`
	PauseDuration     Duration `toml:"pause_duration"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	ScrollThreshold int `toml:"scroll_threshold"` // rows from the end that trigger a load
}

// Duration is a time.Duration written as "10s" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	fc := feed.DefaultConfig()
	return &Config{
		DataDir: "~/.artscroll",
		Catalog: CatalogConfig{
			BaseURL:           catalog.DefaultBaseURL,
			RequestsPerSecond: 20,
			Timeout:           Duration{15 * time.Second},
		},
		Feed: FeedConfig{
			BatchSize:         fc.BatchSize,
			AttemptMultiplier: fc.AttemptMultiplier,
			MaxLoadTime:       Duration{fc.MaxLoadTime},
			LowWaterMark:      fc.LowWaterMark,
			PauseEvery:        fc.PauseEvery,
			PauseDuration:     Duration{fc.PauseDuration},
		},
		UI: UIConfig{
			ScrollThreshold: 2,
		},
	}
}

// Path returns the path to the config file
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "artscroll", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "artscroll", "config.toml")
}

// Load reads config from Path(), or returns defaults
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from path. A missing file yields defaults. Keys absent
// from the file keep their default values. Environment overrides are applied
// last and the result is validated.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ARTSCROLL_API_BASE"); v != "" {
		c.Catalog.BaseURL = v
	}
	if v := os.Getenv("ARTSCROLL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Catalog.BaseURL) == "":
		return fmt.Errorf("%w: catalog.base_url must be set", ErrInvalid)
	case c.Catalog.RequestsPerSecond < 0:
		return fmt.Errorf("%w: catalog.requests_per_second must not be negative", ErrInvalid)
	case c.Catalog.Timeout.Duration <= 0:
		return fmt.Errorf("%w: catalog.timeout must be positive", ErrInvalid)
	case c.Feed.BatchSize <= 0:
		return fmt.Errorf("%w: feed.batch_size must be positive", ErrInvalid)
	case c.Feed.AttemptMultiplier <= 0:
		return fmt.Errorf("%w: feed.attempt_multiplier must be positive", ErrInvalid)
	case c.Feed.MaxLoadTime.Duration <= 0:
		return fmt.Errorf("%w: feed.max_load_time must be positive", ErrInvalid)
	case c.Feed.LowWaterMark < 0:
		return fmt.Errorf("%w: feed.low_water_mark must not be negative", ErrInvalid)
	case c.Feed.PauseEvery <= 0:
		return fmt.Errorf("%w: feed.pause_every must be positive", ErrInvalid)
	case c.Feed.PauseDuration.Duration < 0:
		return fmt.Errorf("%w: feed.pause_duration must not be negative", ErrInvalid)
	case c.UI.ScrollThreshold < 0:
		return fmt.Errorf("%w: ui.scroll_threshold must not be negative", ErrInvalid)
	}
	return nil
}

// ResolvedDataDir returns DataDir with a leading ~ expanded.
func (c *Config) ResolvedDataDir() (string, error) {
	dir := c.DataDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir, nil
}

// DBPath is the shown-history database.
func (c *Config) DBPath() (string, error) {
	return c.dataFile("artscroll.db")
}

// EventsPath is the JSONL events log.
func (c *Config) EventsPath() (string, error) {
	return c.dataFile("artscroll.events.jsonl")
}

// LockPath is the single-instance lock file.
func (c *Config) LockPath() (string, error) {
	return c.dataFile("artscroll.lock")
}

func (c *Config) dataFile(name string) (string, error) {
	dir, err := c.ResolvedDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// LoaderConfig converts the feed section for feed.NewLoader.
func (c *Config) LoaderConfig() feed.Config {
	return feed.Config{
		BatchSize:         c.Feed.BatchSize,
		AttemptMultiplier: c.Feed.AttemptMultiplier,
		MaxLoadTime:       c.Feed.MaxLoadTime.Duration,
		LowWaterMark:      c.Feed.LowWaterMark,
		PauseEvery:        c.Feed.PauseEvery,
		PauseDuration:     c.Feed.PauseDuration.Duration,
	}
}

// ClientOptions converts the catalog section for catalog.NewClient.
func (c *Config) ClientOptions() catalog.Options {
	return catalog.Options{
		BaseURL:           c.Catalog.BaseURL,
		SearchQuery:       c.Catalog.SearchQuery,
		RequestsPerSecond: c.Catalog.RequestsPerSecond,
		Timeout:           c.Catalog.Timeout.Duration,
	}
}
