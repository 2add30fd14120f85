package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for talking to the Axotl Xires platform API.
type APIConfig struct {
	// BaseURL is the root URL of the platform API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PollIntervalSec is how often (in seconds) the background poller
	// refreshes the unread counter.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// CacheConfig holds settings for the local offline cache.
type CacheConfig struct {
	// Path is the SQLite database file location. Empty means the
	// default under the user config directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds rendering preferences for the summary panel.
type DisplayConfig struct {
	// SummaryLimit is how many notifications the summary panel shows
	// before collapsing the rest into an "and K more" line.
	SummaryLimit int `mapstructure:"summary_limit" yaml:"summary_limit"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/xires-notify/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "xires-notify", "config.yaml")
}

// DefaultCachePath returns the default SQLite cache location, located
// at ~/.config/xires-notify/cache.db.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".config", "xires-notify", "cache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:         "https://api.axotlxires.org",
			PollIntervalSec: 120,
		},
		Cache: CacheConfig{
			Path: DefaultCachePath(),
		},
		Display: DisplayConfig{
			SummaryLimit: 4,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", "https://api.axotlxires.org")
	v.SetDefault("api.poll_interval_sec", 120)
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("display.summary_limit", 4)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.PollIntervalSec <= 0 {
		cfg.API.PollIntervalSec = 120
	}
	if cfg.Display.SummaryLimit <= 0 {
		cfg.Display.SummaryLimit = 4
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("cache", cfg.Cache)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
