package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings raidtrack needs.
type Config struct {
	UseTrackerAPI      bool
	TrackerAPIKey      string
	TrackerBaseURL     string
	DataDir            string
	CatalogPath        string
	LogLevel           string
	FlushInterval      time.Duration
	RefreshInterval    time.Duration
	RefreshMinInterval time.Duration
	RateLimitCooldown  time.Duration
	StrictDecrement    bool
}

// PlaceholderAPIKey is the value shipped in sample settings; it never
// authenticates.
const PlaceholderAPIKey = "APIKey"

const (
	defaultConfigPath         = "~/.config/raidtrack/config.toml"
	defaultDataDir            = "~/.local/share/raidtrack"
	defaultTrackerBaseURL     = "https://tarkovtracker.org/api/v2"
	defaultLogLevel           = "info"
	defaultFlushInterval      = 30 * time.Second
	defaultRefreshInterval    = 60 * time.Second
	defaultRefreshMinInterval = 30 * time.Second
	defaultRateLimitCooldown  = 5 * time.Second
)

type fileConfig struct {
	UseTrackerAPI      bool   `toml:"use_tracker_api"`
	TrackerAPIKey      string `toml:"tracker_api_key"`
	TrackerBaseURL     string `toml:"tracker_base_url"`
	DataDir            string `toml:"data_dir"`
	CatalogPath        string `toml:"catalog_path"`
	LogLevel           string `toml:"log_level"`
	FlushInterval      string `toml:"flush_interval"`
	RefreshInterval    string `toml:"refresh_interval"`
	RefreshMinInterval string `toml:"refresh_min_interval"`
	RateLimitCooldown  string `toml:"rate_limit_cooldown"`
	StrictDecrement    bool   `toml:"strict_decrement"`
}

type envOverrides struct {
	TrackerAPIKey string `env:"RAIDTRACK_API_KEY"`
	UseTrackerAPI *bool  `env:"RAIDTRACK_USE_TRACKER_API"`
	LogLevel      string `env:"RAIDTRACK_LOG_LEVEL"`
}

// Load locates and parses the config, falling back to defaults when missing.
// Environment variables override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := Config{
		UseTrackerAPI:   raw.UseTrackerAPI,
		TrackerAPIKey:   strings.TrimSpace(raw.TrackerAPIKey),
		TrackerBaseURL:  strings.TrimSpace(raw.TrackerBaseURL),
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		StrictDecrement: raw.StrictDecrement,
	}
	if cfg.TrackerBaseURL == "" {
		cfg.TrackerBaseURL = defaultTrackerBaseURL
	}

	cfg.DataDir = strings.TrimSpace(raw.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.DataDir = mustExpand(cfg.DataDir)

	cfg.CatalogPath = strings.TrimSpace(raw.CatalogPath)
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = filepath.Join(cfg.DataDir, "catalog.json")
	}
	cfg.CatalogPath = mustExpand(cfg.CatalogPath)

	durations := []struct {
		key  string
		raw  string
		def  time.Duration
		dest *time.Duration
	}{
		{"flush_interval", raw.FlushInterval, defaultFlushInterval, &cfg.FlushInterval},
		{"refresh_interval", raw.RefreshInterval, defaultRefreshInterval, &cfg.RefreshInterval},
		{"refresh_min_interval", raw.RefreshMinInterval, defaultRefreshMinInterval, &cfg.RefreshMinInterval},
		{"rate_limit_cooldown", raw.RateLimitCooldown, defaultRateLimitCooldown, &cfg.RateLimitCooldown},
	}
	for _, d := range durations {
		value, err := parseDuration(d.raw, d.def)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dest = value
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if key := strings.TrimSpace(overrides.TrackerAPIKey); key != "" {
		cfg.TrackerAPIKey = key
	}
	if overrides.UseTrackerAPI != nil {
		cfg.UseTrackerAPI = *overrides.UseTrackerAPI
	}
	if level := strings.TrimSpace(overrides.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	return cfg, nil
}

// SyncEnabled reports whether remote calls are allowed: the usage flag is
// on and a real API key is configured.
func (c Config) SyncEnabled() bool {
	key := strings.TrimSpace(c.TrackerAPIKey)
	return c.UseTrackerAPI && key != "" && key != PlaceholderAPIKey
}

// LogPath returns the path of the application log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/raidtrack.log")
	}
	return filepath.Join(c.DataDir, "raidtrack.log")
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", trimmed)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
