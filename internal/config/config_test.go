package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)

	wantDataDir, err := expandPath(defaultDataDir)
	require.NoError(t, err)
	assert.Equal(t, wantDataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(wantDataDir, "catalog.json"), cfg.CatalogPath)
	assert.Equal(t, defaultTrackerBaseURL, cfg.TrackerBaseURL)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.FlushInterval)
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.RefreshMinInterval)
	assert.Equal(t, 5*time.Second, cfg.RateLimitCooldown)
	assert.False(t, cfg.UseTrackerAPI)
	assert.False(t, cfg.SyncEnabled())
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
use_tracker_api = true
tracker_api_key = "  abc123  "
tracker_base_url = " http://localhost:9000/api "
data_dir = "  ~/.raidtrack  "
log_level = "DEBUG"
flush_interval = "10s"
rate_limit_cooldown = "2s"
strict_decrement = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.UseTrackerAPI)
	assert.Equal(t, "abc123", cfg.TrackerAPIKey)
	assert.Equal(t, "http://localhost:9000/api", cfg.TrackerBaseURL)
	assert.True(t, strings.HasPrefix(cfg.DataDir, home), "DataDir = %q", cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "catalog.json"), cfg.CatalogPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.FlushInterval)
	assert.Equal(t, 2*time.Second, cfg.RateLimitCooldown)
	assert.Equal(t, defaultRefreshMinInterval, cfg.RefreshMinInterval)
	assert.True(t, cfg.StrictDecrement)
	assert.True(t, cfg.SyncEnabled())
	assert.Equal(t, filepath.Join(cfg.DataDir, "raidtrack.log"), cfg.LogPath())
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	_, err := Load(writeConfig(t, `use_tracker_api = [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidDurationFails(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", `flush_interval = "soon"`},
		{"negative", `rate_limit_cooldown = "-5s"`},
		{"zero", `refresh_interval = "0s"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parse config")
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RAIDTRACK_API_KEY", "from-env")
	t.Setenv("RAIDTRACK_USE_TRACKER_API", "true")
	t.Setenv("RAIDTRACK_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, `
use_tracker_api = false
tracker_api_key = "from-file"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TrackerAPIKey)
	assert.True(t, cfg.UseTrackerAPI)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestSyncEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"disabled flag", Config{UseTrackerAPI: false, TrackerAPIKey: "real"}, false},
		{"empty key", Config{UseTrackerAPI: true, TrackerAPIKey: "  "}, false},
		{"placeholder key", Config{UseTrackerAPI: true, TrackerAPIKey: PlaceholderAPIKey}, false},
		{"enabled", Config{UseTrackerAPI: true, TrackerAPIKey: "real"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.SyncEnabled())
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a/b"), got)
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	_, err := expandPath("   ")
	assert.Error(t, err)
}
