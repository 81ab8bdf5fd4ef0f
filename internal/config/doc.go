// Package config handles loading raidtrack's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/raidtrack/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Environment variables override whatever the file set
//
// # Default Values
//
//   - Config file: ~/.config/raidtrack/config.toml
//   - Data directory: ~/.local/share/raidtrack
//   - Catalog cache: <data_dir>/catalog.json
//   - Log file: <data_dir>/raidtrack.log
//   - Tracker API: https://tarkovtracker.org/api/v2
//   - Flush interval: 30s, refresh interval: 60s
//   - Minimum refresh interval: 30s, 429 cooldown: 5s
//
// # TOML Format
//
//	use_tracker_api = true
//	tracker_api_key = "..."
//	tracker_base_url = "https://tarkovtracker.org/api/v2"
//	data_dir = "~/.local/share/raidtrack"
//	catalog_path = "~/.local/share/raidtrack/catalog.json"
//	log_level = "info"
//	flush_interval = "30s"
//	refresh_interval = "60s"
//	refresh_min_interval = "30s"
//	rate_limit_cooldown = "5s"
//	strict_decrement = false
//
// Durations use Go duration syntax and must be positive.
//
// # Environment
//
//   - RAIDTRACK_API_KEY: tracker API key
//   - RAIDTRACK_USE_TRACKER_API: "true"/"false"
//   - RAIDTRACK_LOG_LEVEL: debug, info, warn, error
//
// # Remote Sync Gate
//
// Config.SyncEnabled is the single precondition for any remote call: the
// usage flag must be on and the key must be non-empty and not the
// placeholder "APIKey". When it is false the engine never touches the
// network and local tracking still works.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and invalid durations. A missing config
// file is not an error.
package config
