// Package config loads lockdash's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path
//  2. ~/.config/lockdash/config.toml
//  3. Built-in defaults when the file does not exist
//
// Fields that are missing, empty or non-positive keep their defaults.
//
// # Default Values
//
//   - API base URL: http://localhost:8000
//   - Poll interval: 5 seconds
//   - Statistics window: 7 days
//   - WebSocket reconnect delay: 3 seconds
//   - Log file: ~/.local/share/lockdash/lockdash.log
//
// # TOML Format
//
//	api_base_url = "http://door.local:8000"
//	poll_seconds = 5
//	stats_days = 7
//	reconnect_seconds = 3
//
//	[log]
//	level = "debug"
//	format = "console"   # or "json"
//	file = "~/.local/share/lockdash/lockdash.log"
//
// The API base URL here is only the startup default. An endpoint chosen at
// runtime from the dashboard is persisted in prefs and takes precedence.
//
// # Error Handling
//
// Missing config files are not an error. Load returns errors for path
// expansion failures, unreadable files and TOML parse errors.
package config
