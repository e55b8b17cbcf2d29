// Package config loads brokerdesk's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/brokerdesk/config.toml
//  3. If the config file doesn't exist, fall back to defaults
//  4. Environment variables override file values
//
// Command-line flags are applied by the caller after Load returns.
//
// # Default Values
//
//   - API endpoint: http://127.0.0.1:8000
//   - Request timeout: 10 seconds
//   - Background refresh: disabled
//   - Page size: 10
//   - Session file: ~/.local/state/brokerdesk/session.toml
//   - Log file: ~/.local/state/brokerdesk/brokerdesk.log
//
// # TOML Format
//
//	api_url = "https://brokerage.example.com"
//	timeout_seconds = 10
//	refresh_seconds = 30
//	page_size = "all"       # or an integer
//	session_path = "~/.local/state/brokerdesk/session.toml"
//	log_path = "~/.local/state/brokerdesk/brokerdesk.log"
//
// # Environment
//
//   - BROKERDESK_API_URL replaces api_url
//   - BROKERDESK_TOKEN supplies a bearer token for scripted use
//   - BROKERDESK_ROLE names that token's role (default agent)
//
// Missing config files are NOT an error. Malformed files are.
package config
