package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/brokerdesk/internal/tableview"
)

// Config holds everything brokerdesk reads from config.toml and the environment.
type Config struct {
	APIURL      string
	Timeout     time.Duration
	Refresh     time.Duration // zero disables background polling
	PageSize    tableview.PageSize
	SessionPath string
	LogPath     string
	Token       string // from BROKERDESK_TOKEN; skips interactive login
	Role        string // from BROKERDESK_ROLE; role for Token
}

const (
	defaultConfigPath  = "~/.config/brokerdesk/config.toml"
	defaultSessionPath = "~/.local/state/brokerdesk/session.toml"
	defaultLogPath     = "~/.local/state/brokerdesk/brokerdesk.log"
	defaultAPIURL      = "http://127.0.0.1:8000"
	defaultTimeout     = 10 * time.Second
	defaultPageSize    = tableview.PageSize(10)

	// EnvAPIURL overrides api_url.
	EnvAPIURL = "BROKERDESK_API_URL"
	// EnvToken supplies a bearer token without a stored session.
	EnvToken = "BROKERDESK_TOKEN"
	// EnvRole names the role of EnvToken; defaults to agent.
	EnvRole = "BROKERDESK_ROLE"

	defaultTokenRole = "agent"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:      defaultAPIURL,
		Timeout:     defaultTimeout,
		PageSize:    defaultPageSize,
		SessionPath: mustExpand(defaultSessionPath),
		LogPath:     mustExpand(defaultLogPath),
	}
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses config.toml, falling back to defaults when missing,
// then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		RefreshSeconds int    `toml:"refresh_seconds"`
		PageSize       any    `toml:"page_size"`
		SessionPath    string `toml:"session_path"`
		LogPath        string `toml:"log_path"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.RefreshSeconds > 0 {
		cfg.Refresh = time.Duration(raw.RefreshSeconds) * time.Second
	}
	if raw.PageSize != nil {
		size, err := parsePageSize(raw.PageSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: page_size: %w", err)
		}
		cfg.PageSize = size
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
		c.Role = defaultTokenRole
		if r := strings.TrimSpace(os.Getenv(EnvRole)); r != "" {
			c.Role = r
		}
	}
}

func parsePageSize(v any) (tableview.PageSize, error) {
	switch val := v.(type) {
	case int64:
		return tableview.ParsePageSize(strconv.FormatInt(val, 10))
	case string:
		return tableview.ParsePageSize(val)
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
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
