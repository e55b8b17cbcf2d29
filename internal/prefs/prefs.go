// Package prefs handles brokerdesk user preferences persistence.
// Preferences are stored in ~/.config/brokerdesk/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/brokerdesk/internal/tableview"
)

// Prefs holds user preferences for brokerdesk.
type Prefs struct {
	Theme string `toml:"theme"`
	// PageSizes remembers the page-size choice per screen ID ("25", "all").
	PageSizes map[string]string `toml:"page_sizes,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/brokerdesk/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// PageSize returns the remembered size for screen, or fallback when none is
// stored or the stored value no longer parses.
func (p Prefs) PageSize(screen string, fallback tableview.PageSize) tableview.PageSize {
	raw, ok := p.PageSizes[screen]
	if !ok {
		return fallback
	}
	size, err := tableview.ParsePageSize(raw)
	if err != nil {
		return fallback
	}
	return size
}

// WithPageSize returns a copy of p remembering size for screen.
func (p Prefs) WithPageSize(screen string, size tableview.PageSize) Prefs {
	next := make(map[string]string, len(p.PageSizes)+1)
	for k, v := range p.PageSizes {
		next[k] = v
	}
	next[screen] = size.String()
	p.PageSizes = next
	return p
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs
		}
		return prefs // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme} // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}

	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
