// Package session owns the signed-in user's token and role.
//
// A Manager is created once at startup and handed to every component that
// needs credentials. Nothing reads the session file directly.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Role is the numeric role code issued by the backend at login.
type Role int

const (
	RoleAdmin  Role = 0
	RoleAgent  Role = 1
	RoleBroker Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleAgent:
		return "agent"
	case RoleBroker:
		return "broker"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent || r == RoleBroker
}

// ParseRole accepts a role name or its numeric code.
func ParseRole(value string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "admin":
		return RoleAdmin, nil
	case "agent":
		return RoleAgent, nil
	case "broker":
		return RoleBroker, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Role(n).Valid() {
		return 0, fmt.Errorf("unknown role %q", value)
	}
	return Role(n), nil
}

// ErrUnknownRole reports a session whose role code matches no known role.
var ErrUnknownRole = errors.New("unknown role")

// Session is the persisted client state.
type Session struct {
	Token    string    `toml:"token"`
	Role     Role      `toml:"role"`
	Name     string    `toml:"name,omitempty"`
	IssuedAt time.Time `toml:"issued_at"`
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Manager guards the current session and mirrors it to disk.
type Manager struct {
	mu      sync.RWMutex
	path    string
	current Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(reason string)
}

const defaultSessionPath = "~/.local/state/brokerdesk/session.toml"

// DefaultPath returns the session file used when none is configured.
func DefaultPath() string {
	return defaultSessionPath
}

// NewManager returns a Manager persisting to path. An empty path keeps the
// session in memory only.
func NewManager(path string) *Manager {
	return &Manager{path: strings.TrimSpace(path), subs: make(map[int]func(string))}
}

// Load reads the session file. A missing file leaves the manager signed out,
// as does a stored role that is not known; the latter is reported with
// ErrUnknownRole.
func (m *Manager) Load() (Session, error) {
	if m.path == "" {
		return m.Current(), nil
	}
	resolved, err := expandPath(m.path)
	if err != nil {
		return Session{}, err
	}
	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := toml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session: %w", err)
	}
	s.Token = strings.TrimSpace(s.Token)
	if s.Valid() && !s.Role.Valid() {
		m.mu.Lock()
		m.current = Session{}
		m.mu.Unlock()
		return Session{}, fmt.Errorf("session %s: %w %d", resolved, ErrUnknownRole, int(s.Role))
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}

// Current returns a copy of the active session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the bearer token, or "" when signed out.
func (m *Manager) Token() string {
	return m.Current().Token
}

// Begin installs s as the active session and writes it to disk.
func (m *Manager) Begin(s Session) error {
	s.Token = strings.TrimSpace(s.Token)
	if s.Token == "" {
		return fmt.Errorf("session token is empty")
	}
	if !s.Role.Valid() {
		return fmt.Errorf("session: %w %d", ErrUnknownRole, int(s.Role))
	}
	if s.IssuedAt.IsZero() {
		s.IssuedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return m.write(s)
}

// Invalidate clears the session in memory and on disk, then notifies
// subscribers. It is a no-op when already signed out.
func (m *Manager) Invalidate(reason string) error {
	m.mu.Lock()
	wasValid := m.current.Valid()
	m.current = Session{}
	m.mu.Unlock()

	if !wasValid {
		return nil
	}
	err := m.remove()
	m.notify(reason)
	return err
}

// Subscribe registers fn to run after each invalidation. The returned func
// removes the subscription.
func (m *Manager) Subscribe(fn func(reason string)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify(reason string) {
	m.subMu.Lock()
	fns := make([]func(string), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(reason)
	}
}

func (m *Manager) write(s Session) error {
	if m.path == "" {
		return nil
	}
	resolved, err := expandPath(m.path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (m *Manager) remove() error {
	if m.path == "" {
		return nil
	}
	resolved, err := expandPath(m.path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
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
