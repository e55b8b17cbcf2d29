package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/brokerdesk/internal/logtail"
)

// activityLevels is the cycle of minimum levels; "" shows everything.
var activityLevels = []string{"", "info", "warn", "error"}

// activityState holds the activity log view: the tail of the console's own
// log file, filtered by level.
type activityState struct {
	viewport viewport.Model
	entries  []logtail.Entry
	minLevel string
	follow   bool
	err      error
}

func newActivityState() activityState {
	return activityState{
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

func levelLabel(level string) string {
	if level == "" {
		return "all"
	}
	return level
}

// resizeActivity fits the viewport inside the titled box.
func (m *Model) resizeActivity() {
	m.activity.viewport.Width = max(m.width-4, 1)
	m.activity.viewport.Height = max(m.height-5, 1)
	m.refreshActivity()
}

// handleActivity stores a fresh read of the log file.
func (m *Model) handleActivity(msg activityMsg) {
	m.activity.err = msg.err
	if msg.err == nil {
		m.activity.entries = msg.entries
	}
	m.refreshActivity()
}

// refreshActivity re-renders the viewport content and keeps the bottom in
// view while following.
func (m *Model) refreshActivity() {
	m.activity.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.activity.viewport.SetContent(m.renderActivityContent())
	if m.activity.follow {
		m.activity.viewport.GotoBottom()
	}
}

func (m Model) renderActivityContent() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Render("Logging to a file is disabled")
	}
	if m.activity.err != nil {
		return styles.DangerText.Render(m.activity.err.Error())
	}

	width := m.activity.viewport.Width
	lines := make([]string, 0, len(m.activity.entries))
	for _, e := range m.activity.entries {
		if m.activity.minLevel != "" && !e.AtLeast(m.activity.minLevel) {
			continue
		}
		text := e.Format()
		if width > 0 {
			text = truncate(singleLine(text), width)
		}
		lines = append(lines, m.levelStyle(e.Level, styles).Render(text))
	}
	if len(lines) == 0 {
		return styles.MutedText.Render("No activity yet")
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.Text
	}
}

// handleActivityKey processes keyboard input in the activity view.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.activity.viewport
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = ViewTable
		m.syncSnapshot()
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		m.activity.minLevel = nextLevel(m.activity.minLevel)
		m.refreshActivity()

	case key.Matches(msg, m.keys.ToggleFollow):
		m.activity.follow = !m.activity.follow
		if m.activity.follow {
			vp.GotoBottom()
			return m, readActivityCmd(m.logPath)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, readActivityCmd(m.logPath)

	case key.Matches(msg, m.keys.Down):
		vp.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.activity.follow = false
		vp.LineUp(1)
	case key.Matches(msg, m.keys.PageDown):
		vp.HalfViewDown()
	case key.Matches(msg, m.keys.PageUp):
		m.activity.follow = false
		vp.HalfViewUp()
	case key.Matches(msg, m.keys.Top):
		m.activity.follow = false
		vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.activity.follow = true
		vp.GotoBottom()
	}
	return m, nil
}

func nextLevel(current string) string {
	for i, level := range activityLevels {
		if level == current {
			return activityLevels[(i+1)%len(activityLevels)]
		}
	}
	return activityLevels[0]
}

// renderActivity renders the activity log box.
func (m Model) renderActivity() string {
	contentHeight := max(m.height-3, 3)
	title := "Activity"
	if m.activity.minLevel != "" {
		title += " (" + m.activity.minLevel + "+)"
	}
	if !m.activity.follow {
		title += " paused"
	}
	return m.renderTitledBox(title, m.activity.viewport.View(), m.width, contentHeight, true)
}
