package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
)

// renderHeader renders the top bar: logo, user, screen tabs, and freshness.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("brokerdesk", styles.Logo)}
	if !compact {
		who := m.session.Name
		if who == "" {
			who = "signed in"
		}
		parts = append(parts, bg.Render(who, styles.Text)+bg.Space()+
			bg.Render("("+m.session.Role.String()+")", styles.MutedText))
	}

	tabs := make([]string, 0, len(m.screens))
	for i, screen := range m.screens {
		if i == m.current && m.view == ViewTable {
			tabs = append(tabs, bg.Render("["+screen.Title+"]", styles.AccentText.Bold(true)))
		} else if !compact {
			tabs = append(tabs, bg.Render(screen.Title, styles.FaintText))
		}
	}
	if m.view == ViewActivity {
		tabs = append(tabs, bg.Render("[Activity]", styles.AccentText.Bold(true)))
	}
	parts = append(parts, bg.Join(tabs, " "))

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render(classifyError(m.snapshot.LastError), styles.DangerText))
	case !m.snapshot.LastUpdated.IsZero():
		parts = append(parts, bg.Render("updated "+humanize.RelTime(m.snapshot.LastUpdated, m.now(), "ago", "from now"), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// classifyError turns a load failure into a short header badge.
func classifyError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	var apiErr *brokerapi.Error
	if !errors.As(err, &apiErr) {
		return "ERROR"
	}
	switch apiErr.Kind {
	case brokerapi.KindNetwork:
		msg := err.Error()
		switch {
		case strings.Contains(msg, "connection refused"):
			return "OFFLINE"
		case strings.Contains(msg, "no such host"):
			return "HOST NOT FOUND"
		case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
			return "TIMEOUT"
		default:
			return "UNREACHABLE"
		}
	case brokerapi.KindServer:
		return "SERVER ERROR"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.view {
	case ViewActivity:
		followLabel := "Pause"
		if !m.activity.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"f", "Level " + levelLabel(m.activity.minLevel)},
			{"j/k", "Scroll"},
			{"esc", "Back"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"tab", "Screen"},
			{"/", "Search"},
			{"f", "Filter"},
			{"s", "Size"},
			{"R", "Refresh"},
		}
		if screen, ok := m.currentScreen(); ok && screen.Editable(m.session.Role) {
			if screen.CanCreate {
				commands = append(commands, cmd{"n", "New"})
			}
			if screen.CanEdit {
				commands = append(commands, cmd{"e", "Edit"})
			}
			if screen.CanDelete {
				commands = append(commands, cmd{"x", "Delete"})
			}
			for _, a := range screen.Custom {
				commands = append(commands, cmd{a.Key, a.Label})
			}
		}
		commands = append(commands, cmd{"L", "Activity"}, cmd{"?", "More"})
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatusLine renders the summary, page size, filters, search, and the
// latest notification. A failed load adds the retry hint; the summary is
// left out until the screen has loaded once.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var parts []string
	if m.view == ViewTable {
		_, ts, res := m.result()
		if ts != nil {
			if err := m.snapshot.LastError; err != nil {
				parts = append(parts, bg.Render(brokerapi.Message(err)+", press R to retry", styles.DangerText))
			}
			if m.snapshot.Loaded {
				parts = append(parts, bg.Render(res.Summary, styles.Text))
			}
			parts = append(parts, bg.Render("page "+ts.view.PageSize.String(), styles.MutedText))
			if filters := ts.view.ActiveFilters(); len(filters) > 0 {
				parts = append(parts, bg.Render(strings.Join(filters, " "), styles.InfoText))
			}
			switch {
			case m.searching:
				parts = append(parts, m.search.View())
			case ts.view.SearchText != "":
				parts = append(parts, bg.Render("/"+truncate(ts.view.SearchText, 24), styles.AccentText))
			}
		}
	}
	if m.toast.Active(m.now()) {
		parts = append(parts, m.renderToast(styles))
	}
	return styles.Footer.Width(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))
}

// renderToast renders the current notification in its level's color.
func (m Model) renderToast(styles Styles) string {
	var style lipgloss.Style
	switch m.toast.Level {
	case actions.LevelSuccess:
		style = styles.SuccessText
	case actions.LevelError:
		style = styles.DangerText
	default:
		style = styles.InfoText
	}
	return style.Render(m.toast.Text)
}
