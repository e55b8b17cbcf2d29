package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"tab/S-tab", "Next/previous screen"},
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
				{"ctrl+d/u", "Page down/up"},
				{"esc", "Clear search / back"},
			},
		},
		{
			title: "Table",
			items: []helpItem{
				{"/", "Search"},
				{"f", "Cycle quick filter"},
				{"F", "Edit filters"},
				{"s", "Cycle page size"},
				{"R", "Refresh"},
			},
		},
		{
			title: "Records",
			items: []helpItem{
				{"n", "New"},
				{"e", "Edit selected"},
				{"x", "Delete selected"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"L", "Activity log"},
				{"T", "Cycle theme"},
				{"O", "Sign out"},
				{"h/?", "Toggle help"},
				{"ctrl+c", "Quit"},
			},
		},
	}
	if screen, ok := m.currentScreen(); ok && len(screen.Custom) > 0 && screen.Editable(m.session.Role) {
		custom := helpSection{title: screen.Title}
		for _, a := range screen.Custom {
			custom.items = append(custom.items, helpItem{a.Key, a.Label})
		}
		sections = slices.Insert(sections, 3, custom)
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	var b strings.Builder
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return m.renderModal("Keyboard Shortcuts", b.String(), 44)
}
