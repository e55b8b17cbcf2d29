package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderModal centers a bordered dialog with title and body over the whole
// screen. Help, forms, confirmations, and the filter editor share it.
func (m Model) renderModal(title, body string, width int) string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", max(width-6, 10))))
	b.WriteString("\n\n")
	b.WriteString(body)

	if m.width > 0 {
		width = min(width, m.width-2)
	}
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// fieldLabel renders a form label, highlighted when its input has focus.
func (m Model) fieldLabel(label string, width int, focused bool) string {
	styles := m.theme.Styles()
	text := padRight(label+":", width)
	if focused {
		return styles.AccentText.Render(text)
	}
	return styles.MutedText.Render(text)
}
