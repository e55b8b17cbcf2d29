package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/export"
)

const detailLabelWidth = 14

// renderDetail renders the selected record: every column as a labelled line,
// then the receipt preview for sales encodings.
func (m Model) renderDetail(screen catalog.Screen, rec brokerapi.Record, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)
	valueWidth := max(width-detailLabelWidth-1, 8)

	var lines []string
	lines = append(lines, bg.Render(truncate(screen.TitleOf(rec), width), styles.Text.Bold(true)))
	lines = append(lines, "")
	lines = append(lines, m.detailLine(bg, styles, "ID", rec.ID(), valueWidth))
	for _, c := range screen.Columns {
		value := singleLine(c.Value(rec))
		if value == "" {
			value = "-"
		}
		lines = append(lines, m.detailLine(bg, styles, c.Title, value, valueWidth))
	}

	if screen.Receipt {
		lines = append(lines, "")
		for _, line := range strings.Split(strings.TrimRight(export.Receipt(rec, m.now()), "\n"), "\n") {
			lines = append(lines, bg.Render(truncate(line, width), styles.MutedText))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) detailLine(bg BgStyle, styles Styles, label, value string, valueWidth int) string {
	style := styles.Text
	if label == "Status" {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(value)))
	}
	return bg.Render(padRight(label, detailLabelWidth), styles.MutedText) + bg.Space() +
		bg.Render(truncate(value, valueWidth), style)
}
