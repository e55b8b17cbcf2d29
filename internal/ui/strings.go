package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// truncate shortens value to fit limit terminal cells, adding an ellipsis
// when something was cut. Wide runes such as CJK names count as two cells.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(value) <= limit {
		return value
	}
	if limit == 1 {
		return runewidth.Truncate(value, limit, "")
	}
	return runewidth.Truncate(value, limit, ellipsis)
}

// padRight pads s with spaces to exactly width cells, truncating first when
// it is too wide.
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(truncate(s, width), width)
}

// fitColumns shrinks preferred column widths until they fit into total cells,
// leaving one cell between columns. The widest column gives way first and no
// column drops below minColumnWidth.
func fitColumns(preferred []int, total int) []int {
	widths := make([]int, len(preferred))
	used := 0
	for i, w := range preferred {
		widths[i] = max(w, minColumnWidth)
		used += widths[i]
	}
	if len(widths) > 1 {
		used += len(widths) - 1
	}
	for used > total {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
		used--
	}
	return widths
}

// singleLine collapses whitespace so backend text cannot break table rows.
func singleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
