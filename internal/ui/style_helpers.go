package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints text segments on one shared background. lipgloss resets
// attributes between separately rendered segments, so the spaces between
// words would otherwise fall back to the terminal background.
type BgStyle struct {
	color lipgloss.Color
	fill  lipgloss.Style
	space string
}

func NewBgStyle(bgColor string) BgStyle {
	color := lipgloss.Color(bgColor)
	fill := lipgloss.NewStyle().Background(color)
	return BgStyle{color: color, fill: fill, space: fill.Render(" ")}
}

// Render draws text in style over the shared background, word by word.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.color)
	words := strings.Split(text, " ")
	if len(words) == 1 {
		return styled.Render(text)
	}
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

func (b BgStyle) Space() string { return b.space }

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.fill.Render(strings.Repeat(" ", n))
}

// Sep paints a literal separator.
func (b BgStyle) Sep(sep string) string {
	return b.fill.Render(sep)
}

// Join joins already rendered parts with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}

// FillLine pads content to width so the row is painted edge to edge.
func (b BgStyle) FillLine(content string, width int) string {
	return b.fill.Width(width).Render(content)
}
