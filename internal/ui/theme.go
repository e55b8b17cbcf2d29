package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the resolved set of colors the console draws with.
type Theme struct {
	Name string

	Background string // outermost fill
	Surface    string // panels
	SurfaceAlt string // header and status bars
	FocusBg    string // modal bodies and focused inputs

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	tones map[tone]string
}

// tone is the meaning a record status carries, independent of palette.
type tone int

const (
	toneGood tone = iota
	toneWaiting
	toneAttention
	toneClosed
	toneBad
	toneVoid
)

// statusTones maps the statuses the brokerage API reports onto tones. Keys
// are lowercase.
var statusTones = map[string]tone{
	"available":  toneGood,
	"approved":   toneGood,
	"licensed":   toneGood,
	"reserved":   toneWaiting,
	"pending":    toneWaiting,
	"unlicensed": toneAttention,
	"sold":       toneClosed,
	"rejected":   toneBad,
	"cancelled":  toneVoid,
}

// palette is the raw swatch a theme is derived from.
type palette struct {
	base, panel, raised, focus, selection  string
	line, text, subtle, dim                string
	blue, green, yellow, orange, red, cyan string
}

func (p palette) theme(name string) Theme {
	return Theme{
		Name:          name,
		Background:    p.base,
		Surface:       p.panel,
		SurfaceAlt:    p.raised,
		FocusBg:       p.focus,
		SelectionBg:   p.selection,
		SelectionText: p.text,
		Border:        p.line,
		BorderFocus:   p.blue,
		Text:          p.text,
		Muted:         p.subtle,
		Faint:         p.dim,
		Accent:        p.blue,
		Success:       p.green,
		Warning:       p.yellow,
		Danger:        p.red,
		Info:          p.cyan,
		tones:         map[tone]string{
			toneGood:      p.green,
			toneWaiting:   p.yellow,
			toneAttention: p.orange,
			toneClosed:    p.blue,
			toneBad:       p.red,
			toneVoid:      p.dim,
		},
	}
}

// Palettes: Nightfox (EdenEast/nightfox.nvim), Kanagawa (rebelot/kanagawa.nvim),
// Slate (Tailwind slate and sky).
var (
	nightfox = palette{
		base: "#131a24", panel: "#192330", raised: "#212e3f", focus: "#29394f", selection: "#2b3b51",
		line: "#39506d", text: "#cdcecf", subtle: "#738091", dim: "#71839b",
		blue: "#719cd6", green: "#81b29a", yellow: "#dbc074", orange: "#f4a261", red: "#c94f6d", cyan: "#63cdcf",
	}
	kanagawa = palette{
		base: "#16161D", panel: "#1F1F28", raised: "#2A2A37", focus: "#2A2A37", selection: "#2D4F67",
		line: "#54546D", text: "#DCD7BA", subtle: "#C8C093", dim: "#727169",
		blue: "#7E9CD8", green: "#98BB6C", yellow: "#E6C384", orange: "#FFA066", red: "#E46876", cyan: "#7FB4CA",
	}
	slate = palette{
		base: "#020617", panel: "#0f172a", raised: "#1e293b", focus: "#283548", selection: "#0284c7",
		line: "#334155", text: "#f1f5f9", subtle: "#94a3b8", dim: "#64748b",
		blue: "#38bdf8", green: "#22c55e", yellow: "#f59e0b", orange: "#fb923c", red: "#ef4444", cyan: "#06b6d4",
	}
)

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	"Nightfox": nightfox.theme("Nightfox"),
	"Kanagawa": kanagawa.theme("Kanagawa"),
	"Slate":    slate.theme("Slate"),
}

// GetTheme returns the named theme, or the first one for unknown names.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

func ThemeNames() []string {
	return themeOrder
}

// StatusColor returns the color for a record status such as "Sold" or
// "Pending"; unknown statuses use the text color.
func (t Theme) StatusColor(status string) string {
	if tn, ok := statusTones[strings.ToLower(strings.TrimSpace(status))]; ok {
		if color := t.tones[tn]; color != "" {
			return color
		}
	}
	return t.Text
}

// Styles are the text and bar styles built from a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the theme's styles.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),
		Header:      bar.Foreground(lipgloss.Color(t.Text)),
		Footer:      bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:        fg(t.Warning).Bold(true),
	}
}

// WithBackground returns a copy of s where every style paints bgColor
// instead of inheriting the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	return Styles{
		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),
		InfoText:    s.InfoText.Background(bg),
		Header:      s.Header.Background(bg),
		Footer:      s.Footer.Background(bg),
		Logo:        s.Logo.Background(bg),
	}
}
