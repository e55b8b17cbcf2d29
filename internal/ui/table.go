package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/tableview"
)

// result runs the current screen's table pipeline over the snapshot.
func (m *Model) result() (catalog.Screen, *tableState, tableview.Result[brokerapi.Record]) {
	screen, ok := m.currentScreen()
	if !ok {
		return catalog.Screen{}, nil, tableview.Result[brokerapi.Record]{}
	}
	ts := m.table(screen)
	return screen, ts, screen.Apply(m.snapshot.Items, ts.view)
}

// selectedRecord returns the highlighted row, if any.
func (m *Model) selectedRecord() (brokerapi.Record, bool) {
	_, ts, res := m.result()
	if ts == nil || ts.selected < 0 || ts.selected >= len(res.Displayed) {
		return nil, false
	}
	return res.Displayed[ts.selected], true
}

// clampSelection keeps the selection on the same record when the rows change,
// falling back to the nearest valid row.
func (m *Model) clampSelection() {
	_, ts, res := m.result()
	if ts == nil {
		return
	}
	rows := res.Displayed
	if len(rows) == 0 {
		ts.selected = 0
		ts.selectedID = ""
		return
	}
	if ts.selectedID != "" {
		for i, r := range rows {
			if r.ID() == ts.selectedID {
				ts.selected = i
				return
			}
		}
	}
	ts.selected = min(max(ts.selected, 0), len(rows)-1)
	ts.selectedID = rows[ts.selected].ID()
}

// moveSelection moves the highlight by delta rows within the displayed view.
func (m *Model) moveSelection(delta int) {
	_, ts, res := m.result()
	if ts == nil || len(res.Displayed) == 0 {
		return
	}
	ts.selected = min(max(ts.selected+delta, 0), len(res.Displayed)-1)
	ts.selectedID = res.Displayed[ts.selected].ID()
}

// resetSelection moves to the first row after the filter changed.
func (m *Model) resetSelection() {
	if _, ts, _ := m.result(); ts != nil {
		ts.selected = 0
		ts.selectedID = ""
	}
	m.clampSelection()
}

// handleTableKey processes keyboard input for the table view.
func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen, ok := m.currentScreen()
	if !ok {
		return m, nil
	}
	ts := m.table(screen)
	page := max(m.tableRows()-1, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Top):
		m.moveSelection(-len(m.snapshot.Items))
	case key.Matches(msg, m.keys.Bottom):
		m.moveSelection(len(m.snapshot.Items))
	case key.Matches(msg, m.keys.PageDown):
		m.moveSelection(page)
	case key.Matches(msg, m.keys.PageUp):
		m.moveSelection(-page)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(ts.view.SearchText)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilter(screen, ts)

	case key.Matches(msg, m.keys.Filters):
		if len(screen.Filter.Predicates) == 0 {
			m.notify(actions.LevelInfo, screen.Title+" has no filters")
			return m, nil
		}
		cmd := m.openFilters(screen, ts)
		return m, cmd

	case key.Matches(msg, m.keys.PageSize):
		ts.view.PageSize = ts.view.PageSize.Cycle(tableview.DefaultPageSizes)
		m.prefs = m.prefs.WithPageSize(screen.ID, ts.view.PageSize)
		m.savePrefs()
		m.clampSelection()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadScreen(screen)

	case key.Matches(msg, m.keys.Escape):
		if ts.view.SearchText != "" {
			ts.view.SearchText = ""
			m.resetSelection()
		}

	case key.Matches(msg, m.keys.New):
		return m.openCreate(screen)
	case key.Matches(msg, m.keys.Edit):
		return m.openEdit(screen)
	case key.Matches(msg, m.keys.Delete):
		return m.openDelete(screen)

	default:
		if action, ok := screen.CustomAction(msg.String()); ok {
			return m.openCustom(screen, action)
		}
	}
	return m, nil
}

// cycleFilter steps the screen's first selectable filter through its options
// and back to no filter.
func (m *Model) cycleFilter(screen catalog.Screen, ts *tableState) {
	for _, p := range screen.Filter.Predicates {
		if len(p.Options) == 0 {
			continue
		}
		next := cycleOption(p.Options, ts.view.Structured[p.Key])
		ts.view = ts.view.WithStructured(p.Key, next)
		m.resetSelection()
		return
	}
	m.notify(actions.LevelInfo, screen.Title+" has no quick filter")
}

// cycleOption returns the option after current, where the cycle is
// all -> options... -> all.
func cycleOption(options []string, current string) string {
	if !tableview.Active(current) {
		return options[0]
	}
	for i, opt := range options {
		if strings.EqualFold(opt, current) {
			if i+1 < len(options) {
				return options[i+1]
			}
			return tableview.NoFilter
		}
	}
	return tableview.NoFilter
}

// handleSearchKey feeds keys to the search box. Every keystroke re-filters.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen, ok := m.currentScreen()
	if !ok {
		m.searching = false
		return m, nil
	}
	ts := m.table(screen)
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		ts.view.SearchText = ""
		m.resetSelection()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if ts.view.SearchText != m.search.Value() {
		ts.view.SearchText = m.search.Value()
		m.resetSelection()
	}
	return m, cmd
}

// updateFocusedInput forwards non-key messages such as cursor blinks to
// whichever text input has focus.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == ViewLogin:
		m.login.inputs[m.login.focused], cmd = m.login.inputs[m.login.focused].Update(msg)
	case m.dialog.Phase() == actions.Open && len(m.form.inputs) > 0:
		m.form.inputs[m.form.focused], cmd = m.form.inputs[m.form.focused].Update(msg)
	case m.filters.open && len(m.filters.inputs) > 0:
		m.filters.inputs[m.filters.focused], cmd = m.filters.inputs[m.filters.focused].Update(msg)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

// tableRows is the number of data rows that fit in the table pane.
func (m Model) tableRows() int {
	// header, command bar, status line, box borders, column header
	return max(m.height-6, 1)
}

// renderMain renders the full console.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if m.view == ViewActivity {
		b.WriteString(m.renderActivity())
	} else {
		b.WriteString(m.renderScreen())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// renderScreen renders the table with the detail pane beside it on wide
// terminals.
func (m Model) renderScreen() string {
	contentHeight := max(m.height-3, 3)
	screen, ts, res := m.result()
	if ts == nil {
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			m.theme.Styles().MutedText.Render("No screens available"))
	}

	tableWidth := m.width
	showDetail := m.width >= LayoutDetailWidth
	if showDetail {
		if m.width >= LayoutExtraWideWidth {
			tableWidth = m.width * 65 / 100
		} else {
			tableWidth = m.width * 60 / 100
		}
	}

	title := fmt.Sprintf("%s (%d/%d)", screen.Title, len(res.Displayed), len(res.Filtered))
	if m.loads.busy(screen.ID) {
		title = m.spinner.View() + " " + title
	}
	table := m.renderTable(screen, ts, res, tableWidth-2, contentHeight-2)
	tablePane := m.renderTitledBox(title, table, tableWidth, contentHeight, true)
	if !showDetail {
		return tablePane
	}

	detailWidth := m.width - tableWidth
	var detail string
	if rec, ok := m.selectedRecord(); ok {
		detail = m.renderDetail(screen, rec, detailWidth-4)
	} else {
		detail = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Render("Select a row")
	}
	detailPane := m.renderTitledBox("Details", detail, detailWidth, contentHeight, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, tablePane, detailPane)
}

// renderTable renders the column header and the displayed rows, scrolled so
// the selection stays visible.
func (m Model) renderTable(screen catalog.Screen, ts *tableState, res tableview.Result[brokerapi.Record], width, height int) string {
	styles := m.theme.Styles()
	bgColor := m.theme.FocusBg

	if len(res.Displayed) == 0 {
		msg := "No entries"
		switch {
		case !m.snapshot.Loaded && m.snapshot.LastError == nil:
			msg = "Loading..."
		case len(m.snapshot.Items) > 0:
			msg = "No entries match the current filters"
		}
		return styles.MutedText.Background(lipgloss.Color(bgColor)).Render(msg)
	}

	preferred := make([]int, len(screen.Columns))
	for i, c := range screen.Columns {
		preferred[i] = c.Width
	}
	widths := fitColumns(preferred, width)

	bg := NewBgStyle(bgColor)
	header := make([]string, len(screen.Columns))
	for i, c := range screen.Columns {
		header[i] = padRight(c.Title, widths[i])
	}
	lines := []string{bg.FillLine(bg.Render(strings.Join(header, " "), styles.AccentText.Bold(true)), width)}

	visible := max(height-1, 1)
	start := 0
	if ts.selected >= visible {
		start = ts.selected - visible + 1
	}
	end := min(start+visible, len(res.Displayed))
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(screen, res.Displayed[i], widths, width, i == ts.selected))
	}
	return strings.Join(lines, "\n")
}

// renderRow renders one record. Status columns take the status color unless
// the row is selected.
func (m Model) renderRow(screen catalog.Screen, rec brokerapi.Record, widths []int, width int, selected bool) string {
	bgColor := m.theme.FocusBg
	text := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Text))
	if selected {
		bgColor = m.theme.SelectionBg
		text = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
	}
	bg := NewBgStyle(bgColor)

	cells := make([]string, len(screen.Columns))
	for i, c := range screen.Columns {
		value := padRight(singleLine(c.Value(rec)), widths[i])
		style := text
		if c.Title == "Status" && !selected {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(value)))
		}
		cells[i] = bg.Render(value, style)
	}
	return bg.FillLine(strings.Join(cells, bg.Space()), width)
}

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleWidth := lipgloss.Width(title)
	leftPad := max((innerWidth-titleWidth-2)/2, 0)
	rightPad := max(innerWidth-titleWidth-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColor))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)
	lines := make([]string, 0, boxHeight+2)
	lines = append(lines, top)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	lines = append(lines, bottom)
	return strings.Join(lines, "\n")
}
