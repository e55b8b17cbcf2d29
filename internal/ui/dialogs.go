package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/tableview"
)

const (
	formLabelWidth = 22
	formInputWidth = 34
)

// formState holds the text inputs of an open create or edit dialog, plus the
// target and prompt of a confirmation.
type formState struct {
	target  actions.Target
	inputs  []textinput.Model
	focused int
	prompt  string
	label   string
}

// filterModal edits every structured filter of the current screen at once.
type filterModal struct {
	open    bool
	screen  string
	keys    []string
	labels  []string
	inputs  []textinput.Model
	focused int
	err     string
}

// --- Row actions ---

func (m Model) openCreate(screen catalog.Screen) (tea.Model, tea.Cmd) {
	if !screen.CanCreate || !screen.Editable(m.session.Role) {
		return m, nil
	}
	return m.openForm(screen, actions.ModeCreate, nil)
}

func (m Model) openEdit(screen catalog.Screen) (tea.Model, tea.Cmd) {
	if !screen.CanEdit || !screen.Editable(m.session.Role) {
		return m, nil
	}
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}
	return m.openForm(screen, actions.ModeEdit, rec)
}

func (m Model) openForm(screen catalog.Screen, mode actions.Mode, rec brokerapi.Record) (tea.Model, tea.Cmd) {
	if err := m.dialog.OpenForm(mode, screen.Form, rec); err != nil {
		m.notify(actions.LevelError, err.Error())
		return m, nil
	}
	m.form = formState{target: screen.Target()}
	for _, f := range screen.Form {
		in := textinput.New()
		in.Width = formInputWidth
		in.CharLimit = 256
		in.Placeholder = placeholderFor(f)
		in.SetValue(m.dialog.Value(f.Name))
		m.form.inputs = append(m.form.inputs, in)
	}
	if len(m.form.inputs) == 0 {
		m.dialog.Close()
		m.notify(actions.LevelError, screen.Title+" has no form")
		return m, nil
	}
	cmd := m.form.focus(0)
	return m, cmd
}

func placeholderFor(f actions.FormField) string {
	switch f.Kind {
	case actions.FieldNumber:
		return "0"
	case actions.FieldDate:
		return "YYYY-MM-DD"
	case actions.FieldChoice:
		return strings.Join(f.Options, " / ")
	case actions.FieldFile:
		return "path to file"
	default:
		if f.Required {
			return "required"
		}
		return ""
	}
}

func (m Model) openDelete(screen catalog.Screen) (tea.Model, tea.Cmd) {
	if !screen.CanDelete || !screen.Editable(m.session.Role) {
		return m, nil
	}
	action := catalog.RowAction{Name: actions.ActionDelete, Label: "Delete", Confirm: "Delete %s? This cannot be undone."}
	return m.openCustom(screen, action)
}

func (m Model) openCustom(screen catalog.Screen, action catalog.RowAction) (tea.Model, tea.Cmd) {
	if !screen.Editable(m.session.Role) {
		return m, nil
	}
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}
	title := screen.TitleOf(rec)
	if err := m.dialog.OpenConfirm(action.Name, rec.ID(), title); err != nil {
		m.notify(actions.LevelError, err.Error())
		return m, nil
	}
	prompt := action.Confirm
	if prompt == "" {
		prompt = action.Label + " %s?"
	}
	m.form = formState{
		target: screen.Target(),
		prompt: strings.ReplaceAll(prompt, "%s", title),
		label:  action.Label,
	}
	return m, nil
}

// focus moves focus to input i.
func (f *formState) focus(i int) tea.Cmd {
	f.focused = i
	for j := range f.inputs {
		if j != i {
			f.inputs[j].Blur()
		}
	}
	return f.inputs[i].Focus()
}

// handleDialogKey handles keys while a form or confirmation is open. Nothing
// but quit is accepted while a request is in flight.
func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog.Phase() == actions.Submitting {
		return m, nil
	}

	if m.dialog.Mode() == actions.ModeConfirm {
		switch {
		case key.Matches(msg, m.keys.Accept):
			return m.submitDialog()
		case key.Matches(msg, m.keys.Decline):
			m.dialog.Close()
			m.form = formState{}
		}
		return m, nil
	}

	n := len(m.form.inputs)
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.dialog.Close()
		m.form = formState{}
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.submitDialog()
	case key.Matches(msg, m.keys.NextScreen), msg.String() == "down":
		cmd := m.form.focus((m.form.focused + 1) % n)
		return m, cmd
	case key.Matches(msg, m.keys.PrevScreen), msg.String() == "up":
		cmd := m.form.focus((m.form.focused - 1 + n) % n)
		return m, cmd
	}

	var cmd tea.Cmd
	i := m.form.focused
	m.form.inputs[i], cmd = m.form.inputs[i].Update(msg)
	m.dialog.Set(m.dialog.Fields()[i].Name, m.form.inputs[i].Value())
	return m, cmd
}

// submitDialog validates and dispatches the open dialog. Validation errors
// keep the form open with the messages under each field.
func (m Model) submitDialog() (tea.Model, tea.Cmd) {
	for i, f := range m.dialog.Fields() {
		if i < len(m.form.inputs) {
			m.dialog.Set(f.Name, m.form.inputs[i].Value())
		}
	}
	req, err := m.dialog.Submit()
	switch {
	case errors.Is(err, actions.ErrInvalid):
		for i, f := range m.dialog.Fields() {
			if m.dialog.FieldError(f.Name) != "" {
				cmd := m.form.focus(i)
				return m, cmd
			}
		}
		return m, nil
	case err != nil:
		return m, nil
	case m.dispatcher == nil:
		m.dialog.Resolve(errors.New("actions are not available"))
		return m, nil
	}
	return m, executeCmd(m.ctx, m.dispatcher, m.form.target, req)
}

// renderDialog renders the open form or confirmation.
func (m Model) renderDialog() string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.dialog.Mode() == actions.ModeConfirm {
		b.WriteString(styles.Text.Render(m.form.prompt))
		b.WriteString("\n\n")
		m.writeDialogFooter(&b, "y: "+m.form.label+"  •  n/Esc: Cancel")
		return m.renderModal(m.form.label, b.String(), 56)
	}

	for i, f := range m.dialog.Fields() {
		if i >= len(m.form.inputs) {
			break
		}
		label := f.Label
		if label == "" {
			label = f.Name
		}
		if f.Required {
			label += " *"
		}
		b.WriteString(m.fieldLabel(label, formLabelWidth, m.form.focused == i))
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
		if msg := m.dialog.FieldError(f.Name); msg != "" {
			b.WriteString(padRight("", formLabelWidth))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	m.writeDialogFooter(&b, "Enter: Save  •  Tab: Next field  •  Esc: Cancel")

	verb := "New"
	if m.dialog.Mode() == actions.ModeEdit {
		verb = "Edit"
	}
	return m.renderModal(verb+" "+singular(m.form.target.Title), b.String(), formLabelWidth+formInputWidth+10)
}

// writeDialogFooter writes the in-flight spinner, the last failure, or the
// key hints.
func (m Model) writeDialogFooter(b *strings.Builder, hints string) {
	styles := m.theme.Styles()
	switch {
	case m.dialog.Phase() == actions.Submitting:
		b.WriteString(m.spinner.View() + " " + styles.MutedText.Render("Saving..."))
	case m.dialog.Err() != "":
		b.WriteString(styles.DangerText.Render(m.dialog.Err()))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(hints))
	default:
		b.WriteString(styles.FaintText.Render(hints))
	}
}

// singular trims a trailing "s" from a screen title for dialog headings.
func singular(title string) string {
	switch {
	case strings.HasSuffix(title, "ies"):
		return strings.TrimSuffix(title, "ies") + "y"
	case strings.HasSuffix(title, "s"):
		return strings.TrimSuffix(title, "s")
	default:
		return title
	}
}

// --- Filter modal ---

// openFilters opens the filter editor prefilled with the screen's filters.
func (m *Model) openFilters(screen catalog.Screen, ts *tableState) tea.Cmd {
	m.filters = filterModal{open: true, screen: screen.ID}
	for _, p := range screen.Filter.Predicates {
		in := textinput.New()
		in.Width = 30
		in.CharLimit = 64
		if len(p.Options) > 0 {
			in.Placeholder = strings.Join(p.Options, " / ")
		} else {
			in.Placeholder = "YYYY-MM-DD..YYYY-MM-DD"
		}
		in.SetValue(ts.view.Structured[p.Key])
		m.filters.keys = append(m.filters.keys, p.Key)
		m.filters.labels = append(m.filters.labels, p.Label)
		m.filters.inputs = append(m.filters.inputs, in)
	}
	return m.filters.focus(0)
}

func (f *filterModal) focus(i int) tea.Cmd {
	f.focused = i
	for j := range f.inputs {
		if j != i {
			f.inputs[j].Blur()
		}
	}
	return f.inputs[i].Focus()
}

// handleFiltersKey handles keyboard input for the filter modal.
func (m Model) handleFiltersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.filters.inputs)
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filters = filterModal{}
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if m.applyFilters() {
			m.filters = filterModal{}
		}
		return m, nil

	case key.Matches(msg, m.keys.NextScreen), msg.String() == "down":
		cmd := m.filters.focus((m.filters.focused + 1) % n)
		return m, cmd

	case key.Matches(msg, m.keys.PrevScreen), msg.String() == "up":
		cmd := m.filters.focus((m.filters.focused - 1 + n) % n)
		return m, cmd

	case msg.String() == "ctrl+x":
		for i := range m.filters.inputs {
			m.filters.inputs[i].SetValue("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	i := m.filters.focused
	m.filters.inputs[i], cmd = m.filters.inputs[i].Update(msg)
	return m, cmd
}

// applyFilters copies the modal's values into the screen's filter state and
// reports whether it did. Option values are matched case-insensitively. A
// value matching no option, or a date range that does not parse, leaves the
// state untouched and the modal open with the error.
func (m *Model) applyFilters() bool {
	screen, ok := m.currentScreen()
	if !ok || screen.ID != m.filters.screen {
		return true
	}
	ts := m.table(screen)
	next := ts.view
	for i, k := range m.filters.keys {
		value := strings.TrimSpace(m.filters.inputs[i].Value())
		if p, ok := screen.Filter.Predicate(k); ok && tableview.Active(value) {
			if len(p.Options) > 0 {
				opt, found := canonicalOption(p.Options, value)
				if !found {
					m.filters.err = p.Label + " must be one of: " + strings.Join(p.Options, ", ")
					return false
				}
				value = opt
			} else if _, _, err := tableview.ParseDateRange(value); err != nil {
				m.filters.err = p.Label + ": " + err.Error()
				return false
			}
		}
		next = next.WithStructured(k, value)
	}
	ts.view = next
	m.resetSelection()
	return true
}

func canonicalOption(options []string, value string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt, true
		}
	}
	return "", false
}

// renderFilters renders the filter modal.
func (m Model) renderFilters() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.MutedText.Render("Leave blank or type \"all\" to disable a filter."))
	b.WriteString("\n\n")
	for i, in := range m.filters.inputs {
		b.WriteString(m.fieldLabel(m.filters.labels[i], 12, m.filters.focused == i))
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if m.filters.err != "" {
		b.WriteString(styles.DangerText.Render(m.filters.err))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("Enter: Apply  •  Esc: Cancel  •  Ctrl+X: Clear"))
	return m.renderModal("Filters", b.String(), 60)
}
