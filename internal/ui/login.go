package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
)

// loginForm is the sign-in view shown whenever there is no session.
type loginForm struct {
	inputs  [2]textinput.Model // email, password
	focused int
	busy    bool
	err     string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 120
	email.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.Width = 32
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := loginForm{inputs: [2]textinput.Model{email, password}}
	f.inputs[0].Focus()
	return f
}

// reset clears the password and any error. The email is kept so signing
// back in only needs the password.
func (f *loginForm) reset() {
	f.inputs[1].SetValue("")
	f.busy = false
	f.err = ""
}

// focus moves focus to input i.
func (f *loginForm) focus(i int) tea.Cmd {
	f.focused = i
	for j := range f.inputs {
		if j != i {
			f.inputs[j].Blur()
		}
	}
	return f.inputs[i].Focus()
}

func (f loginForm) email() string    { return strings.TrimSpace(f.inputs[0].Value()) }
func (f loginForm) password() string { return f.inputs[1].Value() }

// handleLoginKey handles keyboard input on the login form.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NextScreen), msg.String() == "down":
		cmd := m.login.focus((m.login.focused + 1) % len(m.login.inputs))
		return m, cmd

	case key.Matches(msg, m.keys.PrevScreen), msg.String() == "up":
		n := len(m.login.inputs)
		cmd := m.login.focus((m.login.focused - 1 + n) % n)
		return m, cmd

	case key.Matches(msg, m.keys.Confirm):
		if m.login.focused == 0 {
			cmd := m.login.focus(1)
			return m, cmd
		}
		return m.submitLogin()

	case key.Matches(msg, m.keys.Escape):
		m.login.err = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focused], cmd = m.login.inputs[m.login.focused].Update(msg)
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	email, password := m.login.email(), m.login.password()
	switch {
	case email == "":
		m.login.err = "Email is required"
		cmd := m.login.focus(0)
		return m, cmd
	case password == "":
		m.login.err = "Password is required"
		cmd := m.login.focus(1)
		return m, cmd
	case m.loader == nil:
		m.login.err = "No server configured"
		return m, nil
	}
	m.login.busy = true
	m.login.err = ""
	return m, loginCmd(m.ctx, m.loader, email, password)
}

// handleLogin finishes a sign-in attempt.
func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = brokerapi.Message(msg.err)
		m.login.inputs[1].SetValue("")
		cmd := m.login.focus(1)
		return m, cmd
	}
	m.login.reset()
	m.enterSession(msg.session)
	screen, ok := m.currentScreen()
	if !ok {
		m.login.err = "This account has no screens"
		return m, nil
	}
	m.logger.Info("console session started", zap.String("role", msg.session.Role.String()))
	name := msg.session.Name
	if name == "" {
		name = msg.session.Role.String()
	}
	m.notify(actions.LevelSuccess, "Signed in as "+name)
	return m, m.loadScreen(screen)
}

// renderLogin renders the centered sign-in box.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("brokerdesk"))
	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render("back office"))
	b.WriteString("\n\n")

	labels := [2]string{"Email", "Password"}
	for i, input := range m.login.inputs {
		b.WriteString(m.fieldLabel(labels[i], 10, m.login.focused == i))
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.login.busy:
		b.WriteString(m.spinner.View() + " " + styles.MutedText.Render("Signing in..."))
	case m.login.err != "":
		b.WriteString(styles.DangerText.Render(m.login.err))
	default:
		b.WriteString(styles.FaintText.Render("Enter: Sign in  •  Tab: Next field  •  Ctrl+C: Quit"))
	}
	if m.toast.Active(m.now()) {
		b.WriteString("\n\n")
		b.WriteString(m.renderToast(styles))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 3).
		Width(min(56, max(m.width-2, 20))).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)))
}
