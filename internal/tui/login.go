package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/maxxenergy/maxxacct/internal/validate"
)

const (
	loginFieldFirstName = iota
	loginFieldEmail
	loginFieldRemember
	loginFieldCount
)

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

// submitLoginMsg asks the root model to run the login flow.
type submitLoginMsg struct {
	firstName string
	email     string
	remember  bool
}

// loginDoneMsg carries the login flow result.
type loginDoneMsg struct {
	id  string
	err error
}

// loginModel handles the first-name+email login form.
type loginModel struct {
	inputs     [2]textinput.Model
	focus      int
	remember   bool
	message    string
	messageErr bool
	submitting bool
}

func newLoginModel(justSignedUp bool) loginModel {
	var inputs [2]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[loginFieldFirstName].Focus()

	m := loginModel{inputs: inputs}
	if justSignedUp {
		m.message = "Account created. Please log in."
	}
	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m.updateInput(msg)
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch msg.String() {
	case "ctrl+n":
		return m, func() tea.Msg { return navigateMsg{view: viewSignup} }

	case "tab":
		return m.moveFocus(1), textinput.Blink

	case "shift+tab":
		return m.moveFocus(-1), textinput.Blink

	case "enter":
		return m.submit()

	case " ":
		if m.focus == loginFieldRemember {
			m.remember = !m.remember
			return m, nil
		}
	}

	// typing clears any leftover status message
	m.message = ""
	m.messageErr = false
	return m.updateInput(msg)
}

func (m loginModel) moveFocus(delta int) loginModel {
	if m.focus < loginFieldRemember {
		m.inputs[m.focus].Blur()
	}
	m.focus = (m.focus + delta + loginFieldCount) % loginFieldCount
	if m.focus < loginFieldRemember {
		m.inputs[m.focus].Focus()
	}
	return m
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.submitting {
		// double-submit guard is advisory only
		return m, nil
	}

	firstName := strings.TrimSpace(m.inputs[loginFieldFirstName].Value())
	email := strings.TrimSpace(m.inputs[loginFieldEmail].Value())

	// fail fast before any network call
	if firstName == "" {
		return m.withError("First name is required."), nil
	}
	if !validate.EmailOK(email) {
		return m.withError("Enter a valid email."), nil
	}

	m.submitting = true
	m.message = ""
	m.messageErr = false
	remember := m.remember
	return m, func() tea.Msg {
		return submitLoginMsg{firstName: firstName, email: email, remember: remember}
	}
}

func (m loginModel) withError(msg string) loginModel {
	m.message = msg
	m.messageErr = true
	return m
}

func (m loginModel) updateInput(msg tea.Msg) (loginModel, tea.Cmd) {
	if m.focus >= loginFieldRemember {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) View() string {
	s := "\n  " + zstyle.Title.Render("log in to your account") + "\n\n"

	labels := [2]string{"first name", "email"}
	for i := range m.inputs {
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		label := zstyle.MutedText.Render(fmt.Sprintf("%-12s", labels[i]))
		s += fmt.Sprintf("  %s%s %s\n", cursor, label, m.inputs[i].View())
	}

	check := "[ ]"
	if m.remember {
		check = "[x]"
	}
	cursor := "  "
	if m.focus == loginFieldRemember {
		cursor = "> "
	}
	s += fmt.Sprintf("  %s%s %s\n", cursor, check, zstyle.MutedText.Render("remember me"))

	s += "\n"
	switch {
	case m.submitting:
		s += "  " + zstyle.MutedText.Render("checking...") + "\n"
	case m.message != "" && m.messageErr:
		s += "  " + zstyle.StatusErr.Render(m.message) + "\n"
	case m.message != "":
		s += "  " + zstyle.StatusOK.Render(m.message) + "\n"
	default:
		s += "\n"
	}

	return s
}
