package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/maxxenergy/maxxacct/internal/validate"
)

const (
	signupFieldFirstName = iota
	signupFieldLastName
	signupFieldEmail
	signupFieldConfirmEmail
	signupFieldCount
)

var signupFieldLabels = [signupFieldCount]string{
	"first name",
	"last name",
	"email",
	"confirm email",
}

var signupFieldKeys = [signupFieldCount]string{
	validate.FieldFirstName,
	validate.FieldLastName,
	validate.FieldEmail,
	validate.FieldConfirmEmail,
}

// submitSignupMsg asks the root model to run the account creation flow.
type submitSignupMsg struct {
	firstName    string
	lastName     string
	email        string
	confirmEmail string
}

// signupDoneMsg carries the account creation result.
type signupDoneMsg struct {
	err error
}

// signupModel handles the account creation form.
type signupModel struct {
	inputs     [signupFieldCount]textinput.Model
	focus      int
	errors     validate.Errors
	message    string
	submitting bool
}

func newSignupModel() signupModel {
	var inputs [signupFieldCount]textinput.Model
	for i := range signupFieldCount {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[signupFieldFirstName].Focus()

	return signupModel{inputs: inputs}
}

func (m signupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m.updateInput(msg)
}

func (m signupModel) handleKey(msg tea.KeyMsg) (signupModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if msg.Type == tea.KeyEsc {
		return m, func() tea.Msg { return navigateMsg{view: viewLogin} }
	}

	switch msg.String() {
	case "tab":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % signupFieldCount
		m.inputs[m.focus].Focus()
		return m, textinput.Blink

	case "shift+tab":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus - 1 + signupFieldCount) % signupFieldCount
		m.inputs[m.focus].Focus()
		return m, textinput.Blink

	case "enter":
		return m.submit()
	}

	m.message = ""
	return m.updateInput(msg)
}

func (m signupModel) submit() (signupModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	fields := validate.Fields{
		FirstName:       m.inputs[signupFieldFirstName].Value(),
		LastName:        m.inputs[signupFieldLastName].Value(),
		Email:           m.inputs[signupFieldEmail].Value(),
		ConfirmEmail:    m.inputs[signupFieldConfirmEmail].Value(),
		RequireLastName: true,
		RequireConfirm:  true,
	}

	// any validation error blocks submission
	m.errors = validate.Check(fields)
	if !m.errors.Valid() {
		return m, nil
	}

	m.submitting = true
	m.message = ""
	return m, func() tea.Msg {
		return submitSignupMsg{
			firstName:    fields.FirstName,
			lastName:     fields.LastName,
			email:        fields.Email,
			confirmEmail: fields.ConfirmEmail,
		}
	}
}

func (m signupModel) updateInput(msg tea.Msg) (signupModel, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m signupModel) View() string {
	s := "\n  " + zstyle.Title.Render("create your account") + "\n\n"

	for i := range signupFieldCount {
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		label := zstyle.MutedText.Render(fmt.Sprintf("%-14s", signupFieldLabels[i]))
		s += fmt.Sprintf("  %s%s %s\n", cursor, label, m.inputs[i].View())

		if msg, ok := m.errors[signupFieldKeys[i]]; ok {
			s += "       " + zstyle.StatusErr.Render(msg) + "\n"
		}
	}

	s += "\n"
	switch {
	case m.submitting:
		s += "  " + zstyle.MutedText.Render("creating...") + "\n"
	case m.message != "":
		s += "  " + zstyle.StatusErr.Render(m.message) + "\n"
	default:
		s += "\n"
	}

	return s
}
