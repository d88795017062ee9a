package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/maxxenergy/maxxacct/internal/profile"
	"github.com/maxxenergy/maxxacct/internal/validate"
)

type profilePhase int

const (
	phaseLoading profilePhase = iota
	phaseLoadError
	phaseViewing
	phaseEditing
)

const (
	editFieldFirstName = iota
	editFieldLastName
	editFieldEmail
	editFieldCount
)

var editFieldLabels = [editFieldCount]string{
	"first name",
	"last name",
	"email",
}

var editFieldKeys = [editFieldCount]string{
	validate.FieldFirstName,
	validate.FieldLastName,
	validate.FieldEmail,
}

// profileLoadedMsg carries the session resolution result.
type profileLoadedMsg struct {
	gen    int
	record profile.Record
	err    error
}

// retryLoadMsg asks the root model to retry a failed profile load.
type retryLoadMsg struct{}

// startSaveMsg asks the root model to issue the update request.
type startSaveMsg struct {
	payload profile.Record
	seq     int
}

// saveDoneMsg carries the update request result.
type saveDoneMsg struct {
	gen     int
	seq     int
	payload profile.Record
	err     error
}

// logoutMsg asks the root model to clear the identity and return to login.
type logoutMsg struct{}

// profileModel displays and edits the resolved profile record.
type profileModel struct {
	phase    profilePhase
	spin     spinner.Model
	sess     *profile.Session
	inputs   [editFieldCount]textinput.Model
	focus    int
	flash    string
	flashErr bool
	loadErr  string
}

func newProfileModel() profileModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = zstyle.MutedText

	var inputs [editFieldCount]textinput.Model
	for i := range editFieldCount {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.Prompt = ""
		inputs[i] = ti
	}

	return profileModel{phase: phaseLoading, spin: sp, inputs: inputs}
}

func (m profileModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase == phaseLoading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.updateInput(msg)
}

func (m profileModel) handleKey(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	switch m.phase {
	case phaseLoading:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case phaseLoadError:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "r":
			return m, func() tea.Msg { return retryLoadMsg{} }
		case "l":
			return m, func() tea.Msg { return logoutMsg{} }
		}
		return m, nil

	case phaseViewing:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "e":
			return m.startEdit()
		case "l":
			return m, func() tea.Msg { return logoutMsg{} }
		}
		return m, nil

	case phaseEditing:
		return m.handleEditKey(msg)
	}

	return m, nil
}

func (m profileModel) handleEditKey(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if msg.Type == tea.KeyEsc {
		return m.cancelEdit()
	}

	switch msg.String() {
	case "tab":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % editFieldCount
		m.inputs[m.focus].Focus()
		return m, textinput.Blink

	case "shift+tab":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus - 1 + editFieldCount) % editFieldCount
		m.inputs[m.focus].Focus()
		return m, textinput.Blink

	case "enter":
		return m.save()
	}

	m.flash = ""
	return m.updateInput(msg)
}

func (m profileModel) startEdit() (profileModel, tea.Cmd) {
	m.sess.StartEdit()

	working := m.sess.Working()
	m.inputs[editFieldFirstName].SetValue(working.FirstName)
	m.inputs[editFieldLastName].SetValue(working.LastName)
	m.inputs[editFieldEmail].SetValue(working.Email)

	for i := range editFieldCount {
		m.inputs[i].Blur()
	}
	m.focus = editFieldFirstName
	m.inputs[m.focus].Focus()

	m.phase = phaseEditing
	m.flash = ""
	return m, textinput.Blink
}

func (m profileModel) cancelEdit() (profileModel, tea.Cmd) {
	m.sess.CancelEdit()
	m.phase = phaseViewing
	m.flash = ""
	return m, nil
}

func (m profileModel) save() (profileModel, tea.Cmd) {
	if m.sess.Pending() {
		// advisory guard; a second save would still behave correctly
		return m, nil
	}

	payload, seq, ok := m.sess.BeginSave()
	if !ok {
		// errors are already on screen
		return m, nil
	}

	m.flash = ""
	return m, func() tea.Msg { return startSaveMsg{payload: payload, seq: seq} }
}

func (m profileModel) updateInput(msg tea.Msg) (profileModel, tea.Cmd) {
	if m.phase != phaseEditing {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	// validation runs on every mutation while editing
	m.sess.SetField(editFieldKeys[m.focus], m.inputs[m.focus].Value())
	return m, cmd
}

// applySave folds an update response into the edit session.
func (m profileModel) applySave(msg saveDoneMsg) profileModel {
	if msg.err != nil {
		m.sess.ApplySaveErr(msg.seq)
		return m.withFlash("Failed to update profile.", true)
	}

	m.sess.ApplySaveOK(msg.seq, msg.payload)
	if m.sess.Mode() == profile.Viewing {
		m.phase = phaseViewing
	}
	return m.withFlash("Profile updated successfully!", false)
}

func (m profileModel) setLoaded(rec profile.Record) profileModel {
	m.sess = profile.NewSession(rec)
	m.phase = phaseViewing
	m.loadErr = ""
	return m
}

func (m profileModel) setLoadError(msg string) profileModel {
	m.phase = phaseLoadError
	m.loadErr = msg
	return m
}

func (m profileModel) setLoading() profileModel {
	m.phase = phaseLoading
	m.loadErr = ""
	return m
}

func (m profileModel) withFlash(msg string, isErr bool) profileModel {
	m.flash = msg
	m.flashErr = isErr
	return m
}

func (m profileModel) View() string {
	switch m.phase {
	case phaseLoading:
		return "\n  " + m.spin.View() + zstyle.MutedText.Render("loading profile...") + "\n"

	case phaseLoadError:
		s := "\n  " + zstyle.StatusErr.Render(m.loadErr) + "\n\n"
		s += "  " + zstyle.MutedText.Render("the service may be unavailable; retry keeps you logged in") + "\n"
		return s

	case phaseViewing:
		return m.viewRecord()

	case phaseEditing:
		return m.viewForm()
	}
	return ""
}

func (m profileModel) viewRecord() string {
	rec := m.sess.Committed()

	s := "\n  " + zstyle.Title.Render("your profile") + "\n\n"
	rows := []struct{ label, value string }{
		{"first name", rec.FirstName},
		{"last name", rec.LastName},
		{"email", rec.Email},
	}
	for _, row := range rows {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-12s", row.label))
		s += fmt.Sprintf("    %s %s\n", label, row.value)
	}

	s += "\n"
	s += m.flashLine()
	return s
}

func (m profileModel) viewForm() string {
	s := "\n  " + zstyle.Title.Render("edit profile") + "\n\n"

	errs := m.sess.Errors()
	for i := range editFieldCount {
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		label := zstyle.MutedText.Render(fmt.Sprintf("%-12s", editFieldLabels[i]))
		s += fmt.Sprintf("  %s%s %s\n", cursor, label, m.inputs[i].View())

		if msg, ok := errs[editFieldKeys[i]]; ok {
			s += "       " + zstyle.StatusErr.Render(msg) + "\n"
		}
	}

	s += "\n"
	if m.sess.Pending() {
		s += "  " + zstyle.MutedText.Render("saving...") + "\n"
		return s
	}
	s += m.flashLine()
	return s
}

func (m profileModel) flashLine() string {
	if m.flash == "" {
		return "\n"
	}
	if m.flashErr {
		return "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	}
	return "  " + zstyle.StatusOK.Render(m.flash) + "\n"
}
