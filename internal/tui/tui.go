// Package tui implements the root Bubble Tea model for maxxacct.
package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/maxxenergy/maxxacct/internal/api"
	"github.com/maxxenergy/maxxacct/internal/profile"
	"github.com/maxxenergy/maxxacct/internal/session"
)

type viewID int

const (
	viewLogin viewID = iota
	viewSignup
	viewProfile
)

// accent is the header color for the account portal.
var accent = lipgloss.Color("208")

// Service is the account API surface the TUI drives. *api.Client
// satisfies it.
type Service interface {
	session.API
	Update(ctx context.Context, id, firstName, lastName, email string) error
}

// Model is the root TUI model.
type Model struct {
	version string
	store   *session.Store
	client  Service

	active  viewID
	login   loginModel
	signup  signupModel
	profile profileModel

	// resolver and generation for the current profile page. The
	// generation increments on every profile entry; async completions
	// carrying an older generation are stale and dropped.
	resolver   *session.Resolver
	profileGen int

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model. When an identity is already stored the
// session opens on the profile view, otherwise on login.
func New(version string, store *session.Store, client Service) Model {
	m := Model{
		version: version,
		store:   store,
		client:  client,
		login:   newLoginModel(false),
		signup:  newSignupModel(),
		profile: newProfileModel(),
	}

	if _, ok := store.Get(); ok {
		m.active = viewProfile
		m.profileGen = 1
		m.resolver = session.NewResolver(store, client)
	} else {
		m.active = viewLogin
	}

	return m
}

func (m Model) Init() tea.Cmd {
	if m.active == viewProfile {
		return tea.Batch(m.profile.spin.Tick, loadProfileCmd(m.resolver, m.profileGen))
	}
	return m.login.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case navigateMsg:
		return m.navigate(msg.view)

	case submitLoginMsg:
		return m, loginCmd(m.store, m.client, msg)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case submitSignupMsg:
		return m, signupCmd(m.client, msg)

	case signupDoneMsg:
		return m.handleSignupDone(msg)

	case profileLoadedMsg:
		return m.handleProfileLoaded(msg)

	case retryLoadMsg:
		m.profile = m.profile.setLoading()
		return m, tea.Batch(m.profile.spin.Tick, loadProfileCmd(m.resolver, m.profileGen))

	case startSaveMsg:
		return m, saveCmd(m.client, m.profileGen, msg.seq, msg.payload)

	case saveDoneMsg:
		return m.handleSaveDone(msg)

	case logoutMsg:
		return m.handleLogout()
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	var content string
	switch m.active {
	case viewLogin:
		content = m.login.View()
	case viewSignup:
		content = m.signup.View()
	case viewProfile:
		content = m.profile.View()
	}

	header := zstyle.RenderHeader("maxxacct", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(m.helpPairs())

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewLogin:
		return "Log In"
	case viewSignup:
		return "Create Account"
	case viewProfile:
		return "Profile"
	}
	return ""
}

// helpPairs returns keybinding pairs for the footer, phase-aware for the
// profile view.
func (m Model) helpPairs() []zstyle.HelpPair {
	switch m.active {
	case viewLogin:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "space", Desc: "remember me"},
			{Key: "enter", Desc: "log in"},
			{Key: "ctrl+n", Desc: "sign up"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewSignup:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "shift+tab", Desc: "prev"},
			{Key: "enter", Desc: "create"},
			{Key: "esc", Desc: "back"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewProfile:
		switch m.profile.phase {
		case phaseEditing:
			return []zstyle.HelpPair{
				{Key: "tab", Desc: "next"},
				{Key: "shift+tab", Desc: "prev"},
				{Key: "enter", Desc: "save"},
				{Key: "esc", Desc: "cancel"},
			}
		case phaseLoadError:
			return []zstyle.HelpPair{
				{Key: "r", Desc: "retry"},
				{Key: "l", Desc: "log out"},
				{Key: "q", Desc: "quit"},
			}
		default:
			return []zstyle.HelpPair{
				{Key: "e", Desc: "edit"},
				{Key: "l", Desc: "log out"},
				{Key: "q", Desc: "quit"},
			}
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewLogin:
		m.login, cmd = m.login.Update(msg)
	case viewSignup:
		m.signup, cmd = m.signup.Update(msg)
	case viewProfile:
		m.profile, cmd = m.profile.Update(msg)
	}

	return m, cmd
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewLogin:
		m.login = newLoginModel(false)
		m.active = viewLogin
		return m, tea.Batch(tea.ClearScreen, m.login.Init())

	case viewSignup:
		m.signup = newSignupModel()
		m.active = viewSignup
		return m, tea.Batch(tea.ClearScreen, m.signup.Init())

	case viewProfile:
		// every profile entry is a fresh page: new resolver, new
		// generation so late responses for the old page are dropped
		m.profileGen++
		m.resolver = session.NewResolver(m.store, m.client)
		m.profile = newProfileModel()
		m.active = viewProfile
		return m, tea.Batch(tea.ClearScreen, m.profile.spin.Tick, loadProfileCmd(m.resolver, m.profileGen))
	}

	return m, nil
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.submitting = false

	if msg.err != nil {
		m.login = m.login.withError(loginFailureMessage(msg.err))
		return m, nil
	}

	return m.navigate(viewProfile)
}

func (m Model) handleSignupDone(msg signupDoneMsg) (tea.Model, tea.Cmd) {
	m.signup.submitting = false

	if msg.err != nil {
		var verr *session.ValidationError
		switch {
		case errors.As(msg.err, &verr):
			m.signup.errors = verr.Fields
		case errors.Is(msg.err, api.ErrConflict):
			m.signup.message = "That email is already registered."
		default:
			m.signup.message = "Failed to sign up. Please try again."
		}
		return m, nil
	}

	// signup never logs the user in: back to login with a hint
	m.login = newLoginModel(true)
	m.active = viewLogin
	return m, tea.Batch(tea.ClearScreen, m.login.Init())
}

func (m Model) handleProfileLoaded(msg profileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.profileGen {
		// stale: a newer profile page owns the screen
		return m, nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, session.ErrNoIdentity) {
			// absent or stale identity: back to login
			m.login = newLoginModel(false)
			m.active = viewLogin
			return m, tea.Batch(tea.ClearScreen, m.login.Init())
		}
		m.profile = m.profile.setLoadError("Could not load profile.")
		return m, nil
	}

	m.profile = m.profile.setLoaded(msg.record)
	return m, nil
}

func (m Model) handleSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.profileGen {
		return m, nil
	}

	m.profile = m.profile.applySave(msg)
	return m, nil
}

func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	if err := m.store.Clear(); err != nil {
		m.profile = m.profile.withFlash("log out: "+err.Error(), true)
		return m, nil
	}

	m.login = newLoginModel(false)
	m.active = viewLogin
	return m, tea.Batch(tea.ClearScreen, m.login.Init())
}

// loginFailureMessage maps a login error to the message shown on the
// login view. Raw transport errors never reach the screen.
func loginFailureMessage(err error) string {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	if errors.Is(err, api.ErrNotFound) {
		return "No user found with that first name and email."
	}

	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Body != "" {
			return strings.TrimSpace("Login failed. " + se.Body)
		}
		return "Login failed. Please try again."
	}

	return "Network error. Please try again."
}

// async commands

func loadProfileCmd(r *session.Resolver, gen int) tea.Cmd {
	return func() tea.Msg {
		rec, err := r.Resolve(context.Background())
		return profileLoadedMsg{gen: gen, record: rec, err: err}
	}
}

func loginCmd(store *session.Store, client Service, msg submitLoginMsg) tea.Cmd {
	return func() tea.Msg {
		id, err := session.Login(context.Background(), store, client, msg.firstName, msg.email, msg.remember)
		return loginDoneMsg{id: id, err: err}
	}
}

func signupCmd(client Service, msg submitSignupMsg) tea.Cmd {
	return func() tea.Msg {
		err := session.Signup(context.Background(), client, msg.firstName, msg.lastName, msg.email, msg.confirmEmail)
		return signupDoneMsg{err: err}
	}
}

func saveCmd(client Service, gen, seq int, payload profile.Record) tea.Cmd {
	return func() tea.Msg {
		err := client.Update(context.Background(), payload.ID, payload.FirstName, payload.LastName, payload.Email)
		return saveDoneMsg{gen: gen, seq: seq, payload: payload, err: err}
	}
}
