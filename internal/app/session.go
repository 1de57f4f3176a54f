package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskapp/internal/api"
	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/session"
	"github.com/nhle/taskapp/internal/ui"
)

// sessionMsg reports the outcome of a session operation.
type sessionMsg struct {
	snap session.Snapshot
	err  error
}

// registeredMsg reports the outcome of an account registration.
type registeredMsg struct {
	email string
	err   error
}

func (m Model) restore() tea.Cmd {
	mgr := m.deps.Session
	return func() tea.Msg {
		return sessionMsg{snap: mgr.Restore(context.Background())}
	}
}

func (m Model) signIn(req model.LoginRequest) tea.Cmd {
	mgr := m.deps.Session
	return func() tea.Msg {
		err := mgr.SignIn(context.Background(), req)
		return sessionMsg{snap: mgr.Snapshot(), err: err}
	}
}

func (m Model) signOut() tea.Cmd {
	mgr := m.deps.Session
	return func() tea.Msg {
		mgr.SignOut(context.Background())
		return sessionMsg{snap: mgr.Snapshot()}
	}
}

func (m Model) register(req model.RegisterRequest) tea.Cmd {
	identity := m.deps.Identity
	return func() tea.Msg {
		_, err := identity.Register(context.Background(), req)
		return registeredMsg{email: req.Email, err: err}
	}
}

// enterLoading drops the current generation so that in-flight results
// are discarded while a session operation runs.
func (m *Model) enterLoading() {
	m.snap = session.Snapshot{State: session.StateLoading}
	m.live = false
	m.currentView = ViewLoading
}

// applySession routes to the screens matching snap.
func (m Model) applySession(msg sessionMsg) (tea.Model, tea.Cmd) {
	m.snap = msg.snap

	switch msg.snap.State {
	case session.StateAuthenticated:
		m.currentView = ViewDashboard
		m.flash = ui.Flash{}
		m.dashboard.SetUser(msg.snap.Session.User)
		m.dashboard.SetLoading(true)
		m.notifications.Reset()
		cmd := tea.Batch(m.notifications.SetNotifications(nil), m.refetch())
		return m, cmd

	case session.StateUnauthenticated:
		m.currentView = ViewLogin
		m.live = false
		if msg.err != nil {
			m.flash = ui.Flash{Text: signInError(msg.err), Error: true}
		}
		cmd := m.loginView.Start()
		return m, cmd

	default:
		m.currentView = ViewLoading
		return m, nil
	}
}

// current reports whether a result tagged with generation belongs to the
// session on screen.
func (m Model) current(generation uint64) bool {
	return m.snap.Authenticated() && m.snap.Generation == generation
}

// signInError turns a sign-in failure into a status bar message.
func signInError(err error) string {
	switch {
	case api.IsAuthError(err):
		return "invalid credentials"
	case model.IsValidationError(err):
		return err.Error()
	case errors.Is(err, session.ErrAlreadySignedIn):
		return "already signed in"
	default:
		return "sign in failed: " + api.Describe(err)
	}
}

func describe(err error) string {
	if model.IsValidationError(err) {
		return err.Error()
	}
	return api.Describe(err)
}
