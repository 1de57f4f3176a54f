package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskapp/internal/api"
	"github.com/nhle/taskapp/internal/keys"
	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/session"
	tasksync "github.com/nhle/taskapp/internal/sync"
	"github.com/nhle/taskapp/internal/theme"
	"github.com/nhle/taskapp/internal/ui"
	"github.com/nhle/taskapp/internal/ui/command"
	"github.com/nhle/taskapp/internal/ui/dashboard"
	helpview "github.com/nhle/taskapp/internal/ui/help"
	"github.com/nhle/taskapp/internal/ui/login"
	"github.com/nhle/taskapp/internal/ui/notifications"
	"github.com/nhle/taskapp/internal/ui/register"
	"github.com/nhle/taskapp/internal/ui/taskform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewLogin
	ViewRegister
	ViewDashboard
	ViewTaskForm
	ViewNotifications
	ViewHelp
	ViewCommand
)

// signedIn reports whether v belongs to the authenticated side.
func (v ViewState) signedIn() bool {
	return v >= ViewDashboard
}

// Deps are the services the root model drives. Live may be nil, in which
// case no live refreshes arrive and the dashboard only refetches on demand.
type Deps struct {
	Session       *session.Manager
	Identity      *api.Identity
	Tasks         *api.Tasks
	Notifications *api.Notifications
	Live          *tasksync.Subscriber
}

// Model is the root Bubble Tea model. It routes between the signed-out
// and signed-in screens according to the session state.
type Model struct {
	deps Deps
	keys *keys.KeyMap

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	// snap is the last session snapshot seen. Results carrying another
	// generation are discarded.
	snap  session.Snapshot
	live  bool
	flash ui.Flash

	spinner       spinner.Model
	loginView     login.Model
	registerView  register.Model
	dashboard     dashboard.Model
	taskForm      taskform.Model
	notifications notifications.Model
	helpView      helpview.Model
	commandView   command.Model
}

// New creates the root model. The session is restored by Init.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		deps:          deps,
		keys:          k,
		currentView:   ViewLoading,
		spinner:       sp,
		loginView:     login.New(80, 24),
		registerView:  register.New(80, 24),
		dashboard:     dashboard.New(k, 80, 24),
		taskForm:      taskform.New(80, 24),
		notifications: notifications.New(k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
	}
}

// Init restores the persisted session and starts listening for live
// updates.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.restore()}
	return tea.Batch(append(cmds, m.waitLive())...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.registerView.SetSize(w, h)
		m.dashboard.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.notifications.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMsg:
		return m.applySession(msg)

	case tasksync.RefreshMsg:
		cmds := []tea.Cmd{m.waitLive()}
		if m.current(msg.Generation) {
			cmds = append(cmds, m.refetch())
		}
		return m, tea.Batch(cmds...)

	case tasksync.StatusMsg:
		if m.current(msg.Generation) {
			m.live = msg.Connected
		}
		return m, m.waitLive()

	case tasksLoadedMsg:
		if !m.current(msg.generation) {
			return m, nil
		}
		if msg.err != nil {
			m.dashboard.SetLoading(false)
			m.setError(msg.err)
			return m, nil
		}
		cmd := m.dashboard.SetTasks(msg.tasks)
		return m, cmd

	case unreadLoadedMsg:
		if !m.current(msg.generation) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.dashboard.SetUnread(len(msg.notifications))
		cmd := m.notifications.SetNotifications(msg.notifications)
		return m, cmd

	case usersLoadedMsg:
		if !m.current(msg.generation) || m.currentView != ViewTaskForm {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		}
		if msg.task != nil {
			cmd := m.taskForm.StartEdit(*msg.task, msg.users)
			return m, cmd
		}
		cmd := m.taskForm.StartCreate(m.snap.Session.User, msg.users)
		return m, cmd

	case mutationDoneMsg:
		if !m.current(msg.generation) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.flash = ui.Flash{Text: msg.done}
		}
		cmd := m.refetch()
		return m, cmd

	case registeredMsg:
		if msg.err != nil {
			m.setError(msg.err)
			cmd := m.registerView.Start()
			return m, cmd
		}
		m.currentView = ViewLogin
		m.loginView.SetEmail(msg.email)
		m.loginView.SetNotice("Account created. Sign in to continue.")
		cmd := m.loginView.Start()
		return m, cmd

	case login.SubmitMsg:
		m.enterLoading()
		return m, m.signIn(msg.Request)

	case register.SubmitMsg:
		return m, m.register(msg.Request)

	case register.CancelMsg:
		m.currentView = ViewLogin
		cmd := m.loginView.Start()
		return m, cmd

	case dashboard.NewTaskMsg:
		return m.openTaskForm(nil)

	case dashboard.EditTaskMsg:
		task := msg.Task
		return m.openTaskForm(&task)

	case dashboard.CompleteTaskMsg:
		return m, m.completeTask(msg.Task)

	case dashboard.DeleteTaskMsg:
		return m, m.deleteTask(msg.Task)

	case dashboard.RefreshMsg:
		cmd := m.refetch()
		return m, cmd

	case dashboard.OpenNotificationsMsg:
		m.currentView = ViewNotifications
		m.notifications.Reset()
		return m, m.fetchUnread()

	case dashboard.SignOutMsg:
		m.enterLoading()
		return m, m.signOut()

	case taskform.SubmitMsg:
		m.currentView = ViewDashboard
		return m, m.saveTask(msg.Task, msg.Editing)

	case taskform.CancelMsg:
		m.currentView = ViewDashboard
		cmd := m.refetch()
		return m, cmd

	case notifications.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case notifications.MarkAllReadMsg:
		return m, m.markAllRead()

	case notifications.BackMsg:
		m.currentView = ViewDashboard
		cmd := m.refetch()
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case command.UnknownMsg:
		m.currentView = m.previousView
		m.flash = ui.Flash{Text: fmt.Sprintf("unknown command %q", string(msg)), Error: true}
		return m, nil

	case error:
		// Form-level validation failures surface here.
		m.setError(msg)
		if m.currentView == ViewRegister {
			cmd := m.registerView.Start()
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		m.flash = ui.Flash{}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that apply outside a single view. Views
// with text input only see ctrl+c intercepted.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch m.currentView {
	case ViewLogin:
		if msg.String() == "ctrl+n" {
			m.currentView = ViewRegister
			cmd := m.registerView.Start()
			return m, cmd, true
		}
		return m, nil, false

	case ViewRegister, ViewTaskForm, ViewLoading:
		return m, nil, false

	case ViewCommand:
		if msg.String() == "esc" {
			m.commandView.Reset()
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewHelp:
		switch msg.String() {
		case "esc", "?", "q":
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, true
	}

	if m.currentView == ViewDashboard && m.dashboard.Confirming() {
		return m, nil, false
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewDashboard {
			return m, m.quit(), true
		}
	case "?":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true
	case ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		m.commandView.Reset()
		cmd := m.commandView.Focus()
		return m, cmd, true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(name string) (tea.Model, tea.Cmd) {
	switch name {
	case command.Refresh:
		cmd := m.refetch()
		return m, cmd
	case command.NewTask:
		return m.openTaskForm(nil)
	case command.Notifications:
		m.currentView = ViewNotifications
		m.notifications.Reset()
		return m, m.fetchUnread()
	case command.Logout:
		m.enterLoading()
		return m, m.signOut()
	case command.Quit:
		return m, m.quit()
	}
	return m, nil
}

func (m Model) openTaskForm(task *model.Task) (tea.Model, tea.Cmd) {
	m.previousView = ViewDashboard
	m.currentView = ViewTaskForm
	return m, m.fetchUsers(task)
}

// waitLive re-arms the wait for the next live event.
func (m Model) waitLive() tea.Cmd {
	if m.deps.Live == nil {
		return nil
	}
	return m.deps.Live.WaitForNextResult()
}

// quit stops the live subscription before leaving the program.
func (m Model) quit() tea.Cmd {
	if m.deps.Live != nil {
		m.deps.Live.Stop()
	}
	return tea.Quit
}

// setError shows err in the status bar.
func (m *Model) setError(err error) {
	m.flash = ui.Flash{Text: describe(err), Error: true}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.statusText())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.flash)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
// Signed-in views are only drawn for an authenticated session.
func (m Model) renderContent() string {
	if m.currentView.signedIn() != m.snap.Authenticated() || m.currentView == ViewLoading {
		return lipgloss.Place(
			m.layout.ContentWidth(), m.layout.ContentHeight(),
			lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading…",
		)
	}

	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewRegister:
		return m.registerView.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewNotifications:
		return m.notifications.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerTitle() string {
	title := "Tasks"
	if n := m.dashboard.Unread(); m.snap.Authenticated() && n > 0 {
		title = fmt.Sprintf("Tasks [%d new]", n)
	}
	return title
}

// statusText describes the session and the live connection.
func (m Model) statusText() string {
	switch m.snap.State {
	case session.StateAuthenticated:
		live := "offline"
		if m.live {
			live = "live"
		}
		return fmt.Sprintf("%s · %s", m.snap.Session.User.Email, live)
	case session.StateUnauthenticated:
		return "signed out"
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter continue | ctrl+n register | ctrl+c quit"
	case ViewRegister:
		return "enter continue | esc back"
	case ViewTaskForm:
		return "enter submit | esc cancel"
	case ViewNotifications:
		return "enter open | m mark read | M mark all | esc back"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDashboard:
		return "n new | e edit | x complete | d delete | b notifications | r refresh | L sign out | q quit"
	default:
		return ""
	}
}
