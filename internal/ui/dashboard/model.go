// Package dashboard is the signed-in home screen: a greeting, the unread
// notification badge and the user's task list.
package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskapp/internal/keys"
	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/theme"
)

// Messages emitted by the dashboard. The root model performs the work.
type (
	NewTaskMsg           struct{}
	EditTaskMsg          struct{ Task model.Task }
	CompleteTaskMsg      struct{ Task model.Task }
	DeleteTaskMsg        struct{ Task model.Task }
	RefreshMsg           struct{}
	OpenNotificationsMsg struct{}
	SignOutMsg           struct{}
)

// Model is the dashboard view.
type Model struct {
	list    list.Model
	keys    *keys.KeyMap
	user    model.UserProfile
	unread  int
	loading bool

	// pendingDelete holds the task awaiting confirmation, if any.
	pendingDelete *model.Task

	width  int
	height int
}

// New creates a dashboard for user.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, TaskDelegate{}, width, max(height-3, 1))
	l.Title = "My tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetUser resets the dashboard for a new session.
func (m *Model) SetUser(u model.UserProfile) {
	m.user = u
	m.unread = 0
	m.pendingDelete = nil
	m.list.SetItems(nil)
}

// SetTasks replaces the list contents, keeping the cursor in range.
func (m *Model) SetTasks(tasks []model.Task) tea.Cmd {
	m.loading = false
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t}
	}
	return m.list.SetItems(items)
}

// SetUnread sets the notification badge count.
func (m *Model) SetUnread(n int) {
	m.unread = n
}

// SetLoading marks a refetch as in flight.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Unread returns the badge count.
func (m Model) Unread() int {
	return m.unread
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Confirming reports whether a delete confirmation is pending.
func (m Model) Confirming() bool {
	return m.pendingDelete != nil
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if m.pendingDelete != nil {
		task := *m.pendingDelete
		m.pendingDelete = nil
		if key.Matches(keyMsg, m.keys.Confirm) {
			return m, emit(DeleteTaskMsg{Task: task})
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.New):
		return m, emit(NewTaskMsg{})

	case key.Matches(keyMsg, m.keys.Select), key.Matches(keyMsg, m.keys.Edit):
		if t, ok := m.SelectedTask(); ok {
			return m, emit(EditTaskMsg{Task: t})
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Complete):
		if t, ok := m.SelectedTask(); ok && !t.IsDone() {
			return m, emit(CompleteTaskMsg{Task: t})
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Delete):
		if t, ok := m.SelectedTask(); ok {
			m.pendingDelete = &t
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Refresh):
		return m, emit(RefreshMsg{})

	case key.Matches(keyMsg, m.keys.Notifications):
		return m, emit(OpenNotificationsMsg{})

	case key.Matches(keyMsg, m.keys.SignOut):
		return m, emit(SignOutMsg{})
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	greeting := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Hello, %s", m.displayName()))
	if m.unread > 0 {
		greeting += "  " + theme.BadgeStyle.Render(fmt.Sprintf("🔔 %d", m.unread))
	}
	if m.loading {
		greeting += "  " + theme.DimmedStyle.Render("refreshing…")
	}

	var body string
	switch {
	case m.pendingDelete != nil:
		body = theme.PanelStyle.Render(fmt.Sprintf(
			"Delete %q?\n\n%s",
			m.pendingDelete.Title,
			theme.HelpStyle.Render("y confirm · any other key cancels"),
		))
	case len(m.list.Items()) == 0:
		body = m.renderEmptyState()
	default:
		body = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(greeting),
		"",
		body,
	)
}

func (m Model) displayName() string {
	if m.user.Name != "" {
		return m.user.Name
	}
	return m.user.Email
}

// renderEmptyState shows guidance text when the user has no tasks.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-3, 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return style.Render("Loading tasks…")
	}
	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-3, 1))
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
