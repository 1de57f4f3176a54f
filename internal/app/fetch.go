package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskapp/internal/model"
)

// Results of requests made on behalf of a session generation.
type (
	tasksLoadedMsg struct {
		generation uint64
		tasks      []model.Task
		err        error
	}

	unreadLoadedMsg struct {
		generation    uint64
		notifications []model.Notification
		err           error
	}

	usersLoadedMsg struct {
		generation uint64
		users      []model.UserProfile
		task       *model.Task
		err        error
	}

	mutationDoneMsg struct {
		generation uint64
		done       string
		err        error
	}
)

// refetch reloads the task list and the unread notifications, one request
// each.
func (m *Model) refetch() tea.Cmd {
	if !m.snap.Authenticated() {
		return nil
	}
	m.dashboard.SetLoading(true)
	return tea.Batch(m.fetchTasks(), m.fetchUnread())
}

func (m Model) fetchTasks() tea.Cmd {
	snap, tasks := m.snap, m.deps.Tasks
	return func() tea.Msg {
		page, err := tasks.List(snap.Context(), snap.Session.User.ID)
		if err != nil {
			return tasksLoadedMsg{generation: snap.Generation, err: err}
		}
		return tasksLoadedMsg{generation: snap.Generation, tasks: page.Records}
	}
}

func (m Model) fetchUnread() tea.Cmd {
	snap, notes := m.snap, m.deps.Notifications
	return func() tea.Msg {
		ns, err := notes.ListUnread(snap.Context(), snap.Session.User.ID)
		return unreadLoadedMsg{generation: snap.Generation, notifications: ns, err: err}
	}
}

// fetchUsers loads the owner choices before the task form opens. A failed
// listing still opens the form with the signed-in user as the only owner.
func (m Model) fetchUsers(task *model.Task) tea.Cmd {
	snap, identity := m.snap, m.deps.Identity
	return func() tea.Msg {
		users, err := identity.ListUsers(snap.Context())
		return usersLoadedMsg{generation: snap.Generation, users: users, task: task, err: err}
	}
}

func (m Model) saveTask(task model.Task, editing bool) tea.Cmd {
	snap, tasks := m.snap, m.deps.Tasks
	return func() tea.Msg {
		if editing {
			err := tasks.Update(snap.Context(), task)
			return mutationDoneMsg{generation: snap.Generation, done: "task updated", err: err}
		}
		err := tasks.Create(snap.Context(), task)
		return mutationDoneMsg{generation: snap.Generation, done: "task created", err: err}
	}
}

func (m Model) completeTask(task model.Task) tea.Cmd {
	snap, tasks := m.snap, m.deps.Tasks
	return func() tea.Msg {
		err := tasks.Complete(snap.Context(), task)
		return mutationDoneMsg{generation: snap.Generation, done: fmt.Sprintf("%q completed", task.Title), err: err}
	}
}

func (m Model) deleteTask(task model.Task) tea.Cmd {
	snap, tasks := m.snap, m.deps.Tasks
	return func() tea.Msg {
		err := tasks.Delete(snap.Context(), task)
		return mutationDoneMsg{generation: snap.Generation, done: fmt.Sprintf("%q deleted", task.Title), err: err}
	}
}

func (m Model) markRead(id string) tea.Cmd {
	snap, notes := m.snap, m.deps.Notifications
	all := m.notifications.Notifications()
	return func() tea.Msg {
		err := notes.MarkRead(snap.Context(), all, id)
		return mutationDoneMsg{generation: snap.Generation, done: "marked as read", err: err}
	}
}

func (m Model) markAllRead() tea.Cmd {
	snap, notes := m.snap, m.deps.Notifications
	all := m.notifications.Notifications()
	return func() tea.Msg {
		err := notes.MarkAllRead(snap.Context(), all)
		return mutationDoneMsg{generation: snap.Generation, done: "all marked as read", err: err}
	}
}
