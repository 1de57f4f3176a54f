package dashboard_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/keys"
	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/ui/dashboard"
)

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newDashboard(t *testing.T, tasks ...model.Task) dashboard.Model {
	t.Helper()
	m := dashboard.New(keys.DefaultKeyMap(), 80, 24)
	m.SetUser(model.UserProfile{ID: "u1", Name: "Ana"})
	m.SetTasks(tasks)
	return m
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

var (
	open = model.Task{ID: "t1", Title: "Write report", Description: "Q3", Status: model.TaskStatusPending, OwnerID: "u1"}
	done = model.Task{ID: "t2", Title: "Ship", Description: "v1", Status: model.TaskStatusDone, OwnerID: "u1"}
)

func TestDashboardActions(t *testing.T) {
	m := newDashboard(t, open, done)

	cases := map[string]tea.Msg{
		"n": dashboard.NewTaskMsg{},
		"e": dashboard.EditTaskMsg{Task: open},
		"x": dashboard.CompleteTaskMsg{Task: open},
		"r": dashboard.RefreshMsg{},
		"b": dashboard.OpenNotificationsMsg{},
		"L": dashboard.SignOutMsg{},
	}
	for k, want := range cases {
		_, cmd := m.Update(press(k))
		assert.Equal(t, want, run(cmd), "key %q", k)
	}
}

func TestDashboardCompleteIgnoresDoneTask(t *testing.T) {
	m := newDashboard(t, done)
	_, cmd := m.Update(press("x"))
	assert.Nil(t, run(cmd))
}

func TestDashboardDeleteNeedsConfirmation(t *testing.T) {
	m := newDashboard(t, open)

	m, cmd := m.Update(press("d"))
	assert.Nil(t, run(cmd))
	require.True(t, m.Confirming())
	assert.Contains(t, m.View(), "Write report")

	m, cmd = m.Update(press("y"))
	assert.Equal(t, dashboard.DeleteTaskMsg{Task: open}, run(cmd))
	assert.False(t, m.Confirming())
}

func TestDashboardDeleteCancelled(t *testing.T) {
	m := newDashboard(t, open)

	m, _ = m.Update(press("d"))
	m, cmd := m.Update(press("n"))
	assert.Nil(t, run(cmd))
	assert.False(t, m.Confirming())
}

func TestDashboardViewShowsGreetingAndBadge(t *testing.T) {
	m := newDashboard(t)
	m.SetUnread(3)

	view := m.View()
	assert.Contains(t, view, "Hello, Ana")
	assert.Contains(t, view, "3")
	assert.Contains(t, view, "No tasks yet")
}

func TestDashboardSetUserClearsState(t *testing.T) {
	m := newDashboard(t, open)
	m.SetUnread(2)

	m.SetUser(model.UserProfile{ID: "u2", Email: "bo@x.com"})
	_, ok := m.SelectedTask()
	assert.False(t, ok)
	assert.Zero(t, m.Unread())
	assert.Contains(t, m.View(), "Hello, bo@x.com")
}
