package notifications

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/keys"
	"github.com/nhle/taskapp/internal/model"
)

func sample() []model.Notification {
	return []model.Notification{
		{ID: "n1", TaskID: "t1", OwnerID: "u1", Title: "Write report", Message: "created", Status: model.NotificationCreated},
		{ID: "n2", TaskID: "t2", OwnerID: "u1", Title: "Ship", Message: "done", Status: model.NotificationCompleted},
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMarkReadSelected(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetNotifications(sample())

	_, cmd := m.Update(runeKey('m'))
	require.NotNil(t, cmd)
	assert.Equal(t, MarkReadMsg{ID: "n1"}, cmd())
}

func TestMarkAllRead(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)

	_, cmd := m.Update(runeKey('M'))
	assert.Nil(t, cmd, "nothing to mark")

	m.SetNotifications(sample())
	_, cmd = m.Update(runeKey('M'))
	require.NotNil(t, cmd)
	assert.Equal(t, MarkAllReadMsg{}, cmd())
}

func TestDetailOpensAndCloses(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetNotifications(sample())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.showing)
	assert.Contains(t, m.View(), "Write report")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Nil(t, m.showing)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestDetailClosesWhenRead(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetNotifications(sample())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.SetNotifications(sample()[1:])
	assert.Nil(t, m.showing)
}

func TestEmptyView(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	assert.Contains(t, m.View(), "caught up")
}
