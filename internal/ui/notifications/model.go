// Package notifications lists the user's unread notifications.
package notifications

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nhle/taskapp/internal/keys"
	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/theme"
)

// Messages emitted by the view.
type (
	MarkReadMsg    struct{ ID string }
	MarkAllReadMsg struct{}
	BackMsg        struct{}
)

type item struct {
	n model.Notification
}

func (i item) FilterValue() string { return i.n.Title }

type delegate struct{}

func (delegate) Height() int                             { return 1 }
func (delegate) Spacing() int                            { return 0 }
func (delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(item)
	if !ok {
		return
	}
	n := it.n

	status := theme.NotificationStyle(n.Status).Render(n.Status.Label())
	text := n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}
	width := max(m.Width()-lipgloss.Width(status)-6, 10)
	line := fmt.Sprintf("%s %s", status, truncate.StringWithTail(text, uint(width), "…"))

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

// Model is the notifications view.
type Model struct {
	list    list.Model
	keys    *keys.KeyMap
	items   []model.Notification
	showing *model.Notification
	width   int
	height  int
}

// New creates the notifications view.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, delegate{}, width, max(height-2, 1))
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{list: l, keys: k, width: width, height: height}
}

// SetNotifications replaces the list. An open detail is closed if its
// notification is no longer unread.
func (m *Model) SetNotifications(ns []model.Notification) tea.Cmd {
	m.items = ns
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = item{n: n}
	}
	if m.showing != nil && !containsID(ns, m.showing.ID) {
		m.showing = nil
	}
	return m.list.SetItems(items)
}

// Notifications returns the records currently listed.
func (m Model) Notifications() []model.Notification {
	return m.items
}

// Reset closes any open detail.
func (m *Model) Reset() {
	m.showing = nil
}

// Update handles messages for the view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if m.showing != nil {
		switch {
		case key.Matches(keyMsg, m.keys.Back), key.Matches(keyMsg, m.keys.Select):
			m.showing = nil
		case key.Matches(keyMsg, m.keys.MarkRead):
			id := m.showing.ID
			m.showing = nil
			return m, emit(MarkReadMsg{ID: id})
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		return m, emit(BackMsg{})

	case key.Matches(keyMsg, m.keys.Select):
		if it, ok := m.list.SelectedItem().(item); ok {
			n := it.n
			m.showing = &n
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.MarkRead):
		if it, ok := m.list.SelectedItem().(item); ok {
			return m, emit(MarkReadMsg{ID: it.n.ID})
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.MarkAllRead):
		if len(m.items) > 0 {
			return m, emit(MarkAllReadMsg{})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, or the detail of the selected notification.
func (m Model) View() string {
	if m.showing != nil {
		return m.renderDetail(*m.showing)
	}
	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(max(m.height-2, 1)).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("You're all caught up.")
	}
	return m.list.View()
}

func (m Model) renderDetail(n model.Notification) string {
	width := max(m.width-8, 20)

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(n.Title))
	b.WriteString("\n")
	b.WriteString(theme.NotificationStyle(n.Status).Render(n.Status.Label()))
	if ts := n.NotifiedTime(); !ts.IsZero() {
		b.WriteString(theme.DimmedStyle.Render("  " + ts.Local().Format("02 Jan 2006 15:04")))
	}
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String(n.Message, width))
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("m mark read · esc back"))

	return theme.PanelStyle.Width(m.width - 4).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 1))
}

func containsID(ns []model.Notification, id string) bool {
	for _, n := range ns {
		if n.ID == id {
			return true
		}
	}
	return false
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
