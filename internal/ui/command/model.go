package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskapp/internal/theme"
)

// Commands understood by the palette.
const (
	Refresh       = "refresh"
	NewTask       = "new"
	Notifications = "notifications"
	Logout        = "logout"
	Quit          = "quit"
)

var known = []string{Refresh, NewTask, Notifications, Logout, Quit}

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// UnknownMsg is emitted for input that matches no command.
type UnknownMsg string

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Complete returns the commands starting with prefix.
func Complete(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []string
	for _, c := range known {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Resolve maps input to a command. A unique prefix is accepted.
func Resolve(input string) (string, bool) {
	matches := Complete(input)
	if strings.TrimSpace(input) == "" || len(matches) == 0 {
		return "", false
	}
	for _, c := range matches {
		if c == strings.ToLower(strings.TrimSpace(input)) {
			return c, true
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if raw == "" {
				return m, nil
			}
			if cmd, ok := Resolve(raw); ok {
				return m, func() tea.Msg { return CommandMsg(cmd) }
			}
			return m, func() tea.Msg { return UnknownMsg(raw) }
		case "tab":
			if matches := Complete(m.input.Value()); len(matches) == 1 {
				m.input.SetValue(matches[0])
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	suggestions := theme.DimmedStyle.Render(strings.Join(Complete(m.input.Value()), "  "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, suggestions)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the input.
func (m *Model) Reset() {
	m.input.Reset()
}
