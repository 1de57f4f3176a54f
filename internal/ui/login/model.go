// Package login is the sign-in screen.
package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/theme"
	"github.com/nhle/taskapp/internal/ui"
)

// SubmitMsg carries validated credentials to the root model.
type SubmitMsg struct {
	Request model.LoginRequest
}

type bindings struct {
	email    string
	password string
}

// Model is the sign-in form.
type Model struct {
	form   *huh.Form
	fb     *bindings
	notice string
	width  int
	height int
}

// New creates the sign-in form.
func New(width, height int) Model {
	return Model{
		fb:     &bindings{},
		width:  width,
		height: height,
	}
}

// Start builds a fresh form, keeping the last email typed. The password
// is always cleared.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required("password")),
		),
	).WithKeyMap(ui.FormKeyMap()).WithShowHelp(false).WithWidth(min(max(m.width-8, 30), 60))
	return m.form.Init()
}

// SetNotice shows an informational line above the form, e.g. after a
// successful registration.
func (m *Model) SetNotice(s string) {
	m.notice = s
}

// SetEmail prefills the email field for the next Start.
func (m *Model) SetEmail(email string) {
	m.fb.email = email
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		req := model.LoginRequest{
			Email:    strings.TrimSpace(m.fb.email),
			Password: m.fb.password,
		}
		m.notice = ""
		restart := m.Start()
		return m, tea.Batch(restart, func() tea.Msg { return SubmitMsg{Request: req} })
	case huh.StateAborted:
		return m, m.Start()
	}
	return m, cmd
}

// View renders the form centred on screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	parts := []string{theme.TitleStyle.Render("Sign in")}
	if m.notice != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(m.notice), "")
	}
	parts = append(parts,
		m.form.View(),
		theme.HelpStyle.Render("enter continue · ctrl+n create account · ctrl+c quit"),
	)

	panel := theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(min(max(width-8, 30), 60))
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
