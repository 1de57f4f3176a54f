// Package register is the account creation screen.
package register

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

// SubmitMsg carries a validated registration to the root model.
type SubmitMsg struct {
	Request model.RegisterRequest
}

// CancelMsg returns to the sign-in screen.
type CancelMsg struct{}

type bindings struct {
	name     string
	email    string
	role     model.Role
	password string
	confirm  string
}

// Model is the registration form.
type Model struct {
	form   *huh.Form
	fb     *bindings
	width  int
	height int
}

// New creates the registration form.
func New(width, height int) Model {
	return Model{
		fb:     &bindings{role: model.RoleUser},
		width:  width,
		height: height,
	}
}

// Start builds an empty form.
func (m *Model) Start() tea.Cmd {
	*m.fb = bindings{role: model.RoleUser}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(required("email")),
			huh.NewSelect[model.Role]().
				Title("Role").
				Options(
					huh.NewOption(model.RoleUser.Label(), model.RoleUser),
					huh.NewOption(model.RoleAdmin.Label(), model.RoleAdmin),
				).
				Value(&m.fb.role),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required("password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm).
				Validate(func(s string) error {
					if s != m.fb.password {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}),
		),
	).WithKeyMap(ui.FormKeyMap()).WithShowHelp(false).WithWidth(min(max(m.width-8, 30), 60))
	return m.form.Init()
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
		m.form = nil
		return m, m.submit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// submit builds the request and validates it once more as a whole.
func (m Model) submit() tea.Cmd {
	req := model.RegisterRequest{
		Name:     strings.TrimSpace(m.fb.name),
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
		Role:     m.fb.role,
	}
	if err := req.Validate(m.fb.confirm); err != nil {
		return func() tea.Msg { return err }
	}
	return func() tea.Msg { return SubmitMsg{Request: req} }
}

// View renders the form centred on screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	panel := theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Create account"),
		m.form.View(),
		theme.HelpStyle.Render("enter continue · esc back to sign in"),
	))
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
