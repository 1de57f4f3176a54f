// Package taskform is the create/edit form for a single task.
package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/theme"
	"github.com/nhle/taskapp/internal/ui"
)

// SubmitMsg is dispatched when the form is completed. Task is ready to
// send: validated, with CreatedAt set.
type SubmitMsg struct {
	Task    model.Task
	Editing bool
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      model.TaskStatus
	ownerID     string
}

// Model is the Bubble Tea model for the task form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editing  bool
	original model.Task
	users    []model.UserProfile
	now      func() time.Time
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{status: model.TaskStatusPending},
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new task. The owner defaults to
// current and may be changed to any of users.
func (m *Model) StartCreate(current model.UserProfile, users []model.UserProfile) tea.Cmd {
	m.editing = false
	m.original = model.Task{}
	m.users = users
	m.fb.title = ""
	m.fb.description = ""
	m.fb.status = model.TaskStatusPending
	m.fb.ownerID = current.ID
	if !containsUser(users, current.ID) {
		m.users = append([]model.UserProfile{current}, users...)
	}
	m.form = m.buildCreateForm()
	return m.form.Init()
}

// StartEdit initializes the form for task. Title and owner are shown but
// cannot be changed.
func (m *Model) StartEdit(task model.Task, users []model.UserProfile) tea.Cmd {
	m.editing = true
	m.original = task
	m.users = users
	m.fb.title = task.Title
	m.fb.description = task.Description
	m.fb.status = task.Status
	m.fb.ownerID = task.OwnerID
	m.form = m.buildEditForm()
	return m.form.Init()
}

// Active reports whether a form is in progress.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the task form.
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
		return m, m.handleSubmit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New task"
	if m.editing {
		titleText = "Edit task"
	}

	content := theme.TitleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			m.descriptionField(),
			m.statusField(),
			m.ownerField(),
		),
	).WithKeyMap(ui.FormKeyMap()).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildEditForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Title").
				Description(m.original.Title),
			m.descriptionField(),
			m.statusField(),
			huh.NewNote().
				Title("Assigned to").
				Description(m.ownerLabel(m.original.OwnerID)),
		),
	).WithKeyMap(ui.FormKeyMap()).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) descriptionField() huh.Field {
	return huh.NewText().
		Title("Description").
		Placeholder("Details...").
		Value(&m.fb.description).
		Validate(validateRequired("Description"))
}

func (m *Model) statusField() huh.Field {
	opts := make([]huh.Option[model.TaskStatus], 0, len(model.TaskStatuses)+1)
	for _, s := range model.TaskStatuses {
		opts = append(opts, huh.NewOption(s.Label(), s))
	}
	// Keep a status the client does not know about selectable.
	if m.fb.status != "" && !knownStatus(m.fb.status) {
		opts = append(opts, huh.NewOption(string(m.fb.status), m.fb.status))
	}
	return huh.NewSelect[model.TaskStatus]().
		Title("Status").
		Options(opts...).
		Value(&m.fb.status)
}

func (m *Model) ownerField() huh.Field {
	opts := make([]huh.Option[string], 0, len(m.users))
	for _, u := range m.users {
		opts = append(opts, huh.NewOption(userLabel(u), u.ID))
	}
	return huh.NewSelect[string]().
		Title("Assigned to").
		Options(opts...).
		Value(&m.fb.ownerID)
}

func (m Model) ownerLabel(id string) string {
	for _, u := range m.users {
		if u.ID == id {
			return userLabel(u)
		}
	}
	return id
}

func (m Model) handleSubmit() tea.Cmd {
	task := model.Task{
		Title:       strings.TrimSpace(m.fb.title),
		Description: strings.TrimSpace(m.fb.description),
		Status:      m.fb.status,
		OwnerID:     m.fb.ownerID,
		CreatedAt:   m.now().UTC().Format(time.RFC3339),
	}

	if m.editing {
		task.ID = m.original.ID
		task.Title = m.original.Title
		task.OwnerID = m.original.OwnerID
		task.CreatedAt = m.original.CreatedAt
	}

	editing := m.editing
	return func() tea.Msg { return SubmitMsg{Task: task, Editing: editing} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func userLabel(u model.UserProfile) string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func containsUser(users []model.UserProfile, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func knownStatus(s model.TaskStatus) bool {
	for _, k := range model.TaskStatuses {
		if k == s {
			return true
		}
	}
	return false
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
