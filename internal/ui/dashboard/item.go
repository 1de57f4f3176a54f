package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// TaskDelegate renders a task as two lines: status and title, then the
// description and creation date.
type TaskDelegate struct{}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := ti.Task
	width := max(m.Width()-4, 10)

	mark := "○"
	if t.IsDone() {
		mark = "✓"
	}

	status := theme.TaskStatusStyle(t.Status).Render(t.Status.Label())
	title := truncate.StringWithTail(t.Title, uint(max(width-len(t.Status.Label())-4, 1)), "…")
	line1 := fmt.Sprintf("%s %s %s", mark, title, status)

	details := []string{}
	if desc := strings.TrimSpace(strings.ReplaceAll(t.Description, "\n", " ")); desc != "" {
		details = append(details, desc)
	}
	if created := t.CreatedTime(); !created.IsZero() {
		details = append(details, created.Local().Format("02 Jan 2006 15:04"))
	}
	line2 := theme.DimmedStyle.Render(
		truncate.StringWithTail(strings.Join(details, " · "), uint(width), "…"),
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line1+"\n"+line2))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line1+"\n"+line2))
}
