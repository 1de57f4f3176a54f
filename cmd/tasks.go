package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/nhle/taskapp/internal/model"
)

func newTasksCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			owner := snap.Session.User.ID
			if all {
				owner = ""
			}
			page, err := app.tasks.List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), page.Records)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list tasks of every user (administrators)")

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskCompleteCmd(app),
		newTaskDeleteCmd(app),
	)
	return cmd
}

func newTaskAddCmd(app *app) *cobra.Command {
	var task model.Task

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			if task.OwnerID == "" {
				task.OwnerID = snap.Session.User.ID
			}
			task.Status = model.TaskStatusPending
			task.CreatedAt = time.Now().UTC().Format(time.RFC3339)
			if err := task.ValidateInput(); err != nil {
				return err
			}

			if err := app.tasks.Create(cmd.Context(), task); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %q\n", task.Title)
			return err
		},
	}

	cmd.Flags().StringVar(&task.Title, "title", "", "task title")
	cmd.Flags().StringVar(&task.Description, "description", "", "task description")
	cmd.Flags().StringVar(&task.OwnerID, "owner", "", "owner user id (defaults to you)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newTaskCompleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := findTask(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := app.tasks.Complete(cmd.Context(), task); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Completed %q\n", task.Title)
			return err
		},
	}
}

func newTaskDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := findTask(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := app.tasks.Delete(cmd.Context(), task); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", task.Title)
			return err
		},
	}
}

// findTask looks id up among the signed-in user's tasks. Writes send the
// full record, so it has to be fetched first.
func findTask(cmd *cobra.Command, app *app, id string) (model.Task, error) {
	snap, err := app.requireSession(cmd.Context())
	if err != nil {
		return model.Task{}, err
	}

	page, err := app.tasks.List(cmd.Context(), snap.Session.User.ID)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range page.Records {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("task %q not found", id)
}

func writeTasks(out io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "No tasks.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tTITLE")
	for _, t := range tasks {
		created := ""
		if ts := t.CreatedTime(); !ts.IsZero() {
			created = ts.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			t.ID,
			t.Status.Label(),
			created,
			truncate.StringWithTail(t.Title, 50, "..."),
		)
	}
	return w.Flush()
}
