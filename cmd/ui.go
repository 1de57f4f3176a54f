package cmd

import (
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	tui "github.com/nhle/taskapp/internal/app"
)

func newUICmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, app)
		},
	}
}

func runUI(cmd *cobra.Command, app *app) error {
	if err := app.wire(); err != nil {
		return err
	}

	closeLog, err := setupUILogging()
	if err != nil {
		return err
	}
	defer closeLog()

	live, err := app.subscriber()
	if err != nil {
		return err
	}
	unwatch := app.manager.Watch(live.OnSession)
	defer live.Stop()
	defer unwatch()

	model := tui.New(tui.Deps{
		Session:       app.manager,
		Identity:      app.identity,
		Tasks:         app.tasks,
		Notifications: app.notifications,
		Live:          live,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}

// setupUILogging keeps log output off the terminal while the UI owns it.
// Set TASKAPP_DEBUG to write it to taskapp-debug.log instead.
func setupUILogging() (func(), error) {
	if os.Getenv("TASKAPP_DEBUG") == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	f, err := tea.LogToFile("taskapp-debug.log", "taskapp")
	if err != nil {
		return nil, err
	}
	return func() {
		_ = f.Close()
		log.SetOutput(os.Stderr)
	}, nil
}
