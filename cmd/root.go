package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nhle/taskapp/internal/model"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "taskapp",
		Short:         "Terminal client for the task and notification services",
		Long:          "taskapp signs in to the identity service, manages your tasks, shows unread notifications and refreshes them live from the message broker.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.loadConfig()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return app.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, app)
		},
	}
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", model.DefaultConfigPath(), "path to the config file")

	rootCmd.AddCommand(
		newUICmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRegisterCmd(app),
		newTasksCmd(app),
		newNotificationsCmd(app),
		newWatchCmd(app),
		newDevserverCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
