package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskapp/internal/model"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(app.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", app.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := model.SaveConfig(app.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", app.configPath)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := app.cfg
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:        %s\n", app.configPath)
			fmt.Fprintf(out, "identity:      %s\n", c.Backend.IdentityURL)
			fmt.Fprintf(out, "tasks:         %s\n", c.Backend.TaskURL)
			fmt.Fprintf(out, "notifications: %s\n", c.Backend.NotificationURL)
			fmt.Fprintf(out, "users path:    %s\n", c.Backend.UsersPath)
			fmt.Fprintf(out, "broker:        %s %s (%s)\n", c.Broker.Kind, c.Broker.URL, c.Broker.Topic)
			fmt.Fprintf(out, "storage:       %s %s\n", c.Storage.Backend, c.Storage.Path)
			return nil
		},
	}
}
