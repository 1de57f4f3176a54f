package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	tasksync "github.com/nhle/taskapp/internal/sync"
)

func newWatchCmd(app *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a line for every live update of the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			live, err := app.subscriber()
			if err != nil {
				return err
			}
			live.Start(snap.Context(), snap.Session.User.ID, snap.Generation)
			defer live.Stop()

			out := cmd.OutOrStdout()
			seen := 0
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev := <-live.Events():
					switch ev := ev.(type) {
					case tasksync.StatusMsg:
						if ev.Connected {
							fmt.Fprintln(cmd.ErrOrStderr(), "connected")
						} else if ev.Err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "disconnected: %v\n", ev.Err)
						}
					case tasksync.RefreshMsg:
						fmt.Fprintf(out, "%s refresh %s\n", time.Now().Format(time.TimeOnly), ev.Topic)
						seen++
						if count > 0 && seen >= count {
							return nil
						}
					}
				}
			}
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many updates (0 watches until interrupted)")
	return cmd
}
