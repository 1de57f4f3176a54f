package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/nhle/taskapp/internal/model"
)

func newNotificationsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "List unread notifications",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			ns, err := app.notifications.ListUnread(cmd.Context(), snap.Session.User.ID)
			if err != nil {
				return err
			}
			return writeNotifications(cmd.OutOrStdout(), ns)
		},
	}

	cmd.AddCommand(newNotificationsReadCmd(app))
	return cmd
}

func newNotificationsReadCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark one or all unread notifications as read",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("pass either an id or --all")
			}
			if !all && len(args) != 1 {
				return fmt.Errorf("requires a notification id or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			ns, err := app.notifications.ListUnread(cmd.Context(), snap.Session.User.ID)
			if err != nil {
				return err
			}

			if all {
				if err := app.notifications.MarkAllRead(cmd.Context(), ns); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notification(s) as read\n", len(ns))
				return err
			}

			if err := app.notifications.MarkRead(cmd.Context(), ns, args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Marked as read")
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "mark every unread notification as read")
	return cmd
}

func writeNotifications(out io.Writer, ns []model.Notification) error {
	if len(ns) == 0 {
		_, err := fmt.Fprintln(out, "No unread notifications.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tWHEN\tTITLE")
	for _, n := range ns {
		when := ""
		if ts := n.NotifiedTime(); !ts.IsZero() {
			when = ts.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			n.ID,
			n.Status.Label(),
			when,
			truncate.StringWithTail(n.Title, 50, "..."),
		)
	}
	return w.Flush()
}
