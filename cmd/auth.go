package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskapp/internal/model"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.wire(); err != nil {
				return err
			}
			if password == "" {
				if err := promptPassword(&password); err != nil {
					return err
				}
			}

			req := model.LoginRequest{Email: strings.TrimSpace(email), Password: password}
			if err := app.manager.SignIn(cmd.Context(), req); err != nil {
				return fmt.Errorf("sign in: %w", err)
			}

			user := app.manager.Snapshot().Session.User
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptPassword(dst *string) error {
	return huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(dst).
		Run()
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.wire(); err != nil {
				return err
			}
			app.manager.Restore(cmd.Context())
			app.manager.SignOut(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := app.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			s := snap.Session
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", s.User.Name, s.User.Email)
			fmt.Fprintf(out, "role: %s\n", s.User.Role.Label())
			fmt.Fprintf(out, "id:   %s\n", s.User.ID)
			if !s.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "token expires %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newRegisterCmd(app *app) *cobra.Command {
	var (
		req  model.RegisterRequest
		role string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the identity service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.wire(); err != nil {
				return err
			}

			req.Role = model.Role(strings.ToUpper(role))
			if err := req.Validate(req.Password); err != nil {
				return err
			}

			profile, err := app.identity.Register(cmd.Context(), req)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s> (%s)\n", profile.Name, profile.Email, profile.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "account role (USER or ADMIN)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
