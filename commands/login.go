package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/api"
	"github.com/verdantlabs/verdant/auth"
)

// Login returns the login command.
func Login(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				var err error
				password, err = prompt(reader, cmd.OutOrStdout(), "Password")
				if err != nil {
					return err
				}
			}

			if err := app.Auth.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// Logout returns the logout command.
func Logout(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.Auth.Logout(cmd.Context())
			if errors.Is(err, api.ErrNoSession) {
				return err
			}
			if err != nil {
				// Local state is already cleared; the server error
				// is still worth surfacing.
				fmt.Fprintln(os.Stderr, "Warning: server-side logout failed:", err)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// Register returns the account-creation command.
func Register(app *App) *cobra.Command {
	var email, password, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				var err error
				password, err = prompt(reader, cmd.OutOrStdout(), "Password")
				if err != nil {
					return err
				}
			}

			u, err := app.Auth.Register(cmd.Context(), auth.Registration{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s %s <%s>\n", u.FirstName, u.LastName, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}
