package commands

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

// resetState is the step the password-reset flow is currently on. A step
// only advances when the backend confirms it; any rejection keeps the flow
// where it is and surfaces the error.
type resetState int

const (
	stateEmailEntry resetState = iota
	stateOTPPending
	statePasswordReset
	stateDone
)

// ResetPassword returns the interactive password-reset command: email entry,
// OTP verification, then the new password.
func ResetPassword(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten password via email OTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			state := stateEmailEntry
			for state != stateDone {
				switch state {
				case stateEmailEntry:
					if email == "" {
						var err error
						email, err = prompt(reader, out, "Email")
						if err != nil {
							return err
						}
					}
					ok, err := app.Auth.VerifyEmail(ctx, email)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("could not start verification for %s", email)
					}
					fmt.Fprintf(out, "A one-time code was sent to %s\n", email)
					state = stateOTPPending

				case stateOTPPending:
					code, err := prompt(reader, out, "One-time code")
					if err != nil {
						return err
					}
					ok, err := app.Auth.VerifyOTP(ctx, email, code)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Code rejected, try again")
						continue
					}
					state = statePasswordReset

				case statePasswordReset:
					newPassword, err := prompt(reader, out, "New password")
					if err != nil {
						return err
					}
					confirm, err := prompt(reader, out, "Confirm password")
					if err != nil {
						return err
					}
					if newPassword != confirm {
						fmt.Fprintln(out, "Passwords do not match, try again")
						continue
					}
					if err := app.Auth.ChangePassword(ctx, email, newPassword, confirm); err != nil {
						return err
					}
					state = stateDone
				}
			}

			fmt.Fprintln(out, "Password updated; you are signed in")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")

	return cmd
}
