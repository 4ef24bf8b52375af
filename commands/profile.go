package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/user"
)

// Profile returns the profile command group.
func Profile(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit the account profile",
	}
	cmd.AddCommand(profileShow(app), profileUpdate(app))
	return cmd
}

func profileShow(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the full profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := app.User.Info(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:   %s %s\n", info.FirstName, info.LastName)
			fmt.Fprintf(out, "Email:  %s\n", info.Email)
			if info.DateOfBirth != "" {
				fmt.Fprintf(out, "Born:   %s\n", info.DateOfBirth)
			}
			if info.AvatarURL != "" {
				fmt.Fprintf(out, "Avatar: %s\n", info.AvatarURL)
			}
			return nil
		},
	}
}

func profileUpdate(app *App) *cobra.Command {
	var firstName, lastName, avatarPath string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update name and avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := user.Update{FirstName: firstName, LastName: lastName}

			if avatarPath != "" {
				upload, closeFn, err := loadUpload(avatarPath)
				if err != nil {
					return err
				}
				defer closeFn()
				upd.Avatar = &upload
			}

			info, err := app.User.Update(cmd.Context(), upd)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s %s\n", info.FirstName, info.LastName)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&avatarPath, "avatar", "", "Path to an avatar image")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}

// Whoami returns the command printing the reduced account header.
func Whoami(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.User.Profile(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(p)
			}
			name := p.FullName
			if name == "" {
				name = "(no name)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", name, p.Email)
			return nil
		},
	}
}
