package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/notification"
)

// Notifications returns the notifications command group.
func Notifications(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "View and manage notifications",
	}
	cmd.AddCommand(
		notificationsCount(app),
		notificationsUnread(app),
		notificationsList(app),
		notificationsReadAll(app),
		notificationsWatch(app),
	)
	return cmd
}

func notificationsCount(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the unread badge count",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := app.Notifications.UnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(map[string]int{"unread": count})
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func notificationsUnread(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "List all unread notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Notifications.Unread(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(list)
			}
			for _, n := range list {
				printNotificationLine(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func notificationsList(app *App) *cobra.Command {
	var typ string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications of one type",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Notifications.ByType(cmd.Context(), typ, page)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(result)
			}
			out := cmd.OutOrStdout()
			for _, n := range result.Content {
				printNotificationLine(out, n)
			}
			fmt.Fprintln(out, pageFooter(result.Number, result.TotalPages, result.TotalElements))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Notification type tag (e.g. plant-stage-change)")
	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func notificationsReadAll(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Notifications.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked read")
			return nil
		},
	}
}

func printNotificationLine(out io.Writer, n notification.Notification) {
	marker := " "
	if !n.Read {
		marker = "*"
	}
	fmt.Fprintf(out, "%s %s  [%s]  %s: %s\n", marker, n.CreatedAt, n.Type, n.Title, n.Content)
}
