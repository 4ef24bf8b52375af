package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// unreadWatcher polls the unread notification count and reprints state when
// it changes. The scheduler runs each invocation in its own goroutine, so
// the count and the shared writer are guarded by a mutex.
type unreadWatcher struct {
	app *App
	out io.Writer

	mu        sync.Mutex
	lastCount int
}

func newUnreadWatcher(app *App, out io.Writer) *unreadWatcher {
	return &unreadWatcher{app: app, out: out, lastCount: -1}
}

// poll fetches the unread count and, when it changed, prints it and signals
// a refresh. Safe for concurrent invocations.
func (w *unreadWatcher) poll(ctx context.Context) {
	count, err := w.app.Notifications.UnreadCount(ctx)
	if err != nil {
		w.app.Logger.Warn("unread count poll failed", "error", err)
		return
	}

	w.mu.Lock()
	changed := count != w.lastCount
	first := w.lastCount < 0
	if changed {
		fmt.Fprintf(w.out, "unread notifications: %d\n", count)
		w.lastCount = count
	}
	w.mu.Unlock()

	if changed && !first {
		w.app.Signal.Notify()
	}
}

// printRecent re-fetches and prints the recent plants under the same lock
// the poller writes with, so lines never interleave.
func (w *unreadWatcher) printRecent(ctx context.Context) error {
	recent, err := w.app.Plants.Recent(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, "recent plants:")
	for _, p := range recent {
		printPlantLine(w.out, p)
	}
	return nil
}

// notificationsWatch returns the foreground watcher: it polls the unread
// count on a schedule and, whenever it changes, signals a refresh that
// re-fetches and reprints the recent plants.
func notificationsWatch(app *App) *cobra.Command {
	var every string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for notification changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			refresh, cancel := app.Signal.Subscribe()
			defer cancel()

			watcher := newUnreadWatcher(app, cmd.OutOrStdout())

			// A poll that outlasts the interval (retries with backoff)
			// must not overlap the next one.
			scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
			if _, err := scheduler.AddFunc("@every "+every, func() { watcher.poll(ctx) }); err != nil {
				return fmt.Errorf("invalid --every interval: %w", err)
			}

			watcher.poll(ctx)
			scheduler.Start()
			defer scheduler.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-refresh:
					if err := watcher.printRecent(ctx); err != nil {
						app.Logger.Warn("refresh failed", "error", err)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&every, "every", "1m", "Poll interval (e.g. 30s, 1m)")
	return cmd
}
