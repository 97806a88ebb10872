package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/reviser/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check tracked components whenever a commit-cache file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			fail(err)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		t := h.tracker(h.sinks())
		run := func(ctx context.Context) {
			fired, err := t.Run(ctx)
			if err != nil {
				h.logger.Warn("check failed", "err", err)
			}
			if err := writeTransitions(os.Stdout, fired, flagJSON); err != nil {
				h.logger.Warn("writing transitions failed", "err", err)
			}
		}

		run(ctx)

		w := watch.New(h.cacheFiles(), run, watch.Options{
			Debounce: h.cfg.Watch.Debounce,
			Logger:   h.logger,
		})
		h.logger.Info("watching commit-cache files", "files", len(w.Files()))
		if err := w.Watch(ctx); err != nil {
			fail(err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&flagJSON, "json", false, "Write transitions as JSON")
}
