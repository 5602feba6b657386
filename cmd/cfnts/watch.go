package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfnts/cfnts/internal/logging"
	"github.com/cfnts/cfnts/internal/runner"
	"github.com/cfnts/cfnts/internal/watcher"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	f := &generateFlags{}
	var debounce, interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever schema documents change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			gen, err := newGenerator(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			var hook *runner.Runner
			if len(cfg.OnGenerate) > 0 {
				hook = runner.New(cfg.OnGenerate, cfg.Output, out, cmd.ErrOrStderr())
				defer hook.Stop()
			}
			regenerate := func() {
				if err := runOnce(ctx, gen, cfg, out); err != nil {
					logging.Error("generation failed", "error", err)
					return
				}
				if hook != nil {
					if err := hook.Restart(); err != nil {
						logging.Error("onGenerate hook failed to start", "error", err)
					}
				}
			}
			regenerate()

			dirs := []string{cfg.Schemas}
			if cfg.Docs != "" {
				dirs = append(dirs, filepath.Dir(cfg.Docs))
			}
			w := watcher.New(dirs, []string{".json"}, debounce, func(events []watcher.Event) {
				for _, e := range events {
					logging.Debug("schema changed", "path", e.Path, "op", string(e.Op))
				}
				regenerate()
			})
			w.SetPollInterval(interval)

			logging.Info("watching for changes", "dir", cfg.Schemas)
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before regenerating")
	cmd.Flags().DurationVar(&interval, "poll", watcher.DefaultPollInterval, "polling interval")
	return cmd
}
