package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semrepo/config"
	"github.com/c360studio/semrepo/repository"
	"github.com/c360studio/semrepo/watch"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		debounce    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Republish the seed repository whenever its file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Repository.Backend != config.BackendMemory || a.cfg.Repository.Seed == "" {
				return fmt.Errorf("watch needs the memory backend with repository.seed set")
			}

			pub, err := a.publisher(ctx)
			if err != nil {
				return err
			}
			a.serveMetrics(ctx, metricsAddr)

			if _, _, err := a.publishTree(ctx, pub, repository.RootPath, true, nil); err != nil {
				return err
			}

			w, err := watch.NewFileWatcher([]string{a.cfg.Repository.Seed}, debounce, a.logger)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			for ev := range w.Events() {
				if ev.Operation == watch.OpDelete {
					a.logger.Warn("Seed file removed, keeping last content", "path", ev.Path)
					continue
				}
				if err := a.reload(ctx, ev.Path); err != nil {
					a.logger.Error("Reload failed", "path", ev.Path, "error", err)
					continue
				}
				// The transform changed, so the publisher must be rebuilt.
				pub = a.newPublisher(a.nats)
				nodes, triples, err := a.publishTree(ctx, pub, repository.RootPath, true, nil)
				if err != nil {
					a.logger.Error("Republish failed", "error", err)
					continue
				}
				a.logger.Info("Republished seed", "nodes", nodes, "triples", triples)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounceDelay, "Wait this long for changes to settle")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func (a *app) reload(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store, err := loadSeed(path)
	if err != nil {
		return err
	}
	return a.rebind(store)
}
