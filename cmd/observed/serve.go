package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/observe/pkg/metrics"
	"github.com/vango-dev/observe/pkg/observe"
	"github.com/vango-dev/observe/pkg/persist"
	"github.com/vango-dev/observe/pkg/registry"
	"github.com/vango-dev/observe/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the property server with a demo registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, statePath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&statePath, "state", "", "snapshot file for persisting property values (disabled if empty)")

	return cmd
}

func runServe(addr, statePath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	reg := registry.New()

	greeting := observe.NewProperty("hello")
	count := observe.NewProperty(0)
	uptime := observe.NewProperty(int64(0))

	if err := registry.Register(reg, "greeting", greeting); err != nil {
		return err
	}
	if err := registry.Register(reg, "count", count); err != nil {
		return err
	}
	if err := registry.Register(reg, "uptime_seconds", uptime); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore persisted values before anything watches the registry.
	var store persist.Store
	if statePath != "" {
		fileStore, err := persist.NewFileStore(statePath)
		if err != nil {
			return err
		}
		store = fileStore
		if err := persist.Restore(ctx, store, reg); err != nil {
			return err
		}
		logger.Info("state restored", "path", statePath)
	}

	// Tick the uptime property; every tick is a change and fans out to
	// WebSocket clients.
	start := time.Now()
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				uptime.Set(int64(time.Since(start).Seconds()))
			}
		}
	}()

	srv := server.New(reg, &server.Config{
		Addr:    addr,
		Logger:  logger,
		Metrics: metrics.New(),
	})

	err := srv.ListenAndServe(ctx)

	if store != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if saveErr := persist.Save(saveCtx, store, reg); saveErr != nil {
			logger.Error("saving state failed", "err", saveErr)
		} else {
			logger.Info("state saved", "path", statePath)
		}
	}

	return err
}
