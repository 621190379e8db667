// Package httpd implements the HTTP server command.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/SVatsa12/teamforge/cmd/common"
	"github.com/SVatsa12/teamforge/internal/aggregator"
	"github.com/SVatsa12/teamforge/internal/api"
	"github.com/SVatsa12/teamforge/internal/fetcher"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/parser"
)

const shutdownTimeout = 10 * time.Second

// Command creates the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server exposing the allocation and event
aggregation APIs. The server runs until interrupted with Ctrl+C.`,
		RunE: runServer,
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer deps.Logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	allocService, cleanup, err := common.NewAllocatorService(ctx, deps)
	if err != nil {
		return fmt.Errorf("create allocator service: %w", err)
	}
	defer cleanup()

	srcs, err := common.LoadSources(deps)
	if err != nil {
		return err
	}

	aggService := aggregator.NewService(
		srcs,
		fetcher.NewChain(deps.Config.Aggregator, deps.Logger),
		parser.NewRegistry(),
		aggregator.NewCache(deps.Config.Aggregator.CacheTTL),
		deps.Logger,
	)

	scheduler, err := startRefreshScheduler(ctx, deps, aggService)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	router := api.SetupRouter(deps.Logger, allocService, aggService, deps.Config)
	server := api.NewServer(router, deps.Config)

	errCh := make(chan error, 1)

	go func() {
		deps.Logger.Info("HTTP server starting",
			logger.String("address", deps.Config.Server.Address),
		)
		if serveErr := server.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		deps.Logger.Info("Shutting down HTTP server")
	case serveErr := <-errCh:
		return fmt.Errorf("http server: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

// startRefreshScheduler warms the cache at every TTL interval so interactive
// requests mostly hit a fresh slot.
func startRefreshScheduler(ctx context.Context, deps *common.Deps, agg *aggregator.Service) (*cron.Cron, error) {
	scheduler := cron.New()

	spec := fmt.Sprintf("@every %s", deps.Config.Aggregator.CacheTTL)

	_, err := scheduler.AddFunc(spec, func() {
		agg.Refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule cache refresh: %w", err)
	}

	scheduler.Start()
	deps.Logger.Info("Cache refresh scheduled",
		logger.Duration("interval", deps.Config.Aggregator.CacheTTL),
	)

	return scheduler, nil
}
