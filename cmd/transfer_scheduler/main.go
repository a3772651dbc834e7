package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthsoft/household_ledger_app/internal/core/services"
	"github.com/hearthsoft/household_ledger_app/internal/middleware"
	"github.com/hearthsoft/household_ledger_app/internal/platform/config"
	"github.com/hearthsoft/household_ledger_app/internal/repositories/database/pgsql"
	"github.com/hearthsoft/household_ledger_app/pkg/database"
	"golang.org/x/sync/errgroup"
)

// The scheduler materializes due transfer instances for every active rule and
// flags overdue ones as MISSED. It runs one pass immediately, then ticks at
// the configured interval until interrupted.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("component", "transfer_scheduler"))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, repos)
	transferService := serviceContainer.Transfer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SchedulerInterval)
		defer ticker.Stop()

		runOnce(gctx, logger, transferService.MaterializeDueInstances)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				runOnce(gctx, logger, transferService.MaterializeDueInstances)
			}
		}
	})

	logger.Info("Scheduler started", slog.Duration("interval", cfg.SchedulerInterval))
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Scheduler stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Scheduler exited.")
}

func runOnce(ctx context.Context, logger *slog.Logger, materialize func(context.Context, time.Time) (int, int, error)) {
	runCtx := middleware.CtxWithLogger(ctx, logger)
	created, missed, err := materialize(runCtx, time.Now())
	if err != nil {
		logger.Error("Materialization run failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("Materialization run completed",
		slog.Int("instances_created", created),
		slog.Int("instances_missed", missed),
	)
}
