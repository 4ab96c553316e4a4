package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-news-analyzer/internal/analyzer/delivery/scheduler"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Analyzes the configured watchlist on a cron schedule",
		Run:   runSchedule,
	}
}

func runSchedule(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	pipeline := newPipeline(ctx, cfg, appLogger, nil)

	watchlistScheduler := scheduler.NewWatchlistScheduler(cfg, appLogger, pipeline)
	if err := watchlistScheduler.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down scheduler...")
	cancel()
	watchlistScheduler.Stop()
}
