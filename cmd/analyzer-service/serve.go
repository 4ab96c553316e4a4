package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-news-analyzer/internal/analyzer/delivery/consumer"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/redis"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consumes analysis requests from the Redis stream",
		Run:   runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting analyzer service", logger.StringField("name", cfg.App.Name))

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	if err := redisClient.EnsureGroup(ctx, common.RedisStreamAnalysisRequest, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	pipeline := newPipeline(ctx, cfg, appLogger, nil)

	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, pipeline, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Analyzer service started. Waiting for requests...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down analyzer service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Analyzer service stopped.")
}
