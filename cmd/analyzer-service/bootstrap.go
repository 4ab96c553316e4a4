package main

import (
	"context"
	"fmt"
	"log"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/repository"
	"golang-stock-news-analyzer/internal/analyzer/service"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/telegram"
	"golang-stock-news-analyzer/pkg/tracking"
)

func loadConfigAndLogger() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

// newTracker connects to the tracking server, or keeps spans in memory when tracking
// is disabled or the server cannot be reached.
func newTracker(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) *tracking.Tracker {
	trackingCfg := cfg.Tracking
	if trackingCfg.Enabled {
		tracker, err := tracking.NewTracker(ctx, trackingCfg, tracking.NewMLflowBackend(trackingCfg), appLogger)
		if err == nil {
			return tracker
		}
		appLogger.Warn("Tracking server unavailable, keeping runs in memory", logger.ErrorField(err), logger.StringField("uri", trackingCfg.URI))
	}

	if trackingCfg.Experiment == "" {
		trackingCfg.Experiment = "stock_news_analysis"
	}
	tracker, err := tracking.NewTracker(ctx, trackingCfg, tracking.NewMemoryBackend(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracking", logger.ErrorField(err))
	}
	return tracker
}

func newNewsRepository(cfg *config.Config, appLogger *logger.Logger) repository.NewsRepository {
	switch cfg.News.Provider {
	case config.NewsProviderGoogleNews:
		return repository.NewGoogleNewsRepository(cfg, appLogger)
	case config.NewsProviderTavily, "":
		if cfg.Tavily.APIKey == "" {
			appLogger.Warn("Tavily api key is not set, falling back to Google News")
			return repository.NewGoogleNewsRepository(cfg, appLogger)
		}
		return repository.NewTavilyRepository(cfg, appLogger)
	default:
		appLogger.Fatal("Invalid news provider specified in config", logger.StringField("provider", cfg.News.Provider))
		return nil
	}
}

func newAIRepository(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (repository.AIRepository, error) {
	switch cfg.AI.Provider {
	case "gemini", "":
		genAiClient, err := repository.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repository.NewGeminiAIRepository(cfg, appLogger, genAiClient.Models), nil
	default:
		return nil, fmt.Errorf("invalid AI provider specified in config: %s", cfg.AI.Provider)
	}
}

func newNotifier(cfg *config.Config, appLogger *logger.Logger) telegram.Notifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}
	notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Warn("Telegram notifier disabled", logger.ErrorField(err))
		return nil
	}
	return notifier
}

// newPipeline builds the stage services and the driver around them.
func newPipeline(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, progress service.ProgressReporter) service.PipelineService {
	tracker := newTracker(ctx, cfg, appLogger)

	aiRepo, err := newAIRepository(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize AI repository", logger.ErrorField(err))
	}

	yahooFinanceRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	newsRepo := newNewsRepository(cfg, appLogger)

	return service.NewPipelineService(cfg, appLogger, tracker,
		service.NewTickerResolver(cfg, appLogger, tracker, yahooFinanceRepo),
		service.NewNewsFetcher(cfg, appLogger, tracker, newsRepo),
		service.NewNewsAnalyzer(cfg, appLogger, tracker, aiRepo),
		progress,
		newNotifier(cfg, appLogger),
	)
}
