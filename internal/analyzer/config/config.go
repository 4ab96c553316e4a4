package config

import (
	"time"

	"golang-stock-news-analyzer/pkg/config"
	"golang-stock-news-analyzer/pkg/tracking"
)

const (
	GeminiBackendAPI    = "gemini_api"
	GeminiBackendVertex = "vertex"
)

const (
	NewsProviderTavily     = "tavily"
	NewsProviderGoogleNews = "google_news"
)

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Gemini holds the configuration for the Gemini API or Vertex AI.
type Gemini struct {
	Backend             string        `mapstructure:"backend"`
	APIKey              string        `mapstructure:"api_key"`
	Project             string        `mapstructure:"project"`
	Location            string        `mapstructure:"location"`
	Model               string        `mapstructure:"model"`
	Temperature         float32       `mapstructure:"temperature"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// YahooFinance holds the configuration for the Yahoo Finance search endpoint.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// News selects the news search provider.
type News struct {
	Provider string `mapstructure:"provider"`
}

// Tavily holds the configuration for the Tavily search API.
type Tavily struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// GoogleNews holds the configuration for the Google News RSS search feed.
type GoogleNews struct {
	BaseURL             string        `mapstructure:"base_url"`
	Language            string        `mapstructure:"language"`
	Region              string        `mapstructure:"region"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Pipeline holds knobs of the analysis pipeline itself.
type Pipeline struct {
	MaxNewsResults  int           `mapstructure:"max_news_results"`
	StageTimeout    time.Duration `mapstructure:"stage_timeout"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`
}

// Worker holds configuration of the queue consumer.
type Worker struct {
	BlockTimeout time.Duration `mapstructure:"block_timeout"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

// Schedule holds configuration of the watchlist scheduler.
type Schedule struct {
	Cron      string   `mapstructure:"cron"`
	Watchlist []string `mapstructure:"watchlist"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Redis        config.Redis    `mapstructure:"redis"`
	AI           AI              `mapstructure:"ai"`
	Gemini       Gemini          `mapstructure:"gemini"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	News         News            `mapstructure:"news"`
	Tavily       Tavily          `mapstructure:"tavily"`
	GoogleNews   GoogleNews      `mapstructure:"google_news"`
	Tracking     tracking.Config `mapstructure:"tracking"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Pipeline     Pipeline        `mapstructure:"pipeline"`
	Worker       Worker          `mapstructure:"worker"`
	Schedule     Schedule        `mapstructure:"schedule"`
}

// Defaults returns the value of every key when neither the file nor the
// environment sets it.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":    "stock-news-analyzer",
		"app.env":     "development",
		"app.version": "1.0",

		"logger.level":    "info",
		"logger.encoding": "console",

		"redis.host":           "localhost",
		"redis.port":           6379,
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      10,
		"redis.stream_max_len": 1000,

		"ai.provider": "gemini",

		"gemini.backend":                "gemini_api",
		"gemini.api_key":                "",
		"gemini.project":                "",
		"gemini.location":               "us-central1",
		"gemini.model":                  "gemini-2.0-flash",
		"gemini.temperature":            0.1,
		"gemini.timeout":                "30s",
		"gemini.max_request_per_minute": 15,

		"yahoo_finance.base_url":               "https://query1.finance.yahoo.com",
		"yahoo_finance.timeout":                "15s",
		"yahoo_finance.max_request_per_minute": 60,

		"news.provider": "tavily",

		"tavily.base_url":               "https://api.tavily.com",
		"tavily.api_key":                "",
		"tavily.timeout":                "20s",
		"tavily.max_request_per_minute": 60,

		"google_news.base_url":               "https://news.google.com",
		"google_news.language":               "en-US",
		"google_news.region":                 "US",
		"google_news.timeout":                "20s",
		"google_news.max_request_per_minute": 30,

		"tracking.enabled":    true,
		"tracking.uri":        "http://localhost:5000",
		"tracking.experiment": "stock_news_analysis",
		"tracking.timeout":    "10s",

		"telegram.bot_token": "",
		"telegram.chat_id":   0,

		"pipeline.max_news_results": 5,
		"pipeline.stage_timeout":    "30s",
		"pipeline.analysis_timeout": "60s",

		"worker.block_timeout": "2s",
		"worker.run_timeout":   "3m",

		"schedule.cron":      "0 8 * * 1-5",
		"schedule.watchlist": []string{},
	}
}

// Load loads the analyzer configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
