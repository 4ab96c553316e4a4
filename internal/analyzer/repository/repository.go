package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/dto"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var (
	// ErrTickerNotFound is returned when the finance search yields no usable quote.
	ErrTickerNotFound = errors.New("no ticker found")
	// ErrNoFunctionCall is returned when the model response carries no aggregate_company_news call.
	ErrNoFunctionCall = errors.New("no function call found in response")
	// ErrMalformedFunctionCall is returned when the call arguments do not satisfy the schema.
	ErrMalformedFunctionCall = errors.New("malformed function call")
)

// YahooFinanceRepository resolves company names to quotes.
type YahooFinanceRepository interface {
	// SearchTicker returns the first quote for company and how many quotes matched.
	SearchTicker(ctx context.Context, company string) (*dto.YahooQuote, int, error)
	SearchURL(company string) string
}

// NewsRepository searches recent news. Results keep the provider's relevance order.
type NewsRepository interface {
	Search(ctx context.Context, query string, maxResults int) ([]dto.NewsItem, error)
	Name() string
}

// AIRepository runs the structured news analysis call.
type AIRepository interface {
	AnalyzeNews(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
	Model() string
	Temperature() float32
}

func newRequestLimiter(maxRequestPerMinute int) *rate.Limiter {
	if maxRequestPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return rate.NewLimiter(rate.Every(secondsPerRequest), 1)
}

func timeoutOrDefault(timeout, fallback time.Duration) time.Duration {
	if timeout <= 0 {
		return fallback
	}
	return timeout
}
