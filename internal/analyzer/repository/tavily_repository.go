package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type tavilyRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
}

// NewTavilyRepository creates a news search client backed by the Tavily API.
// Searches use basic depth, no generated answer and include raw content.
func NewTavilyRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.Tavily.BaseURL, "/"))
	client.SetTimeout(timeoutOrDefault(cfg.Tavily.Timeout, 20*time.Second))
	client.SetHeader("Content-Type", "application/json")

	return &tavilyRepository{
		cfg:            cfg,
		log:            log,
		client:         client,
		requestLimiter: newRequestLimiter(cfg.Tavily.MaxRequestPerMinute),
	}
}

func (r *tavilyRepository) Name() string {
	return "tavily"
}

func (r *tavilyRepository) Search(ctx context.Context, query string, maxResults int) ([]dto.NewsItem, error) {
	if r.cfg.Tavily.APIKey == "" {
		return nil, errors.New("tavily api key is not configured")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.TavilySearchRequest{
		Query:             query,
		MaxResults:        maxResults,
		SearchDepth:       "basic",
		IncludeAnswer:     false,
		IncludeRawContent: true,
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.cfg.Tavily.APIKey).
		SetBody(payload).
		Post("/search")
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Tavily", logger.ErrorField(err), logger.StringField("query", query))
		return nil, fmt.Errorf("failed to send request to Tavily: %w", err)
	}

	if resp.IsError() {
		var apiErr dto.TavilyErrorResponse
		detail := resp.String()
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Detail.Error != "" {
			detail = apiErr.Detail.Error
		}
		r.log.ErrorContext(ctx, "Received non-OK response from Tavily", logger.IntField("status_code", resp.StatusCode()), logger.StringField("query", query))
		return nil, fmt.Errorf("received non-OK response from Tavily: %d - %s", resp.StatusCode(), detail)
	}

	var body dto.TavilySearchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode Tavily response: %w", err)
	}

	items := make([]dto.NewsItem, 0, len(body.Results))
	for _, result := range body.Results {
		items = append(items, dto.NewsItem{
			Title:   result.Title,
			URL:     result.URL,
			Content: result.Content,
			Source:  r.Name(),
		})
	}

	r.log.DebugContext(ctx, "Tavily search completed", logger.StringField("query", query), logger.IntField("results", len(items)))
	return items, nil
}
