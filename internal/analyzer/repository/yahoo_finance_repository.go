package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const yahooSearchPath = "/v1/finance/search"

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a client for the Yahoo Finance search endpoint.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.YahooFinance.BaseURL, "/"))
	client.SetTimeout(timeoutOrDefault(cfg.YahooFinance.Timeout, 15*time.Second))
	client.SetHeader("User-Agent", common.BrowserUserAgent)
	client.SetHeader("Accept", "application/json, text/plain, */*")

	return &yahooFinanceRepository{
		cfg:            cfg,
		log:            log,
		client:         client,
		requestLimiter: newRequestLimiter(cfg.YahooFinance.MaxRequestPerMinute),
	}
}

func (r *yahooFinanceRepository) SearchURL(company string) string {
	return fmt.Sprintf("%s%s?q=%s", strings.TrimRight(r.cfg.YahooFinance.BaseURL, "/"), yahooSearchPath, url.QueryEscape(company))
}

func (r *yahooFinanceRepository) SearchTicker(ctx context.Context, company string) (*dto.YahooQuote, int, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("q", company).
		Get(yahooSearchPath)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance", logger.ErrorField(err), logger.StringField("company", company))
		return nil, 0, fmt.Errorf("failed to send request to Yahoo Finance: %w", err)
	}

	if resp.IsError() {
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance", logger.IntField("status_code", resp.StatusCode()), logger.StringField("company", company))
		return nil, 0, fmt.Errorf("received non-OK response from Yahoo Finance: %d - %s", resp.StatusCode(), resp.String())
	}

	var body dto.YahooSearchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, 0, fmt.Errorf("failed to decode Yahoo Finance response: %w", err)
	}

	r.log.DebugContext(ctx, "Yahoo Finance search completed", logger.StringField("company", company), logger.IntField("quotes", len(body.Quotes)))

	if len(body.Quotes) == 0 || body.Quotes[0].Symbol == "" {
		return nil, len(body.Quotes), ErrTickerNotFound
	}

	quote := body.Quotes[0]
	return &quote, len(body.Quotes), nil
}
