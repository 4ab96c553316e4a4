package service

import (
	"context"
	"errors"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/repository"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/tracking"
	"golang-stock-news-analyzer/pkg/utils"
)

// TickerResolver maps a company name to its primary ticker symbol.
type TickerResolver interface {
	// Resolve returns "" when no ticker could be found or the lookup failed.
	Resolve(ctx context.Context, parent *tracking.Span, company string) string
}

type tickerResolver struct {
	cfg          *config.Config
	log          *logger.Logger
	tracker      *tracking.Tracker
	yahooFinance repository.YahooFinanceRepository
}

func NewTickerResolver(cfg *config.Config, log *logger.Logger, tracker *tracking.Tracker, yahooFinance repository.YahooFinanceRepository) TickerResolver {
	return &tickerResolver{
		cfg:          cfg,
		log:          log,
		tracker:      tracker,
		yahooFinance: yahooFinance,
	}
}

func (s *tickerResolver) Resolve(ctx context.Context, parent *tracking.Span, company string) (ticker string) {
	span := s.tracker.StartSpan(ctx, common.SpanTickerExtraction, parent)
	defer span.End(ctx)
	defer func() {
		if r := recover(); r != nil {
			err := utils.RecoverError(r)
			s.log.ErrorContext(ctx, "Ticker extraction panicked", logger.ErrorField(err), logger.StringField("company", company))
			span.Error(ctx, err)
			ticker = ""
		}
	}()

	span.SetParam(ctx, "operation", common.SpanTickerExtraction)
	span.SetParam(ctx, "company_name", company)
	span.SetParam(ctx, "search_url", s.yahooFinance.SearchURL(company))

	stageCtx, cancel := context.WithTimeout(ctx, stageTimeout(s.cfg.Pipeline.StageTimeout))
	defer cancel()

	quote, count, err := s.yahooFinance.SearchTicker(stageCtx, company)
	if errors.Is(err, repository.ErrTickerNotFound) {
		s.log.InfoContext(ctx, "No ticker found", logger.StringField("company", company))
		span.Fail(ctx, "no_quotes_found")
		return ""
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to extract ticker", logger.ErrorField(err), logger.StringField("company", company))
		span.Error(ctx, err)
		return ""
	}

	span.LogMetric(ctx, "quotes_count", float64(count))
	span.SetParam(ctx, "ticker_found", quote.Symbol)
	span.Succeed(ctx)
	s.log.InfoContext(ctx, "Ticker extracted", logger.StringField("company", company), logger.StringField("ticker", quote.Symbol))
	return quote.Symbol
}
