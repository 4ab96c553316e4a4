package service

import (
	"context"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/internal/analyzer/repository"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/tracking"
	"golang-stock-news-analyzer/pkg/utils"
)

// NewsAnalyzer turns news snippets into one structured analysis.
type NewsAnalyzer interface {
	// Analyze returns nil when the model produced no usable function call or the call failed.
	Analyze(ctx context.Context, parent *tracking.Span, company, ticker string, snippets []string) *dto.AnalysisResult
}

type newsAnalyzer struct {
	cfg     *config.Config
	log     *logger.Logger
	tracker *tracking.Tracker
	aiRepo  repository.AIRepository
}

func NewNewsAnalyzer(cfg *config.Config, log *logger.Logger, tracker *tracking.Tracker, aiRepo repository.AIRepository) NewsAnalyzer {
	return &newsAnalyzer{
		cfg:     cfg,
		log:     log,
		tracker: tracker,
		aiRepo:  aiRepo,
	}
}

func (s *newsAnalyzer) Analyze(ctx context.Context, parent *tracking.Span, company, ticker string, snippets []string) (result *dto.AnalysisResult) {
	span := s.tracker.StartSpan(ctx, common.SpanSentimentAnalysis, parent)
	defer span.End(ctx)
	defer func() {
		if r := recover(); r != nil {
			err := utils.RecoverError(r)
			s.log.ErrorContext(ctx, "News analysis panicked", logger.ErrorField(err), logger.StringField("ticker", ticker))
			span.Error(ctx, err)
			result = nil
		}
	}()

	span.SetParam(ctx, "operation", common.SpanSentimentAnalysis)
	span.SetParam(ctx, "company_name", company)
	span.SetParam(ctx, "stock_code", ticker)
	span.SetParam(ctx, "news_articles_count", len(snippets))
	span.SetParam(ctx, "model", s.aiRepo.Model())
	span.SetParam(ctx, "temperature", s.aiRepo.Temperature())

	if len(snippets) == 0 {
		s.log.WarnContext(ctx, "No news to analyze", logger.StringField("ticker", ticker))
		span.Fail(ctx, "no_news_provided")
		return nil
	}

	newsText := repository.JoinNews(snippets)
	prompt := repository.BuildAggregateNewsPrompt(company, ticker, newsText)
	span.LogText(ctx, "input_prompt.txt", prompt)
	span.LogText(ctx, "input_news_articles.txt", newsText)
	span.LogJSON(ctx, "function_schema.json", repository.AggregateCompanyNewsSchema())

	stageCtx, cancel := context.WithTimeout(ctx, stageTimeout(s.cfg.Pipeline.AnalysisTimeout))
	defer cancel()

	resp, err := s.aiRepo.AnalyzeNews(stageCtx, prompt)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to analyze news", logger.ErrorField(err), logger.StringField("ticker", ticker))
		span.Error(ctx, err)
		return nil
	}

	extraction := repository.ExtractAnalysis(resp)
	span.LogMetric(ctx, "function_calls_count", float64(extraction.FunctionCalls))

	if err := extraction.Err(); err != nil {
		s.log.WarnContext(ctx, "Unusable model response",
			logger.ErrorField(err),
			logger.StringField("ticker", ticker),
			logger.StringField("extraction", extraction.Kind.String()),
		)
		if extraction.Kind == repository.ExtractionMalformed {
			span.Fail(ctx, "malformed_function_call")
			span.SetParam(ctx, "failure_detail", extraction.Reason)
		} else {
			span.Fail(ctx, "no_function_call_found")
		}
		span.SetParam(ctx, "error_message", err.Error())
		return nil
	}

	result = extraction.Result
	span.Succeed(ctx)
	span.SetParam(ctx, "sentiment_detected", result.Sentiment)
	span.LogMetric(ctx, "confidence_score", result.ConfidenceScore)
	span.LogMetric(ctx, "people_count", float64(len(result.PeopleNames)))
	span.LogMetric(ctx, "companies_count", float64(len(result.OtherCompaniesReferred)))
	span.LogMetric(ctx, "industries_count", float64(len(result.RelatedIndustries)))

	span.LogJSON(ctx, "analysis_output.json", result)
	span.LogText(ctx, "summary.txt", result.NewsDesc)
	span.LogText(ctx, "market_implications.txt", result.MarketImplications)

	s.log.InfoContext(ctx, "News analyzed",
		logger.StringField("ticker", ticker),
		logger.StringField("sentiment", string(result.Sentiment)),
		logger.Float64Field("confidence_score", result.ConfidenceScore),
	)
	return result
}
