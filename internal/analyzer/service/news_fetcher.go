package service

import (
	"context"
	"fmt"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/repository"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/tracking"
	"golang-stock-news-analyzer/pkg/utils"
)

// NewsFetcher collects recent news snippets about a company.
type NewsFetcher interface {
	// Fetch returns snippets in relevance order. The slice is empty when nothing was
	// found or the search failed.
	Fetch(ctx context.Context, parent *tracking.Span, company string, maxResults int) []string
}

type newsFetcher struct {
	cfg      *config.Config
	log      *logger.Logger
	tracker  *tracking.Tracker
	newsRepo repository.NewsRepository
}

func NewNewsFetcher(cfg *config.Config, log *logger.Logger, tracker *tracking.Tracker, newsRepo repository.NewsRepository) NewsFetcher {
	return &newsFetcher{
		cfg:      cfg,
		log:      log,
		tracker:  tracker,
		newsRepo: newsRepo,
	}
}

// SearchQuery is the news query sent for company.
func SearchQuery(company string) string {
	return company + " latest news "
}

func (s *newsFetcher) Fetch(ctx context.Context, parent *tracking.Span, company string, maxResults int) (snippets []string) {
	if maxResults <= 0 {
		maxResults = s.cfg.Pipeline.MaxNewsResults
	}
	if maxResults <= 0 {
		maxResults = common.DefaultMaxNewsResults
	}

	span := s.tracker.StartSpan(ctx, common.SpanNewsFetching, parent)
	defer span.End(ctx)
	defer func() {
		if r := recover(); r != nil {
			err := utils.RecoverError(r)
			s.log.ErrorContext(ctx, "News fetching panicked", logger.ErrorField(err), logger.StringField("company", company))
			span.Error(ctx, err)
			snippets = []string{}
		}
	}()

	query := SearchQuery(company)
	span.SetParam(ctx, "operation", common.SpanNewsFetching)
	span.SetParam(ctx, "company_name", company)
	span.SetParam(ctx, "max_results", maxResults)
	span.SetParam(ctx, "search_query", query)
	span.SetParam(ctx, "news_provider", s.newsRepo.Name())

	stageCtx, cancel := context.WithTimeout(ctx, stageTimeout(s.cfg.Pipeline.StageTimeout))
	defer cancel()

	items, err := s.newsRepo.Search(stageCtx, query, maxResults)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch news", logger.ErrorField(err), logger.StringField("company", company))
		span.Error(ctx, err)
		return []string{}
	}

	snippets = make([]string, 0, len(items))
	for i, item := range items {
		snippet := common.MissingContent
		if item.Content != nil {
			snippet = utils.TruncateRunes(*item.Content, common.MaxSnippetLength)
		}
		snippets = append(snippets, snippet)
		span.LogText(ctx, fmt.Sprintf("news_article_%d.txt", i+1), snippet)
	}

	span.Succeed(ctx)
	span.LogMetric(ctx, "news_articles_found", float64(len(snippets)))
	s.log.InfoContext(ctx, "News fetched", logger.StringField("company", company), logger.IntField("count", len(snippets)))
	return snippets
}
