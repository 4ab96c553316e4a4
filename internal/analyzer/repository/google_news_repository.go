package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

type googleNewsRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	parser         *gofeed.Parser
	requestLimiter *rate.Limiter
}

// NewGoogleNewsRepository creates a news search client over the Google News RSS search feed.
func NewGoogleNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	parser := gofeed.NewParser()
	parser.UserAgent = common.BrowserUserAgent
	parser.Client = &http.Client{
		Timeout: timeoutOrDefault(cfg.GoogleNews.Timeout, 20*time.Second),
	}

	return &googleNewsRepository{
		cfg:            cfg,
		log:            log,
		parser:         parser,
		requestLimiter: newRequestLimiter(cfg.GoogleNews.MaxRequestPerMinute),
	}
}

func (r *googleNewsRepository) Name() string {
	return "google_news"
}

func (r *googleNewsRepository) Search(ctx context.Context, query string, maxResults int) ([]dto.NewsItem, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	feedURL := r.feedURL(query)
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch Google News feed", logger.ErrorField(err), logger.StringField("url", feedURL))
		return nil, fmt.Errorf("failed to fetch Google News feed: %w", err)
	}

	items := make([]dto.NewsItem, 0, maxResults)
	for _, item := range feed.Items {
		if maxResults > 0 && len(items) >= maxResults {
			break
		}

		news := dto.NewsItem{
			Title:  item.Title,
			URL:    item.Link,
			Source: r.Name(),
		}
		if text := htmlToText(item.Description); text != "" {
			news.Content = &text
		}
		items = append(items, news)
	}

	r.log.DebugContext(ctx, "Google News search completed", logger.StringField("query", query), logger.IntField("results", len(items)))
	return items, nil
}

func (r *googleNewsRepository) feedURL(query string) string {
	lang := r.cfg.GoogleNews.Language
	region := r.cfg.GoogleNews.Region
	shortLang := strings.SplitN(lang, "-", 2)[0]

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("hl", lang)
	params.Set("gl", region)
	params.Set("ceid", region+":"+shortLang)

	return strings.TrimRight(r.cfg.GoogleNews.BaseURL, "/") + "/rss/search?" + params.Encode()
}

// htmlToText flattens an HTML fragment to single-spaced text.
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
