package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleNewsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Apple</title>
<item><title>Apple ships</title><link>https://news/1</link><description>&lt;a href="x"&gt;Apple  ships&lt;/a&gt; new
 phones</description></item>
<item><title>No body</title><link>https://news/2</link></item>
<item><title>Third</title><link>https://news/3</link><description>third</description></item>
</channel></rss>`

func TestGoogleNewsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rss/search", r.URL.Path)
		assert.Equal(t, "Apple latest news", r.URL.Query().Get("q"))
		assert.Equal(t, "US:en", r.URL.Query().Get("ceid"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(googleNewsFeed))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.GoogleNews.BaseURL = srv.URL
	cfg.GoogleNews.Language = "en-US"
	cfg.GoogleNews.Region = "US"
	repo := NewGoogleNewsRepository(cfg, logger.NewNop())

	items, err := repo.Search(context.Background(), "Apple latest news ", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Content)
	assert.Equal(t, "Apple ships new phones", *items[0].Content)
	assert.Equal(t, "https://news/1", items[0].URL)
	assert.Nil(t, items[1].Content)
	assert.Equal(t, "google_news", repo.Name())
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", htmlToText("   "))
	assert.Equal(t, "bold and plain", htmlToText("<b>bold</b>\n and   plain"))
}
