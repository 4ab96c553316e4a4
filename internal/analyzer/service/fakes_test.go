package service

import (
	"context"
	"testing"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/internal/analyzer/repository"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/tracking"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.MaxNewsResults = 5
	cfg.Gemini.Model = "gemini-2.0-flash"
	cfg.Gemini.Temperature = 0.1
	return cfg
}

func newTestTracker(t *testing.T) (*tracking.Tracker, *tracking.MemoryBackend) {
	t.Helper()
	backend := tracking.NewMemoryBackend()
	tracker, err := tracking.NewTracker(context.Background(), tracking.Config{Experiment: "test"}, backend, logger.NewNop())
	require.NoError(t, err)
	return tracker, backend
}

type fakeYahoo struct {
	quotes map[string]string
	err    error
	panic  bool
	calls  int
}

func (f *fakeYahoo) SearchURL(company string) string {
	return "https://finance.test/v1/finance/search?q=" + company
}

func (f *fakeYahoo) SearchTicker(_ context.Context, company string) (*dto.YahooQuote, int, error) {
	f.calls++
	if f.panic {
		panic("unexpected payload")
	}
	if f.err != nil {
		return nil, 0, f.err
	}
	symbol, ok := f.quotes[company]
	if !ok {
		return nil, 0, repository.ErrTickerNotFound
	}
	return &dto.YahooQuote{Symbol: symbol}, 3, nil
}

type fakeNews struct {
	items   []dto.NewsItem
	err     error
	calls   int
	lastQ   string
	lastMax int
}

func (f *fakeNews) Name() string { return "fake" }

func (f *fakeNews) Search(_ context.Context, query string, maxResults int) ([]dto.NewsItem, error) {
	f.calls++
	f.lastQ = query
	f.lastMax = maxResults
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > maxResults {
		return f.items[:maxResults], nil
	}
	return f.items, nil
}

type fakeAI struct {
	resp       *genai.GenerateContentResponse
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeAI) Model() string { return "gemini-2.0-flash" }
func (f *fakeAI) Temperature() float32 { return 0.1 }

func (f *fakeAI) AnalyzeNews(_ context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.resp, f.err
}

func text(s string) *string { return &s }

func appleNews() []dto.NewsItem {
	return []dto.NewsItem{
		{Title: "Apple earnings", Content: text("Apple beat earnings expectations on strong iPhone sales.")},
		{Title: "Apple services", Content: text("Services revenue hit a record in Cupertino.")},
		{Title: "Apple supply", Content: nil},
	}
}

func analysisArgs() map[string]interface{} {
	return map[string]interface{}{
		"company_name":             "Apple Inc.",
		"stock_code":               "AAPL",
		"newsdesc":                 "Apple posted strong earnings and record services revenue.",
		"sentiment":                "Positive",
		"people_names":             []interface{}{"Tim Cook"},
		"places_names":             []interface{}{"Cupertino"},
		"other_companies_referred": []interface{}{"Foxconn", "Samsung"},
		"related_industries":       []interface{}{"Consumer Electronics"},
		"market_implications":      "Likely supportive for the share price.",
		"confidence_score":         0.82,
	}
}

func functionCallResponse(name string, args map[string]interface{}) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}},
			},
		}},
	}
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: s}}},
		}},
	}
}
