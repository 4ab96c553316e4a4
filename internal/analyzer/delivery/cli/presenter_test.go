package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/internal/entity"

	"github.com/stretchr/testify/assert"
)

func finishedRun(status entity.PipelineStatus, stage entity.PipelineStage) *entity.PipelineRun {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := entity.NewPipelineRun("Apple", start)
	switch status {
	case entity.PipelineStatusSuccess:
		run.Ticker = "AAPL"
		run.Analysis = &dto.AnalysisResult{CompanyName: "Apple Inc.", StockCode: "AAPL", NewsDesc: "Strong quarter.", Sentiment: dto.SentimentPositive, ConfidenceScore: 0.9}
		run.Succeed(start.Add(1234 * time.Millisecond))
	case entity.PipelineStatusFailed:
		run.Fail(stage, start.Add(500*time.Millisecond))
	}
	return run
}

func TestPresenterProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)
	ctx := context.Background()

	p.StageStarted(ctx, entity.StageTickerExtraction)
	p.TickerResolved(ctx, "Apple", "AAPL")
	p.StageStarted(ctx, entity.StageNewsFetching)
	p.NewsFetched(ctx, 5)
	p.StageStarted(ctx, entity.StageSentimentAnalysis)

	out := buf.String()
	for _, want := range []string{"Step 1: Getting ticker symbol...", "Apple: AAPL", "Step 2: Getting news...", "Found 5 news articles", "Step 3: Analyzing news..."} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Step 1"), strings.Index(out, "Step 2"))
}

func TestPresenterSuccess(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf).Outcome(finishedRun(entity.PipelineStatusSuccess, ""), nil)

	out := buf.String()
	assert.Contains(t, out, "Analysis Results:")
	assert.Contains(t, out, strings.Repeat("=", 60))
	assert.Contains(t, out, "\n  \"company_name\": \"Apple Inc.\"")
	assert.Contains(t, out, "Pipeline completed. Total time: 1.23 seconds")
}

func TestPresenterFailures(t *testing.T) {
	cases := map[entity.PipelineStage]string{
		entity.StageTickerExtraction:  "Could not find ticker for Apple",
		entity.StageNewsFetching:      "No news found",
		entity.StageSentimentAnalysis: "Failed to analyze news",
	}
	for stage, want := range cases {
		var buf bytes.Buffer
		NewPresenter(&buf).Outcome(finishedRun(entity.PipelineStatusFailed, stage), nil)
		assert.Contains(t, buf.String(), want)
		assert.Contains(t, buf.String(), "Pipeline completed. Total time: 0.50 seconds")
		assert.NotContains(t, buf.String(), "Analysis Results:")
	}
}

func TestPresenterError(t *testing.T) {
	run := entity.NewPipelineRun("Apple", time.Now())
	err := errors.New("pipeline interrupted during news_fetching: context canceled")
	run.Abort(err, run.StartedAt.Add(time.Second))

	var buf bytes.Buffer
	NewPresenter(&buf).Outcome(run, err)
	assert.Contains(t, buf.String(), "Pipeline error: pipeline interrupted")
	assert.Contains(t, buf.String(), "Pipeline completed.")
}
