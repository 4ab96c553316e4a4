package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-news-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Tracker, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	tracker, err := NewTracker(context.Background(), Config{Experiment: "stock_news"}, backend, logger.NewNop())
	require.NoError(t, err)
	return tracker, backend
}

func TestNewTrackerRequiresExperiment(t *testing.T) {
	_, err := NewTracker(context.Background(), Config{}, NewMemoryBackend(), logger.NewNop())
	assert.Error(t, err)
}

func TestSpanNesting(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	root := tracker.StartSpan(ctx, "pipeline", nil)
	child := tracker.StartSpan(ctx, "stock_code_extraction", root)
	child.Succeed(ctx)
	child.End(ctx)
	root.MarkStatus(StatusSuccess)
	root.End(ctx)

	assert.Same(t, root, child.Parent())
	assert.Equal(t, []*Span{child}, root.Children())

	runs := backend.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "pipeline", runs[0].Name)
	assert.Empty(t, runs[0].ParentID)
	assert.Equal(t, "stock_code_extraction", runs[1].Name)
	assert.Equal(t, runs[0].ID, runs[1].ParentID)
	assert.Equal(t, runs[0].ID, runs[1].Tags[ParentRunTag])
	assert.Equal(t, "1", runs[1].ExperimentID)
}

func TestSpanStatusHelpers(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	failed := tracker.StartSpan(ctx, "failed", nil)
	failed.Fail(ctx, "no_quotes_found")
	failed.End(ctx)

	errored := tracker.StartSpan(ctx, "errored", nil)
	errored.Error(ctx, errors.New("connection refused"))
	errored.End(ctx)

	assert.Equal(t, StatusFailed, failed.Status())
	assert.Equal(t, "FAILED", failed.Attribute("span_status"))
	assert.Equal(t, "no_quotes_found", failed.Attribute("failure_reason"))

	assert.Equal(t, StatusError, errored.Status())
	assert.Equal(t, "connection refused", errored.Attribute("error_message"))

	assert.Equal(t, RunStatusFinished, backend.RunByName("failed").Status)
	assert.Equal(t, RunStatusFailed, backend.RunByName("errored").Status)
}

func TestSpanEndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := start
	tracker.now = func() time.Time { return clock }

	span := tracker.StartSpan(ctx, "news_fetching", nil)
	clock = clock.Add(1500 * time.Millisecond)
	span.End(ctx)
	clock = clock.Add(time.Hour)
	span.End(ctx)

	assert.True(t, span.Ended())
	assert.Equal(t, 1500*time.Millisecond, span.Duration())

	run := backend.RunByName("news_fetching")
	require.NotNil(t, run)
	assert.Len(t, run.Metrics["span_duration_seconds"], 1)
	duration, ok := run.Metric("span_duration_seconds")
	assert.True(t, ok)
	assert.InDelta(t, 1.5, duration, 1e-9)
	_, ok = run.Metric("span_start_time")
	assert.True(t, ok)
}

func TestSpanEndsOnPanicPath(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)

	var span *Span
	func() {
		defer func() { _ = recover() }()
		span = tracker.StartSpan(ctx, "sentiment_parsing", nil)
		defer span.End(ctx)
		panic("boom")
	}()

	require.NotNil(t, span)
	assert.True(t, span.Ended())
}

func TestSpanArtifactsAndTags(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	span := tracker.StartSpan(ctx, "sentiment_parsing", nil)
	span.LogText(ctx, "summary.txt", "Apple had a good quarter")
	span.LogJSON(ctx, "analysis_output.json", map[string]interface{}{"sentiment": "Positive"})
	span.SetTag(ctx, "sentiment", "Positive")
	span.SetParam(ctx, "temperature", 0.1)
	span.End(ctx)

	run := backend.RunByName("sentiment_parsing")
	require.NotNil(t, run)
	assert.Equal(t, "Apple had a good quarter", string(run.Artifacts["summary.txt"]))
	assert.JSONEq(t, `{"sentiment":"Positive"}`, string(run.Artifacts["analysis_output.json"]))
	assert.Equal(t, "Positive", run.Tags["sentiment"])
	assert.Equal(t, "0.1", run.Params["temperature"])
	assert.Equal(t, "Positive", span.Tag("sentiment"))
}

type failingBackend struct {
	*MemoryBackend
}

func (f failingBackend) CreateRun(context.Context, string, string, time.Time, map[string]string) (*Run, error) {
	return nil, errors.New("tracking server down")
}

func TestSpanSurvivesBackendFailure(t *testing.T) {
	ctx := context.Background()
	tracker, err := NewTracker(ctx, Config{Experiment: "x"}, failingBackend{NewMemoryBackend()}, logger.NewNop())
	require.NoError(t, err)

	span := tracker.StartSpan(ctx, "stock_code_extraction", nil)
	span.SetParam(ctx, "company_name", "Apple Inc")
	span.Succeed(ctx)
	span.End(ctx)

	assert.Empty(t, span.RunID())
	assert.Equal(t, "Apple Inc", span.Attribute("company_name"))
	assert.Equal(t, StatusSuccess, span.Status())
	assert.True(t, span.Ended())
}

func TestMemoryBackendParamsAreImmutable(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	run, err := backend.CreateRun(ctx, "1", "r", time.Now(), nil)
	require.NoError(t, err)

	require.NoError(t, backend.LogParam(ctx, run.ID, "k", "v"))
	require.NoError(t, backend.LogParam(ctx, run.ID, "k", "v"))
	assert.Error(t, backend.LogParam(ctx, run.ID, "k", "other"))
	assert.Error(t, backend.LogParam(ctx, "missing", "k", "v"))
}
