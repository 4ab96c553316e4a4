package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/entity"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	companies []string
}

func (f *fakePipeline) Run(_ context.Context, company string) (*entity.PipelineRun, error) {
	f.companies = append(f.companies, company)
	run := entity.NewPipelineRun(company, time.Now())
	switch company {
	case "Apple":
		run.Succeed(time.Now())
	case "Broken":
		err := errors.New("panic: boom")
		run.Abort(err, time.Now())
		return run, err
	default:
		run.Fail(entity.StageTickerExtraction, time.Now())
	}
	return run, nil
}

func schedulerConfig(cronExpr string, watchlist ...string) *config.Config {
	cfg := &config.Config{}
	cfg.Schedule.Cron = cronExpr
	cfg.Schedule.Watchlist = watchlist
	return cfg
}

func TestRunOnceSequential(t *testing.T) {
	pipeline := &fakePipeline{}
	s := NewWatchlistScheduler(schedulerConfig("@daily", "Apple", " ", "NoSuchCompanyXYZ", "Broken"), logger.NewNop(), pipeline)

	summary := s.RunOnce(context.Background())

	assert.Equal(t, []string{"Apple", "NoSuchCompanyXYZ", "Broken"}, pipeline.companies)
	assert.Equal(t, Summary{Success: 1, Failed: 1, Errored: 1}, summary)
}

func TestRunOnceStopsOnCancelledContext(t *testing.T) {
	pipeline := &fakePipeline{}
	s := NewWatchlistScheduler(schedulerConfig("@daily", "Apple", "Tesla"), logger.NewNop(), pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, Summary{}, s.RunOnce(ctx))
	assert.Empty(t, pipeline.companies)
}

func TestStartValidation(t *testing.T) {
	err := NewWatchlistScheduler(schedulerConfig("0 8 * * 1-5"), logger.NewNop(), &fakePipeline{}).Start(context.Background())
	assert.Error(t, err)

	err = NewWatchlistScheduler(schedulerConfig("every morning", "Apple"), logger.NewNop(), &fakePipeline{}).Start(context.Background())
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	s := NewWatchlistScheduler(schedulerConfig("0 8 * * 1-5", "Apple"), logger.NewNop(), &fakePipeline{})
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
