package service

import (
	"context"
	"time"

	"golang-stock-news-analyzer/internal/entity"
	"golang-stock-news-analyzer/pkg/logger"
)

const defaultStageTimeout = 30 * time.Second

func stageTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultStageTimeout
	}
	return d
}

// ProgressReporter receives pipeline progress as it happens.
type ProgressReporter interface {
	StageStarted(ctx context.Context, stage entity.PipelineStage)
	TickerResolved(ctx context.Context, company, ticker string)
	NewsFetched(ctx context.Context, count int)
}

type logProgressReporter struct {
	log *logger.Logger
}

// NewLogProgressReporter reports progress through the structured logger. It is used
// by the non-interactive modes.
func NewLogProgressReporter(log *logger.Logger) ProgressReporter {
	return &logProgressReporter{log: log}
}

func (r *logProgressReporter) StageStarted(ctx context.Context, stage entity.PipelineStage) {
	r.log.DebugContext(ctx, "Pipeline stage started", logger.StringField("stage", string(stage)))
}

func (r *logProgressReporter) TickerResolved(ctx context.Context, company, ticker string) {
	r.log.DebugContext(ctx, "Ticker resolved", logger.StringField("company", company), logger.StringField("ticker", ticker))
}

func (r *logProgressReporter) NewsFetched(ctx context.Context, count int) {
	r.log.DebugContext(ctx, "News fetched", logger.IntField("count", count))
}
