package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/dto"
	"golang-stock-news-analyzer/internal/entity"
	"golang-stock-news-analyzer/pkg/common"
	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/telegram"
	"golang-stock-news-analyzer/pkg/tracking"
	"golang-stock-news-analyzer/pkg/utils"
)

// ErrEmptyCompany is returned when Run is called without a company name.
var ErrEmptyCompany = errors.New("company name is empty")

// PipelineService runs the ticker, news and analysis stages for one company.
type PipelineService interface {
	// Run returns the finished run. A non-nil error means the run ended in ERROR;
	// expected failures are reported through the run's status instead.
	Run(ctx context.Context, company string) (*entity.PipelineRun, error)
}

type pipelineService struct {
	cfg      *config.Config
	log      *logger.Logger
	tracker  *tracking.Tracker
	resolver TickerResolver
	fetcher  NewsFetcher
	analyzer NewsAnalyzer
	progress ProgressReporter
	notifier telegram.Notifier
	now      func() time.Time
}

// NewPipelineService wires the stage services together. progress and notifier may be nil.
func NewPipelineService(cfg *config.Config, log *logger.Logger, tracker *tracking.Tracker,
	resolver TickerResolver,
	fetcher NewsFetcher,
	analyzer NewsAnalyzer,
	progress ProgressReporter,
	notifier telegram.Notifier) PipelineService {
	if progress == nil {
		progress = NewLogProgressReporter(log)
	}
	return &pipelineService{
		cfg:      cfg,
		log:      log,
		tracker:  tracker,
		resolver: resolver,
		fetcher:  fetcher,
		analyzer: analyzer,
		progress: progress,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *pipelineService) Run(ctx context.Context, company string) (run *entity.PipelineRun, err error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, ErrEmptyCompany
	}

	started := s.now()
	run = entity.NewPipelineRun(company, started)

	root := s.tracker.StartSpan(ctx, common.PipelineRunPrefix+"_"+utils.RunTimestamp(started), nil)
	defer root.End(ctx)
	defer func() {
		if r := recover(); r != nil {
			err = utils.RecoverError(r)
		}
		if err != nil {
			s.abort(ctx, root, run, err)
		}
	}()

	root.SetParam(ctx, "input_company", company)
	root.SetParam(ctx, "pipeline_version", common.PipelineVersion)
	root.SetParam(ctx, "timestamp", started.Format(time.RFC3339))
	root.SetTag(ctx, "pipeline_type", common.PipelineType)
	root.SetTag(ctx, "company_input", company)

	s.log.InfoContext(ctx, "Pipeline started", logger.StringField("company", company))

	s.progress.StageStarted(ctx, entity.StageTickerExtraction)
	ticker := s.resolver.Resolve(ctx, root, company)
	if err := interrupted(ctx, entity.StageTickerExtraction); err != nil {
		return run, err
	}
	if ticker == "" {
		s.fail(ctx, root, run, entity.StageTickerExtraction)
		return run, nil
	}
	run.Ticker = ticker
	run.Advance(entity.StateTickerResolved)
	root.SetParam(ctx, "ticker_extracted", ticker)
	root.SetTag(ctx, "ticker", ticker)
	s.progress.TickerResolved(ctx, company, ticker)

	s.progress.StageStarted(ctx, entity.StageNewsFetching)
	news := s.fetcher.Fetch(ctx, root, company, s.cfg.Pipeline.MaxNewsResults)
	if err := interrupted(ctx, entity.StageNewsFetching); err != nil {
		return run, err
	}
	if len(news) == 0 {
		s.fail(ctx, root, run, entity.StageNewsFetching)
		return run, nil
	}
	run.News = news
	run.Advance(entity.StateNewsFetched)
	root.LogMetric(ctx, "news_articles_collected", float64(len(news)))
	s.progress.NewsFetched(ctx, len(news))

	s.progress.StageStarted(ctx, entity.StageSentimentAnalysis)
	analysis := s.analyzer.Analyze(ctx, root, company, ticker, news)
	if err := interrupted(ctx, entity.StageSentimentAnalysis); err != nil {
		return run, err
	}
	if analysis == nil {
		s.fail(ctx, root, run, entity.StageSentimentAnalysis)
		return run, nil
	}
	run.Analysis = analysis
	run.Advance(entity.StateAnalyzed)

	s.succeed(ctx, root, run)
	s.notify(ctx, run)
	return run, nil
}

func interrupted(ctx context.Context, stage entity.PipelineStage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline interrupted during %s: %w", stage, err)
	}
	return nil
}

func (s *pipelineService) succeed(ctx context.Context, root *tracking.Span, run *entity.PipelineRun) {
	run.Succeed(s.now())
	root.MarkStatus(tracking.StatusSuccess)

	root.SetParam(ctx, "pipeline_status", entity.PipelineStatusSuccess)
	root.SetParam(ctx, "final_sentiment", run.Analysis.Sentiment)
	root.LogMetric(ctx, "final_confidence_score", run.Analysis.ConfidenceScore)
	root.LogMetric(ctx, "total_pipeline_time_seconds", run.Elapsed().Seconds())
	root.SetTag(ctx, "pipeline_status", string(entity.PipelineStatusSuccess))
	root.SetTag(ctx, "sentiment", string(run.Analysis.Sentiment))
	root.LogJSON(ctx, "final_pipeline_output.json", run.Analysis)

	s.log.InfoContext(ctx, "Pipeline succeeded",
		logger.StringField("company", run.Company),
		logger.StringField("ticker", run.Ticker),
		logger.StringField("sentiment", string(run.Analysis.Sentiment)),
		logger.DurationField("elapsed", run.Elapsed()),
	)
}

func (s *pipelineService) fail(ctx context.Context, root *tracking.Span, run *entity.PipelineRun, stage entity.PipelineStage) {
	run.Fail(stage, s.now())
	root.MarkStatus(tracking.StatusFailed)

	root.SetParam(ctx, "pipeline_status", entity.PipelineStatusFailed)
	root.SetParam(ctx, "failure_stage", stage)
	root.LogMetric(ctx, "total_pipeline_time_seconds", run.Elapsed().Seconds())
	root.SetTag(ctx, "pipeline_status", string(entity.PipelineStatusFailed))

	s.log.WarnContext(ctx, "Pipeline failed",
		logger.StringField("company", run.Company),
		logger.StringField("failure_stage", string(stage)),
	)
}

func (s *pipelineService) abort(ctx context.Context, root *tracking.Span, run *entity.PipelineRun, err error) {
	run.Abort(err, s.now())
	root.MarkStatus(tracking.StatusError)

	root.SetParam(ctx, "pipeline_status", entity.PipelineStatusError)
	root.SetParam(ctx, "pipeline_error", err.Error())
	root.LogMetric(ctx, "total_pipeline_time_seconds", run.Elapsed().Seconds())
	root.SetTag(ctx, "pipeline_status", string(entity.PipelineStatusError))

	s.log.ErrorContext(ctx, "Pipeline error", logger.ErrorField(err), logger.StringField("company", run.Company))
}

func (s *pipelineService) notify(ctx context.Context, run *entity.PipelineRun) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.WarnContext(ctx, "Analysis notification panicked", logger.ErrorField(utils.RecoverError(r)), logger.StringField("ticker", run.Ticker))
		}
	}()

	messages := telegram.FormatAnalysisForTelegram(dto.AnalysisNotification{
		Company:  run.Company,
		Ticker:   run.Ticker,
		Analysis: run.Analysis,
	})
	if err := telegram.SendAll(s.notifier, messages); err != nil {
		s.log.WarnContext(ctx, "Failed to send analysis notification", logger.ErrorField(err), logger.StringField("ticker", run.Ticker))
	}
}
