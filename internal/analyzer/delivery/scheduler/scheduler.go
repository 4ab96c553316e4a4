package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang-stock-news-analyzer/internal/analyzer/config"
	"golang-stock-news-analyzer/internal/analyzer/service"
	"golang-stock-news-analyzer/internal/entity"
	"golang-stock-news-analyzer/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Summary counts the outcomes of one watchlist execution.
type Summary struct {
	Success int
	Failed  int
	Errored int
}

// WatchlistScheduler runs the pipeline for every company of the watchlist on a cron schedule.
type WatchlistScheduler struct {
	cfg        *config.Config
	log        *logger.Logger
	pipeline   service.PipelineService
	cronParser cron.Parser

	mu   sync.Mutex
	cron *cron.Cron
}

func NewWatchlistScheduler(cfg *config.Config, log *logger.Logger, pipeline service.PipelineService) *WatchlistScheduler {
	return &WatchlistScheduler{
		cfg:        cfg,
		log:        log,
		pipeline:   pipeline,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Start validates the schedule and registers the watchlist job. Executions that
// would overlap a running one are skipped.
func (s *WatchlistScheduler) Start(ctx context.Context) error {
	watchlist := s.watchlist()
	if len(watchlist) == 0 {
		return fmt.Errorf("schedule watchlist is empty")
	}
	schedule, err := s.cronParser.Parse(s.cfg.Schedule.Cron)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", s.cfg.Schedule.Cron, err)
	}

	cronLog := cronLogger{log: s.log}
	c := cron.New(cron.WithParser(s.cronParser), cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	c.Schedule(schedule, cron.FuncJob(func() {
		s.RunOnce(ctx)
	}))

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.log.Info("Watchlist scheduler started",
		logger.StringField("cron", s.cfg.Schedule.Cron),
		logger.IntField("companies", len(watchlist)),
		logger.Field("next_run", schedule.Next(time.Now())),
	)
	return nil
}

// RunOnce runs the pipeline for each watchlist company in order.
func (s *WatchlistScheduler) RunOnce(ctx context.Context) Summary {
	var summary Summary
	for _, company := range s.watchlist() {
		if ctx.Err() != nil {
			s.log.Warn("Watchlist execution interrupted", logger.ErrorField(ctx.Err()))
			break
		}

		run, err := s.pipeline.Run(ctx, company)
		switch {
		case err != nil:
			summary.Errored++
			s.log.Error("Scheduled analysis errored", logger.ErrorField(err), logger.StringField("company", company))
		case run.Status == entity.PipelineStatusSuccess:
			summary.Success++
		default:
			summary.Failed++
			s.log.Warn("Scheduled analysis failed", logger.StringField("company", company), logger.StringField("failure_stage", string(run.FailureStage)))
		}
	}

	s.log.Info("Watchlist execution finished",
		logger.IntField("success", summary.Success),
		logger.IntField("failed", summary.Failed),
		logger.IntField("errored", summary.Errored),
	)
	return summary
}

// Stop stops the cron and waits for a running execution to finish.
func (s *WatchlistScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("Watchlist scheduler stopped")
}

func (s *WatchlistScheduler) watchlist() []string {
	out := make([]string, 0, len(s.cfg.Schedule.Watchlist))
	for _, company := range s.cfg.Schedule.Watchlist {
		if company = strings.TrimSpace(company); company != "" {
			out = append(out, company)
		}
	}
	return out
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
