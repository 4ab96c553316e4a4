package entity

import (
	"time"

	"golang-stock-news-analyzer/internal/analyzer/dto"
)

// PipelineStatus is the terminal status of a pipeline run.
type PipelineStatus string

const (
	PipelineStatusSuccess PipelineStatus = "SUCCESS"
	PipelineStatusFailed  PipelineStatus = "FAILED"
	PipelineStatusError   PipelineStatus = "ERROR"
)

// PipelineState is a position in the pipeline state machine.
type PipelineState string

const (
	StateStart          PipelineState = "START"
	StateTickerResolved PipelineState = "TICKER_RESOLVED"
	StateNewsFetched    PipelineState = "NEWS_FETCHED"
	StateAnalyzed       PipelineState = "ANALYZED"
	StateSuccess        PipelineState = "SUCCESS"
	StateFailed         PipelineState = "FAILED"
	StateError          PipelineState = "ERROR"
)

// PipelineStage names the stage at which a run stopped.
type PipelineStage string

const (
	StageTickerExtraction  PipelineStage = "ticker_extraction"
	StageNewsFetching      PipelineStage = "news_fetching"
	StageSentimentAnalysis PipelineStage = "sentiment_analysis"
)

// PipelineRun ties one company query to what each stage produced. It lives for a
// single run and is not persisted.
type PipelineRun struct {
	Company      string              `json:"company"`
	Ticker       string              `json:"ticker,omitempty"`
	News         []string            `json:"news,omitempty"`
	Analysis     *dto.AnalysisResult `json:"analysis,omitempty"`
	State        PipelineState       `json:"state"`
	Status       PipelineStatus      `json:"status,omitempty"`
	FailureStage PipelineStage       `json:"failure_stage,omitempty"`
	Error        string              `json:"error,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	CompletedAt  time.Time           `json:"completed_at"`
}

// NewPipelineRun starts a run for company in the START state.
func NewPipelineRun(company string, startedAt time.Time) *PipelineRun {
	return &PipelineRun{
		Company:   company,
		State:     StateStart,
		StartedAt: startedAt,
	}
}

// Advance moves the run to the next non-terminal state.
func (r *PipelineRun) Advance(state PipelineState) {
	r.State = state
}

// Succeed terminates the run successfully.
func (r *PipelineRun) Succeed(at time.Time) {
	r.State = StateSuccess
	r.Status = PipelineStatusSuccess
	r.CompletedAt = at
}

// Fail terminates the run as an expected failure at stage.
func (r *PipelineRun) Fail(stage PipelineStage, at time.Time) {
	r.State = StateFailed
	r.Status = PipelineStatusFailed
	r.FailureStage = stage
	r.CompletedAt = at
}

// Abort terminates the run with an unexpected error.
func (r *PipelineRun) Abort(err error, at time.Time) {
	r.State = StateError
	r.Status = PipelineStatusError
	r.Error = err.Error()
	r.CompletedAt = at
}

// Elapsed returns the wall time of the run.
func (r *PipelineRun) Elapsed() time.Duration {
	if r.CompletedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
