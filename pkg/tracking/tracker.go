package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-news-analyzer/pkg/logger"
	"golang-stock-news-analyzer/pkg/utils"
)

// Status is the outcome recorded on a span.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusError   Status = "ERROR"
)

// Tracker opens spans against a backend within one experiment.
// Backend failures are logged and never surface to callers.
type Tracker struct {
	backend      Backend
	experimentID string
	log          *logger.Logger
	now          func() time.Time
}

// NewTracker resolves cfg.Experiment on the backend and returns a tracker bound to it.
func NewTracker(ctx context.Context, cfg Config, backend Backend, log *logger.Logger) (*Tracker, error) {
	if cfg.Experiment == "" {
		return nil, fmt.Errorf("tracking experiment name is required")
	}

	experimentID, err := backend.ResolveExperiment(ctx, cfg.Experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve experiment %q: %w", cfg.Experiment, err)
	}

	log.Info("Tracking experiment resolved",
		logger.StringField("experiment", cfg.Experiment),
		logger.StringField("experiment_id", experimentID),
	)

	return &Tracker{
		backend:      backend,
		experimentID: experimentID,
		log:          log,
		now:          time.Now,
	}, nil
}

// StartSpan opens a run named name. A non-nil parent makes it a nested run.
func (t *Tracker) StartSpan(ctx context.Context, name string, parent *Span) *Span {
	span := &Span{
		tracker: t,
		name:    name,
		parent:  parent,
		start:   t.now(),
		status:  StatusRunning,
		params:  make(map[string]string),
		metrics: make(map[string]float64),
		tags:    make(map[string]string),
	}

	tags := map[string]string{}
	if parent != nil {
		parent.children = append(parent.children, span)
		if parent.RunID() != "" {
			tags[ParentRunTag] = parent.RunID()
		}
	}

	run, err := t.backend.CreateRun(ctx, t.experimentID, name, span.start, tags)
	if err != nil {
		t.log.Warn("Failed to create tracking run", logger.StringField("span", name), logger.ErrorField(err))
	} else {
		span.run = run
	}

	span.LogMetric(ctx, "span_start_time", utils.UnixSeconds(span.start))
	return span
}

// Span is a timed, named unit of tracked work nested under an optional parent.
type Span struct {
	tracker  *Tracker
	name     string
	parent   *Span
	children []*Span
	run      *Run
	start    time.Time
	end      time.Time
	status   Status
	ended    bool
	params   map[string]string
	metrics  map[string]float64
	tags     map[string]string
}

func (s *Span) Name() string { return s.name }
func (s *Span) Parent() *Span { return s.parent }
func (s *Span) Children() []*Span { return s.children }
func (s *Span) Status() Status { return s.status }
func (s *Span) Ended() bool { return s.ended }
func (s *Span) StartTime() time.Time { return s.start }

// RunID returns the backend run id, or "" when the run could not be created.
func (s *Span) RunID() string {
	if s.run == nil {
		return ""
	}
	return s.run.ID
}

// Duration is the elapsed time until End, or until now while the span is open.
func (s *Span) Duration() time.Duration {
	if s.ended {
		return s.end.Sub(s.start)
	}
	return s.tracker.now().Sub(s.start)
}

// Attribute returns a single logged param.
func (s *Span) Attribute(key string) string {
	return s.params[key]
}

// Metric returns the last value logged for key.
func (s *Span) Metric(key string) (float64, bool) {
	v, ok := s.metrics[key]
	return v, ok
}

// Tag returns a tag set on the span.
func (s *Span) Tag(key string) string {
	return s.tags[key]
}

// SetParam records a key/value attribute. Values are stringified.
func (s *Span) SetParam(ctx context.Context, key string, value interface{}) {
	str := fmt.Sprint(value)
	s.params[key] = str
	if s.run == nil {
		return
	}
	if err := s.tracker.backend.LogParam(ctx, s.run.ID, key, str); err != nil {
		s.warn("log param", key, err)
	}
}

func (s *Span) LogMetric(ctx context.Context, key string, value float64) {
	s.metrics[key] = value
	if s.run == nil {
		return
	}
	if err := s.tracker.backend.LogMetric(ctx, s.run.ID, key, value, s.tracker.now()); err != nil {
		s.warn("log metric", key, err)
	}
}

func (s *Span) SetTag(ctx context.Context, key, value string) {
	s.tags[key] = value
	if s.run == nil {
		return
	}
	if err := s.tracker.backend.SetTag(ctx, s.run.ID, key, value); err != nil {
		s.warn("set tag", key, err)
	}
}

// LogText stores text as an artifact at path.
func (s *Span) LogText(ctx context.Context, path, text string) {
	s.logArtifact(ctx, path, []byte(text))
}

// LogJSON stores v, indented, as an artifact at path.
func (s *Span) LogJSON(ctx context.Context, path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.warn("marshal artifact", path, err)
		return
	}
	s.logArtifact(ctx, path, data)
}

// MarkStatus sets the span status without logging any params.
func (s *Span) MarkStatus(status Status) {
	s.status = status
}

// Succeed marks a stage span successful.
func (s *Span) Succeed(ctx context.Context) {
	s.status = StatusSuccess
	s.SetParam(ctx, "span_status", StatusSuccess)
}

// Fail marks a stage span as an expected failure with a short machine-readable reason.
func (s *Span) Fail(ctx context.Context, reason string) {
	s.status = StatusFailed
	s.SetParam(ctx, "span_status", StatusFailed)
	s.SetParam(ctx, "failure_reason", reason)
}

// Error marks a stage span as errored and records the message.
func (s *Span) Error(ctx context.Context, err error) {
	s.status = StatusError
	s.SetParam(ctx, "span_status", StatusError)
	s.SetParam(ctx, "error_message", err.Error())
}

// End closes the span. It logs duration and end time and closes the backend run;
// calling it more than once has no effect.
func (s *Span) End(ctx context.Context) {
	if s.ended {
		return
	}
	s.end = s.tracker.now()
	s.ended = true
	s.LogMetric(ctx, "span_duration_seconds", s.Duration().Seconds())
	s.LogMetric(ctx, "span_end_time", utils.UnixSeconds(s.end))

	if s.run == nil {
		return
	}

	status := RunStatusFinished
	if s.status == StatusError {
		status = RunStatusFailed
	}
	if err := s.tracker.backend.UpdateRun(ctx, s.run.ID, status, s.end); err != nil {
		s.warn("end run", s.name, err)
	}
}

func (s *Span) logArtifact(ctx context.Context, path string, data []byte) {
	if s.run == nil {
		return
	}
	if err := s.tracker.backend.LogArtifact(ctx, s.run, path, data); err != nil {
		s.warn("log artifact", path, err)
	}
}

func (s *Span) warn(op, key string, err error) {
	s.tracker.log.Warn("Tracking call failed",
		logger.StringField("op", op),
		logger.StringField("key", key),
		logger.StringField("span", s.name),
		logger.ErrorField(err),
	)
}
