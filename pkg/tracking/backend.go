package tracking

import (
	"context"
	"time"
)

// RunStatus is the lifecycle status understood by the tracking server.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
	RunStatusFailed   RunStatus = "FAILED"
)

// ParentRunTag links a nested run to its parent.
const ParentRunTag = "mlflow.parentRunId"

// Config configures a tracking session. It is built once at process start and
// handed to the Tracker constructor.
type Config struct {
	Enabled    bool          `mapstructure:"enabled"`
	URI        string        `mapstructure:"uri"`
	Experiment string        `mapstructure:"experiment"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Run identifies a run created on the backend.
type Run struct {
	ID           string
	ExperimentID string
	ArtifactURI  string
}

// Backend is the storage side of experiment tracking.
type Backend interface {
	ResolveExperiment(ctx context.Context, name string) (string, error)
	CreateRun(ctx context.Context, experimentID, name string, start time.Time, tags map[string]string) (*Run, error)
	LogParam(ctx context.Context, runID, key, value string) error
	LogMetric(ctx context.Context, runID, key string, value float64, ts time.Time) error
	SetTag(ctx context.Context, runID, key, value string) error
	LogArtifact(ctx context.Context, run *Run, path string, data []byte) error
	UpdateRun(ctx context.Context, runID string, status RunStatus, end time.Time) error
}
