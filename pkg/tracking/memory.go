package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRun is a run recorded by MemoryBackend.
type MemoryRun struct {
	Run
	Name      string
	ParentID  string
	Status    RunStatus
	StartTime time.Time
	EndTime   time.Time
	Params    map[string]string
	Metrics   map[string][]float64
	Tags      map[string]string
	Artifacts map[string][]byte
}

// Metric returns the last value logged for key.
func (r *MemoryRun) Metric(key string) (float64, bool) {
	values := r.Metrics[key]
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

// MemoryBackend keeps tracking data in process memory. It backs runs with tracking
// disabled and is handy in tests.
type MemoryBackend struct {
	mu          sync.Mutex
	experiments map[string]string
	runs        map[string]*MemoryRun
	order       []string
	seq         int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		experiments: make(map[string]string),
		runs:        make(map[string]*MemoryRun),
	}
}

func (b *MemoryBackend) ResolveExperiment(_ context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.experiments[name]; ok {
		return id, nil
	}
	id := fmt.Sprintf("%d", len(b.experiments)+1)
	b.experiments[name] = id
	return id, nil
}

func (b *MemoryBackend) CreateRun(_ context.Context, experimentID, name string, start time.Time, tags map[string]string) (*Run, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := fmt.Sprintf("run-%d", b.seq)
	run := &MemoryRun{
		Run: Run{
			ID:           id,
			ExperimentID: experimentID,
			ArtifactURI:  fmt.Sprintf("mlflow-artifacts:/%s/%s/artifacts", experimentID, id),
		},
		Name:      name,
		ParentID:  tags[ParentRunTag],
		Status:    RunStatusRunning,
		StartTime: start,
		Params:    make(map[string]string),
		Metrics:   make(map[string][]float64),
		Tags:      make(map[string]string),
		Artifacts: make(map[string][]byte),
	}
	for k, v := range tags {
		run.Tags[k] = v
	}
	b.runs[id] = run
	b.order = append(b.order, id)

	r := run.Run
	return &r, nil
}

// LogParam rejects a second, different value for the same key, matching the
// immutability of parameters on the tracking server.
func (b *MemoryBackend) LogParam(_ context.Context, runID, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	run, err := b.run(runID)
	if err != nil {
		return err
	}
	if old, ok := run.Params[key]; ok && old != value {
		return fmt.Errorf("param %q already logged with value %q", key, old)
	}
	run.Params[key] = value
	return nil
}

func (b *MemoryBackend) LogMetric(_ context.Context, runID, key string, value float64, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	run, err := b.run(runID)
	if err != nil {
		return err
	}
	run.Metrics[key] = append(run.Metrics[key], value)
	return nil
}

func (b *MemoryBackend) SetTag(_ context.Context, runID, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	run, err := b.run(runID)
	if err != nil {
		return err
	}
	run.Tags[key] = value
	return nil
}

func (b *MemoryBackend) LogArtifact(_ context.Context, r *Run, path string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	run, err := b.run(r.ID)
	if err != nil {
		return err
	}
	run.Artifacts[path] = append([]byte(nil), data...)
	return nil
}

func (b *MemoryBackend) UpdateRun(_ context.Context, runID string, status RunStatus, end time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	run, err := b.run(runID)
	if err != nil {
		return err
	}
	run.Status = status
	run.EndTime = end
	return nil
}

// Runs returns every recorded run in creation order.
func (b *MemoryBackend) Runs() []*MemoryRun {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*MemoryRun, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.runs[id])
	}
	return out
}

// RunByName returns the first run with the given name, or nil.
func (b *MemoryBackend) RunByName(name string) *MemoryRun {
	for _, run := range b.Runs() {
		if run.Name == name {
			return run
		}
	}
	return nil
}

func (b *MemoryBackend) run(id string) (*MemoryRun, error) {
	run, ok := b.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return run, nil
}
