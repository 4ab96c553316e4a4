package tracking

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	mlflowAPI          = "/api/2.0/mlflow"
	mlflowArtifactsAPI = "/api/2.0/mlflow-artifacts/artifacts"
	errDoesNotExist    = "RESOURCE_DOES_NOT_EXIST"
)

// MLflowBackend talks to an MLflow tracking server over its REST API.
type MLflowBackend struct {
	client *resty.Client
}

// NewMLflowBackend creates a backend for the tracking server at cfg.URI.
func NewMLflowBackend(cfg Config) *MLflowBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.URI, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &MLflowBackend{client: client}
}

// APIError is the error body returned by the tracking server.
type APIError struct {
	StatusCode int    `json:"-"`
	Endpoint   string `json:"-"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mlflow %s returned %d (%s): %s", e.Endpoint, e.StatusCode, e.ErrorCode, e.Message)
}

type mlflowTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type getExperimentResponse struct {
	Experiment struct {
		ExperimentID string `json:"experiment_id"`
	} `json:"experiment"`
}

type createExperimentResponse struct {
	ExperimentID string `json:"experiment_id"`
}

type createRunResponse struct {
	Run struct {
		Info struct {
			RunID        string `json:"run_id"`
			ExperimentID string `json:"experiment_id"`
			ArtifactURI  string `json:"artifact_uri"`
		} `json:"info"`
	} `json:"run"`
}

// ResolveExperiment returns the id of the named experiment, creating it when missing.
func (b *MLflowBackend) ResolveExperiment(ctx context.Context, name string) (string, error) {
	var got getExperimentResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("experiment_name", name).
		SetResult(&got).
		SetError(&APIError{}).
		Get(mlflowAPI + "/experiments/get-by-name")
	if err != nil {
		return "", fmt.Errorf("failed to get experiment %q: %w", name, err)
	}

	if !resp.IsError() {
		return got.Experiment.ExperimentID, nil
	}

	apiErr := toAPIError(resp, "experiments/get-by-name")
	if apiErr.StatusCode != http.StatusNotFound && apiErr.ErrorCode != errDoesNotExist {
		return "", apiErr
	}

	var created createExperimentResponse
	if err := b.post(ctx, "/experiments/create", map[string]string{"name": name}, &created); err != nil {
		return "", fmt.Errorf("failed to create experiment %q: %w", name, err)
	}
	return created.ExperimentID, nil
}

func (b *MLflowBackend) CreateRun(ctx context.Context, experimentID, name string, start time.Time, tags map[string]string) (*Run, error) {
	body := map[string]interface{}{
		"experiment_id": experimentID,
		"run_name":      name,
		"start_time":    start.UnixMilli(),
		"tags":          toTags(tags),
	}

	var created createRunResponse
	if err := b.post(ctx, "/runs/create", body, &created); err != nil {
		return nil, err
	}

	return &Run{
		ID:           created.Run.Info.RunID,
		ExperimentID: created.Run.Info.ExperimentID,
		ArtifactURI:  created.Run.Info.ArtifactURI,
	}, nil
}

func (b *MLflowBackend) LogParam(ctx context.Context, runID, key, value string) error {
	return b.post(ctx, "/runs/log-parameter", map[string]string{
		"run_id": runID,
		"key":    key,
		"value":  value,
	}, nil)
}

func (b *MLflowBackend) LogMetric(ctx context.Context, runID, key string, value float64, ts time.Time) error {
	return b.post(ctx, "/runs/log-metric", map[string]interface{}{
		"run_id":    runID,
		"key":       key,
		"value":     value,
		"timestamp": ts.UnixMilli(),
		"step":      0,
	}, nil)
}

func (b *MLflowBackend) SetTag(ctx context.Context, runID, key, value string) error {
	return b.post(ctx, "/runs/set-tag", map[string]string{
		"run_id": runID,
		"key":    key,
		"value":  value,
	}, nil)
}

func (b *MLflowBackend) UpdateRun(ctx context.Context, runID string, status RunStatus, end time.Time) error {
	return b.post(ctx, "/runs/update", map[string]interface{}{
		"run_id":   runID,
		"status":   string(status),
		"end_time": end.UnixMilli(),
	}, nil)
}

// LogArtifact uploads data through the server's artifact proxy. Only runs whose
// artifact root uses the mlflow-artifacts scheme can be written this way.
func (b *MLflowBackend) LogArtifact(ctx context.Context, run *Run, path string, data []byte) error {
	root, err := artifactRoot(run.ArtifactURI)
	if err != nil {
		return err
	}

	endpoint := mlflowArtifactsAPI + "/" + root + "/" + strings.TrimLeft(path, "/")
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		SetError(&APIError{}).
		Put(endpoint)
	if err != nil {
		return fmt.Errorf("failed to upload artifact %s: %w", path, err)
	}
	if resp.IsError() {
		return toAPIError(resp, "mlflow-artifacts")
	}
	return nil
}

func (b *MLflowBackend) post(ctx context.Context, endpoint string, body, result interface{}) error {
	req := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetError(&APIError{})
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(mlflowAPI + endpoint)
	if err != nil {
		return fmt.Errorf("failed to call mlflow %s: %w", endpoint, err)
	}
	if resp.IsError() {
		return toAPIError(resp, strings.TrimPrefix(endpoint, "/"))
	}
	return nil
}

func toAPIError(resp *resty.Response, endpoint string) *APIError {
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{Message: resp.String()}
	}
	apiErr.StatusCode = resp.StatusCode()
	apiErr.Endpoint = endpoint
	return apiErr
}

func toTags(tags map[string]string) []mlflowTag {
	out := make([]mlflowTag, 0, len(tags))
	for k, v := range tags {
		out = append(out, mlflowTag{Key: k, Value: v})
	}
	return out
}

func artifactRoot(artifactURI string) (string, error) {
	u, err := url.Parse(artifactURI)
	if err != nil {
		return "", fmt.Errorf("invalid artifact uri %q: %w", artifactURI, err)
	}
	if u.Scheme != "mlflow-artifacts" {
		return "", fmt.Errorf("unsupported artifact store %q", artifactURI)
	}
	return strings.Trim(u.Path, "/"), nil
}
