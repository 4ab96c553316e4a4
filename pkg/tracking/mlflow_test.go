package tracking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Body   string
}

type fakeMLflow struct {
	mu              sync.Mutex
	calls           []recordedCall
	experimentFound bool
}

func (f *fakeMLflow) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/2.0/mlflow/experiments/get-by-name":
			assert.Equal(t, "stock_news", r.URL.Query().Get("experiment_name"))
			if !f.experimentFound {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error_code":"RESOURCE_DOES_NOT_EXIST","message":"Could not find experiment"}`))
				return
			}
			_, _ = w.Write([]byte(`{"experiment":{"experiment_id":"7"}}`))
		case "/api/2.0/mlflow/experiments/create":
			_, _ = w.Write([]byte(`{"experiment_id":"8"}`))
		case "/api/2.0/mlflow/runs/create":
			_, _ = w.Write([]byte(`{"run":{"info":{"run_id":"abc","experiment_id":"7","artifact_uri":"mlflow-artifacts:/7/abc/artifacts"}}}`))
		case "/api/2.0/mlflow/runs/log-parameter":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error_code":"INVALID_PARAMETER_VALUE","message":"Changing param values is not allowed"}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	})
}

func (f *fakeMLflow) find(path string) *recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.calls {
		if f.calls[i].Path == path {
			return &f.calls[i]
		}
	}
	return nil
}

func TestMLflowResolveExperiment(t *testing.T) {
	fake := &fakeMLflow{experimentFound: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	backend := NewMLflowBackend(Config{URI: srv.URL + "/", Timeout: time.Second})
	id, err := backend.ResolveExperiment(context.Background(), "stock_news")

	require.NoError(t, err)
	assert.Equal(t, "7", id)
	assert.Nil(t, fake.find("/api/2.0/mlflow/experiments/create"))
}

func TestMLflowResolveExperimentCreatesMissing(t *testing.T) {
	fake := &fakeMLflow{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	backend := NewMLflowBackend(Config{URI: srv.URL})
	id, err := backend.ResolveExperiment(context.Background(), "stock_news")

	require.NoError(t, err)
	assert.Equal(t, "8", id)

	call := fake.find("/api/2.0/mlflow/experiments/create")
	require.NotNil(t, call)
	assert.JSONEq(t, `{"name":"stock_news"}`, call.Body)
}

func TestMLflowCreateRunWithParent(t *testing.T) {
	fake := &fakeMLflow{experimentFound: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	backend := NewMLflowBackend(Config{URI: srv.URL})
	start := time.UnixMilli(1700000000000)
	run, err := backend.CreateRun(context.Background(), "7", "news_fetching", start, map[string]string{ParentRunTag: "parent-1"})

	require.NoError(t, err)
	assert.Equal(t, "abc", run.ID)
	assert.Equal(t, "mlflow-artifacts:/7/abc/artifacts", run.ArtifactURI)

	call := fake.find("/api/2.0/mlflow/runs/create")
	require.NotNil(t, call)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(call.Body), &body))
	assert.Equal(t, "news_fetching", body["run_name"])
	assert.Equal(t, float64(1700000000000), body["start_time"])
	assert.Equal(t, []interface{}{map[string]interface{}{"key": ParentRunTag, "value": "parent-1"}}, body["tags"])
}

func TestMLflowLogParamError(t *testing.T) {
	fake := &fakeMLflow{experimentFound: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	backend := NewMLflowBackend(Config{URI: srv.URL})
	err := backend.LogParam(context.Background(), "abc", "span_status", "SUCCESS")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INVALID_PARAMETER_VALUE", apiErr.ErrorCode)
}

func TestMLflowMetricTagAndUpdate(t *testing.T) {
	fake := &fakeMLflow{experimentFound: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	ctx := context.Background()
	backend := NewMLflowBackend(Config{URI: srv.URL})
	ts := time.UnixMilli(1700000000500)

	require.NoError(t, backend.LogMetric(ctx, "abc", "quotes_count", 3, ts))
	require.NoError(t, backend.SetTag(ctx, "abc", "ticker", "AAPL"))
	require.NoError(t, backend.UpdateRun(ctx, "abc", RunStatusFinished, ts))

	metric := fake.find("/api/2.0/mlflow/runs/log-metric")
	require.NotNil(t, metric)
	assert.JSONEq(t, `{"run_id":"abc","key":"quotes_count","value":3,"timestamp":1700000000500,"step":0}`, metric.Body)

	tag := fake.find("/api/2.0/mlflow/runs/set-tag")
	require.NotNil(t, tag)
	assert.JSONEq(t, `{"run_id":"abc","key":"ticker","value":"AAPL"}`, tag.Body)

	update := fake.find("/api/2.0/mlflow/runs/update")
	require.NotNil(t, update)
	assert.JSONEq(t, `{"run_id":"abc","status":"FINISHED","end_time":1700000000500}`, update.Body)
}

func TestMLflowLogArtifact(t *testing.T) {
	fake := &fakeMLflow{experimentFound: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	backend := NewMLflowBackend(Config{URI: srv.URL})
	run := &Run{ID: "abc", ArtifactURI: "mlflow-artifacts:/7/abc/artifacts"}

	require.NoError(t, backend.LogArtifact(context.Background(), run, "news_article_1.txt", []byte("hello")))

	call := fake.find("/api/2.0/mlflow-artifacts/artifacts/7/abc/artifacts/news_article_1.txt")
	require.NotNil(t, call)
	assert.Equal(t, http.MethodPut, call.Method)
	assert.Equal(t, "hello", call.Body)
}

func TestMLflowLogArtifactUnsupportedStore(t *testing.T) {
	backend := NewMLflowBackend(Config{URI: "http://localhost:5000"})
	run := &Run{ID: "abc", ArtifactURI: "s3://bucket/7/abc/artifacts"}

	err := backend.LogArtifact(context.Background(), run, "summary.txt", []byte("x"))
	assert.ErrorContains(t, err, "unsupported artifact store")
}
