package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/riskboard/internal/config"
	"github.com/turtacn/riskboard/internal/infrastructure/monitoring"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/logger"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			Environment:    "production",
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 1 << 20,
		},
		Data: config.DataConfig{
			Dir:             dir,
			LoadConcurrency: 2,
			PreviewRows:     constants.DefaultPreviewRows,
			SampleThreshold: constants.DefaultSampleThreshold,
		},
		Cache:   config.CacheConfig{TTL: time.Minute, CleanupInterval: time.Minute},
		Scoring: config.ScoringConfig{MissingPolicy: "propagate", SampleSize: 60, Seed: 42},
	}
}

func newTestServer(t *testing.T, dir string) (*Server, *tracetest.InMemoryExporter) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	srv, err := New(context.Background(), testConfig(dir), logger.NewNoopLogger(), Options{
		Registry: prometheus.NewRegistry(),
		Tracing:  monitoring.NewTracingManagerWithProvider(provider, logger.NewNoopLogger()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close(context.Background()) })
	return srv, exporter
}

func get(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Router().Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestServer_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, constants.DatasetStateHeatmap+".csv"),
		[]byte("state,value\nCA,3\nNY,4\n"), 0o644))
	srv, exporter := newTestServer(t, dir)

	w, body := get(t, srv, "/api/v1/datasets")
	require.Equal(t, http.StatusOK, w.Code)
	datasets := body["data"].(map[string]interface{})["datasets"].([]interface{})
	require.Len(t, datasets, 1)
	assert.Equal(t, constants.DatasetStateHeatmap, datasets[0].(map[string]interface{})["name"])
	assert.NotEmpty(t, w.Header().Get("ETag"))
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))

	w, body = get(t, srv, "/api/v1/risk/sample?n=20&seed=3&limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(20), data["total_rows"])
	assert.Equal(t, float64(5), data["table"].(map[string]interface{})["row_count"])

	w, body = get(t, srv, "/api/v1/risk/profiles")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["data"].(map[string]interface{})["demo"])

	w, body = get(t, srv, "/api/v1/geographic")
	require.Equal(t, http.StatusOK, w.Code)
	state := body["data"].(map[string]interface{})["state"].(map[string]interface{})
	assert.Len(t, state["values"], 2)

	w, _ = get(t, srv, "/api/v1/charts/risk-histogram.png?n=30")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG", w.Body.String()[:4])

	w, _ = get(t, srv, "/api/v1/charts/revenue-vs-risk.png?n=30&sector=SaaS")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG", w.Body.String()[:4])

	w, body = get(t, srv, "/api/v1/datasets/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["error"].(map[string]interface{})["code"])

	w, body = get(t, srv, "/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])

	w, _ = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	metrics := w.Body.String()
	assert.Contains(t, metrics, `riskboard_http_requests_total{method="GET",path="/api/v1/datasets",status="200"} 1`)
	assert.Contains(t, metrics, `riskboard_score_runs_total{source="sample"}`)
	assert.Contains(t, metrics, `riskboard_projection_runs_total{result="demo"} 1`)

	names := make(map[string]bool)
	for _, span := range exporter.GetSpans() {
		names[span.Name] = true
	}
	assert.True(t, names["DatasetAppService.ListDatasets"])
	assert.True(t, names["RiskAppService.ScoreSample"])
	assert.True(t, names["ChartAppService.Render"])
}

func TestServer_HealthReportsMissingDataDir(t *testing.T) {
	srv, _ := newTestServer(t, filepath.Join(t.TempDir(), "absent"))

	w, body := get(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["checks"].(map[string]interface{})["data_dir"], "error")

	w, _ = get(t, srv, "/live")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Server.Port = 0
	srv, err := New(context.Background(), cfg, logger.NewNoopLogger(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
