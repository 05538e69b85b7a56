package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/riskboard/internal/config"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/logger"
)

func TestZapLogger_ContextAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).WithComponent("datastore")

	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, constants.ContextKeyTraceID, "trace-1")
	log.Warn(ctx, "load failed", logger.Fields{"path": "a.csv"})
	log.Error(context.Background(), "boom", errors.New("disk"))

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "datastore", fields["component"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "a.csv", fields["path"])

	assert.Equal(t, "disk", logs.All()[1].ContextMap()["error"])
}

func TestNewZapLogger_BadLevelFallsBack(t *testing.T) {
	log, err := NewZapLogger(&config.LogConfig{Level: "loud", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordScoreRun("upload", 12)
	m.RecordScoreRun("sample", 3)
	m.RecordProjection("skipped")
	m.RecordDatasetLoad(false)
	m.RecordCacheAccess(true)
	m.RecordCacheAccess(false)
	m.RecordHTTPRequest("GET", "/api/v1/datasets", 200, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoreRuns.WithLabelValues("upload")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.ScoreRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProjectionRuns.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TableCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/datasets", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestTime))
}

func TestTracing_TraceOperation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tm := NewTracingManagerWithProvider(provider, logger.NewNoopLogger())

	err := tm.TraceOperation(context.Background(), "score", map[string]interface{}{"rows": 3}, func(ctx context.Context) error {
		assert.NotEmpty(t, tm.TraceID(ctx))
		return errors.New("bad upload")
	})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "score", spans[0].Name)
	assert.Len(t, spans[0].Events, 1)

	require.NoError(t, tm.Shutdown(context.Background()))
	assert.Empty(t, tm.TraceID(context.Background()))
}

func TestTracing_Disabled(t *testing.T) {
	tm, err := NewTracingManager(&config.TracingConfig{}, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.NoError(t, tm.Shutdown(context.Background()))
}
