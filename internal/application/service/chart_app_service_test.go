// internal/application/service/chart_app_service_test.go
package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/riskboard/internal/application/dto"
	"github.com/turtacn/riskboard/internal/domain/models"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/internal/infrastructure/monitoring"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

// recordingRenderer remembers what it was asked to draw.
type recordingRenderer struct {
	scores     []float64
	bins       int
	sectors    []models.SectorRisk
	freqs      []models.ClusterFrequency
	projection *models.Projection
	points     []models.RevenueRiskPoint
	fail       bool
}

func (r *recordingRenderer) result(name string) ([]byte, error) {
	if r.fail {
		return nil, fmt.Errorf("draw %s", name)
	}
	return []byte(name), nil
}

func (r *recordingRenderer) RiskHistogram(scores []float64, bins int) ([]byte, error) {
	r.scores, r.bins = scores, bins
	return r.result("hist")
}

func (r *recordingRenderer) SectorRisk(rows []models.SectorRisk) ([]byte, error) {
	r.sectors = rows
	return r.result("sector")
}

func (r *recordingRenderer) ClusterSizes(freqs []models.ClusterFrequency) ([]byte, error) {
	r.freqs = freqs
	return r.result("clusters")
}

func (r *recordingRenderer) Projection(proj *models.Projection) ([]byte, error) {
	r.projection = proj
	return r.result("pca")
}

func (r *recordingRenderer) RevenueVsRisk(points []models.RevenueRiskPoint) ([]byte, error) {
	r.points = points
	return r.result("revenue")
}

func newChartService(r ChartRenderer) ChartAppService {
	return NewChartAppService(
		newMemorySource(nil),
		r,
		domainservice.NewRiskScorer(),
		domainservice.NewClusterProjector(),
		DefaultOptions(),
		logger.NewNoopLogger(),
	)
}

func TestChartAppService_Render(t *testing.T) {
	r := &recordingRenderer{}
	svc := newChartService(r)
	ctx := context.Background()

	img, err := svc.Render(ctx, ChartRiskHistogram, dto.StartupQuery{N: 40})
	require.NoError(t, err)
	assert.Equal(t, []byte("hist"), img)
	assert.Len(t, r.scores, 40)
	assert.Equal(t, 25, r.bins)

	_, err = svc.Render(ctx, ChartRiskBySector, dto.StartupQuery{Sectors: []string{"SaaS"}})
	require.NoError(t, err)
	for _, row := range r.sectors {
		assert.Equal(t, "SaaS", row.Sector)
	}

	img, err = svc.Render(ctx, ChartRevenueVsRisk, dto.StartupQuery{N: 30, Sectors: []string{"Fintech", "AI"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("revenue"), img)
	require.NotEmpty(t, r.points)
	for _, pt := range r.points {
		assert.Contains(t, []string{"Fintech", "AI"}, pt.Sector)
		assert.False(t, math.IsNaN(pt.Revenue))
		assert.Greater(t, pt.Employees, 0.0)
	}

	_, err = svc.Render(ctx, ChartClusterSizes, dto.StartupQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, r.freqs)

	_, err = svc.Render(ctx, ChartPCA, dto.StartupQuery{})
	require.NoError(t, err)
	require.NotNil(t, r.projection)
}

func TestChartAppService_Render_Errors(t *testing.T) {
	svc := newChartService(&recordingRenderer{fail: true})

	_, err := svc.Render(context.Background(), "pie", dto.StartupQuery{})
	assert.Equal(t, 400, errors.HTTPStatusOf(err))

	_, err = svc.Render(context.Background(), ChartPCA, dto.StartupQuery{})
	require.Error(t, err)
	assert.Equal(t, 500, errors.HTTPStatusOf(err))
}

func TestChartAppService_Render_TracesThroughTracer(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	opts := DefaultOptions()
	opts.Tracer = monitoring.NewTracingManagerWithProvider(provider, logger.NewNoopLogger())

	svc := NewChartAppService(newMemorySource(nil), &recordingRenderer{fail: true},
		domainservice.NewRiskScorer(), domainservice.NewClusterProjector(), opts, logger.NewNoopLogger())
	_, err := svc.Render(context.Background(), ChartRevenueVsRisk, dto.StartupQuery{N: 10})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ChartAppService.Render", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("chart", ChartRevenueVsRisk))
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 1)
}
