package charts

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/riskboard/internal/domain/models"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func assertPNG(t *testing.T, data []byte, err error) {
	t.Helper()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature), "not a PNG")
}

func TestRenderer(t *testing.T) {
	r := NewRenderer()

	t.Run("histogram", func(t *testing.T) {
		data, err := r.RiskHistogram([]float64{10, 20, 20, math.NaN(), 80}, 25)
		assertPNG(t, data, err)
	})
	t.Run("empty histogram", func(t *testing.T) {
		data, err := r.RiskHistogram(nil, 25)
		assertPNG(t, data, err)
	})
	t.Run("sector bars", func(t *testing.T) {
		data, err := r.SectorRisk([]models.SectorRisk{{Sector: "AI", AverageRisk: 60, Count: 2}, {Sector: "SaaS", AverageRisk: 30, Count: 1}})
		assertPNG(t, data, err)
	})
	t.Run("cluster sizes", func(t *testing.T) {
		data, err := r.ClusterSizes([]models.ClusterFrequency{{Cluster: "0", Count: 3}, {Cluster: "1", Count: 1}})
		assertPNG(t, data, err)
	})
	t.Run("projection", func(t *testing.T) {
		proj := &models.Projection{Points: []models.ProjectedPoint{
			{Axis1: 1, Axis2: 0.5, ClusterLabel: "0"},
			{Axis1: -1, Axis2: 0.2, ClusterLabel: "1"},
			{Axis1: 0.3, Axis2: -0.7, ClusterLabel: "0"},
		}}
		data, err := r.WithSize(300, 200).Projection(proj)
		assertPNG(t, data, err)
	})
	t.Run("revenue vs risk", func(t *testing.T) {
		data, err := r.RevenueVsRisk([]models.RevenueRiskPoint{
			{Sector: "AI", Revenue: 3, Risk: 55, Employees: 40},
			{Sector: "SaaS", Revenue: 10, Risk: 20, Employees: math.NaN()},
			{Sector: "AI", Revenue: 1, Risk: 80, Employees: 5},
			{Revenue: 0.5, Risk: 90, Employees: 2},
		})
		assertPNG(t, data, err)
	})
	t.Run("empty revenue vs risk", func(t *testing.T) {
		data, err := r.RevenueVsRisk(nil)
		assertPNG(t, data, err)
	})
	t.Run("nil projection", func(t *testing.T) {
		data, err := r.Projection(nil)
		assertPNG(t, data, err)
	})
}

func TestPointRadius(t *testing.T) {
	assert.Equal(t, minPointRadius, pointRadius(math.NaN(), 100))
	assert.Equal(t, minPointRadius, pointRadius(0, 100))
	assert.Equal(t, minPointRadius, pointRadius(10, 0))
	assert.Equal(t, maxPointRadius, pointRadius(100, 100))
	assert.InDelta(t, minPointRadius+(maxPointRadius-minPointRadius)*0.5, pointRadius(25, 100), 1e-9)
}
