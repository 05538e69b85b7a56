// internal/application/service/insights_app_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/logger"
)

func TestInsightsAppService_Geographic_Resolved(t *testing.T) {
	svc := NewInsightsAppService(newMemorySource(map[string]dataframe.DataFrame{
		constants.DatasetStateHeatmap: dataframe.New(
			series.New([]string{"CA", "NY"}, series.String, "State"),
			series.New([]float64{3.5, 1.25}, series.Float, "score"),
		),
		constants.DatasetCountyHeatmap: dataframe.New(
			series.New([]float64{40, 42}, series.Float, "latitude"),
			series.New([]float64{-70, -72}, series.Float, "lng"),
		),
	}), DefaultOptions(), logger.NewNoopLogger())

	resp, err := svc.Geographic(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.StateValue{{State: "CA", Value: 3.5}, {State: "NY", Value: 1.25}}, resp.State.Values)
	assert.Nil(t, resp.State.Preview)
	assert.Empty(t, resp.State.Notice)

	require.NotNil(t, resp.County.Layer)
	assert.Equal(t, models.LayerScatterplot, resp.County.Layer.LayerType)
	assert.InDelta(t, 41.0, resp.County.Layer.CenterLat, 1e-9)
	assert.InDelta(t, -71.0, resp.County.Layer.CenterLon, 1e-9)
	assert.Len(t, resp.County.Layer.Points, 2)
}

func TestInsightsAppService_Geographic_Fallbacks(t *testing.T) {
	svc := NewInsightsAppService(newMemorySource(map[string]dataframe.DataFrame{
		constants.DatasetStateHeatmap: dataframe.New(
			series.New([]string{"CA", "NY", "TX", "WA", "OR", "NV", "AZ"}, series.String, "region"),
			series.New([]float64{1, 2, 3, 4, 5, 6, 7}, series.Float, "value"),
		),
	}), DefaultOptions(), logger.NewNoopLogger())

	resp, err := svc.Geographic(context.Background())
	require.NoError(t, err)

	assert.Nil(t, resp.State.Values)
	require.NotNil(t, resp.State.Preview)
	assert.Equal(t, 5, resp.State.Preview.RowCount)
	assert.Equal(t, NoticeStateUnresolved, resp.State.Notice)

	assert.Nil(t, resp.County.Layer)
	assert.Nil(t, resp.County.Preview)
	assert.Equal(t, NoticeNoCountyData, resp.County.Notice)
}

func TestInsightsAppService_Recommendations(t *testing.T) {
	svc := NewInsightsAppService(newMemorySource(map[string]dataframe.DataFrame{
		constants.DatasetInvestmentCandidates: seqFrame(80),
		constants.DatasetIndustryUndercap:     seqFrame(3),
	}), DefaultOptions(), logger.NewNoopLogger())

	resp, err := svc.Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Sections, 3)

	candidates, undercap, matrix := resp.Sections[0], resp.Sections[1], resp.Sections[2]
	assert.Equal(t, constants.DatasetInvestmentCandidates, candidates.Dataset)
	require.NotNil(t, candidates.Table)
	assert.Equal(t, constants.DefaultCandidateRows, candidates.Table.RowCount)

	require.NotNil(t, undercap.Table)
	assert.Equal(t, 3, undercap.Table.RowCount)

	assert.Nil(t, matrix.Table)
	assert.Equal(t, NoticeNoSectorMatrix, matrix.Notice)
}
