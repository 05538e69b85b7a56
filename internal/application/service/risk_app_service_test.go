// internal/application/service/risk_app_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/riskboard/internal/application/dto"
	"github.com/turtacn/riskboard/internal/domain/models"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	rediscache "github.com/turtacn/riskboard/internal/infrastructure/persistence/redis"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

const scoredUpload = `company,sector,stage,country,revenue_musd,risk_score
A,SaaS,Seed,US,1,40
B,Health,Seed,UK,4,80
C,SaaS,Series A,US,2,30
D,AI,Seed,DE,10,20
E,Health,Growth,US,3,60
`

func newRiskService(source DatasetSource, cache ExportCache, metrics Metrics) RiskAppService {
	return NewRiskAppService(
		source,
		csvReader{},
		domainservice.NewRiskScorer(),
		domainservice.NewClusterProjector(),
		cache,
		metrics,
		DefaultOptions(),
		logger.NewNoopLogger(),
	)
}

func companies(table dto.TableDTO) []string {
	out := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		out = append(out, row[constants.ColumnCompany].(string))
	}
	return out
}

func TestRiskAppService_ScoreUpload(t *testing.T) {
	metrics := new(MockMetrics)
	metrics.On("RecordScoreRun", SourceUpload, 5).Once()
	svc := newRiskService(newMemorySource(nil), nil, metrics)

	resp, err := svc.ScoreUpload(context.Background(), []byte(scoredUpload), dto.StartupQuery{
		Sectors: []string{"Health"},
		Company: "E",
	})
	require.NoError(t, err)

	assert.Equal(t, SourceUpload, resp.Source)
	assert.Equal(t, 5, resp.TotalRows)
	assert.Equal(t, []string{"AI", "Health", "SaaS"}, resp.Options.Sectors)
	assert.Equal(t, []string{"DE", "UK", "US"}, resp.Options.Countries)
	assert.Equal(t, constants.ScoringPolicyVersion, resp.Policy.Version)
	assert.Equal(t, string(constants.MissingPolicyPropagate), resp.MissingPolicy)

	require.NotNil(t, resp.KPIs.AverageRisk)
	assert.Equal(t, 70.0, *resp.KPIs.AverageRisk)
	assert.Equal(t, "70.0", resp.KPIs.AverageRiskDisplay)
	assert.Equal(t, 2, resp.KPIs.Count)
	require.NotNil(t, resp.KPIs.MedianRevenue)
	assert.InDelta(t, 3.5, *resp.KPIs.MedianRevenue, 1e-9)

	require.Len(t, resp.RiskBySector, 1)
	assert.Equal(t, "Health", resp.RiskBySector[0].Sector)
	assert.Equal(t, []string{"B", "E"}, companies(resp.Table))
	assert.Equal(t, "E", resp.Company[constants.ColumnCompany])
	assert.Empty(t, resp.Notices)
	metrics.AssertExpectations(t)
}

func TestRiskAppService_ScoreUpload_Notices(t *testing.T) {
	svc := newRiskService(newMemorySource(nil), nil, nil)

	resp, err := svc.ScoreUpload(context.Background(), []byte(scoredUpload), dto.StartupQuery{
		Sectors: []string{"Biotech"},
		Company: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.KPIs.Count)
	assert.Nil(t, resp.KPIs.AverageRisk)
	assert.Equal(t, "N/A", resp.KPIs.AverageRiskDisplay)
	assert.Contains(t, resp.Notices, NoticeNoMatches)
	assert.Contains(t, resp.Notices, `Company "A" is not in the filtered table.`)
	assert.Nil(t, resp.Company)
}

func TestRiskAppService_ScoreUpload_Limit(t *testing.T) {
	svc := newRiskService(newMemorySource(nil), nil, nil)

	resp, err := svc.ScoreUpload(context.Background(), []byte(scoredUpload), dto.StartupQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "E"}, companies(resp.Table))
	assert.Equal(t, 5, resp.KPIs.Count)
}

func TestRiskAppService_ScoreUpload_EmptyBody(t *testing.T) {
	svc := newRiskService(newMemorySource(nil), nil, nil)

	_, err := svc.ScoreUpload(context.Background(), []byte("  \n"), dto.StartupQuery{})
	require.Error(t, err)
	assert.Equal(t, 400, errors.HTTPStatusOf(err))
}

func TestRiskAppService_ScoreSample(t *testing.T) {
	svc := newRiskService(newMemorySource(nil), nil, nil)
	seed := int64(7)

	resp, err := svc.ScoreSample(context.Background(), dto.StartupQuery{N: 30, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, SourceSample, resp.Source)
	assert.Equal(t, 30, resp.TotalRows)
	assert.Equal(t, 30, resp.Table.RowCount)

	again, err := svc.ScoreSample(context.Background(), dto.StartupQuery{N: 30, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, resp.Table.Rows, again.Table.Rows)

	defaults, err := svc.ScoreSample(context.Background(), dto.StartupQuery{})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultSampleSize, defaults.TotalRows)

	_, err = svc.ScoreSample(context.Background(), dto.StartupQuery{N: constants.MaxSampleSize + 1})
	assert.Equal(t, 400, errors.HTTPStatusOf(err))
}

func TestRiskAppService_ExportUpload_CachesResult(t *testing.T) {
	q := dto.StartupQuery{Sectors: []string{"SaaS"}}
	key := rediscache.ExportKey([]byte(scoredUpload), models.DefaultScoringPolicy(), constants.MissingPolicyPropagate, q.Filter(), "csv")

	cache := new(MockExportCache)
	cache.On("Get", mock.Anything, key).Return(nil, false, nil).Once()
	cache.On("Set", mock.Anything, key, mock.AnythingOfType("[]uint8")).Return(nil).Once()
	svc := newRiskService(newMemorySource(nil), cache, nil)

	file, err := svc.ExportUpload(context.Background(), []byte(scoredUpload), q, "")
	require.NoError(t, err)
	assert.Equal(t, "startups.csv", file.FileName)
	assert.False(t, file.Cached)
	assert.Equal(t, "company,sector,stage,country,revenue_musd,risk_score\nA,SaaS,Seed,US,1,40\nC,SaaS,Series A,US,2,30\n", string(file.Data))
	cache.AssertExpectations(t)
}

func TestRiskAppService_ExportUpload_CacheHit(t *testing.T) {
	cache := new(MockExportCache)
	cache.On("Get", mock.Anything, mock.Anything).Return([]byte("cached"), true, nil).Once()
	svc := newRiskService(newMemorySource(nil), cache, nil)

	file, err := svc.ExportUpload(context.Background(), []byte(scoredUpload), dto.StartupQuery{}, "xlsx")
	require.NoError(t, err)
	assert.True(t, file.Cached)
	assert.Equal(t, []byte("cached"), file.Data)
	assert.Equal(t, "startups.xlsx", file.FileName)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestRiskAppService_ExportUpload_CacheErrorsAreIgnored(t *testing.T) {
	cache := new(MockExportCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.ErrCacheUnavailable("down")).Once()
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.ErrCacheUnavailable("down")).Once()
	svc := newRiskService(newMemorySource(nil), cache, nil)

	file, err := svc.ExportUpload(context.Background(), []byte(scoredUpload), dto.StartupQuery{}, "csv")
	require.NoError(t, err)
	assert.NotEmpty(t, file.Data)
}

func TestRiskAppService_ExportUpload_SharedCacheSeparatesMissingPolicies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := rediscache.NewExportCache(client, time.Minute, logger.NewNoopLogger())

	withPolicy := func(p constants.MissingPolicy) RiskAppService {
		return NewRiskAppService(newMemorySource(nil), csvReader{},
			domainservice.NewRiskScorer(domainservice.WithMissingPolicy(p)),
			domainservice.NewClusterProjector(), cache, nil, DefaultOptions(), logger.NewNoopLogger())
	}
	upload := []byte("company,revenue,employees,founders,last_funding\nA,1,,1,1\nB,2,5,2,2\n")
	ctx := context.Background()

	propagated, err := withPolicy(constants.MissingPolicyPropagate).ExportUpload(ctx, upload, dto.StartupQuery{}, "csv")
	require.NoError(t, err)
	assert.False(t, propagated.Cached)

	neutral := withPolicy(constants.MissingPolicyNeutral)
	first, err := neutral.ExportUpload(ctx, upload, dto.StartupQuery{}, "csv")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.NotEqual(t, string(propagated.Data), string(first.Data))

	second, err := neutral.ExportUpload(ctx, upload, dto.StartupQuery{}, "csv")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Len(t, mr.Keys(), 2)
}

func TestRiskAppService_ExportUpload_UnsupportedFormat(t *testing.T) {
	svc := newRiskService(newMemorySource(nil), nil, nil)

	_, err := svc.ExportUpload(context.Background(), []byte(scoredUpload), dto.StartupQuery{}, "json")
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeUnsupportedFormat, appErr.Code())
}

func TestRiskAppService_RiskProfiles_Dataset(t *testing.T) {
	clusters := dataframe.New(
		series.New([]int{0, 0, 1, 1, 2}, series.Int, constants.ColumnClusterLabel),
		series.New([]float64{1, 2, 3, 4, 5}, series.Float, "feature1"),
		series.New([]float64{2, 1, 4, 3, 6}, series.Float, "feature2"),
	)
	metrics := new(MockMetrics)
	metrics.On("RecordProjection", ProjectionProjected).Once()
	svc := newRiskService(newMemorySource(map[string]dataframe.DataFrame{
		constants.DatasetClusterValidation: clusters,
	}), nil, metrics)

	resp, err := svc.RiskProfiles(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.Demo)
	assert.Empty(t, resp.Notices)
	assert.Equal(t, "0", resp.Frequencies[0].Cluster)
	assert.Equal(t, 2, resp.Frequencies[0].Count)
	require.NotNil(t, resp.Projection)
	assert.Len(t, resp.Projection.Points, 5)
	metrics.AssertExpectations(t)
}

func TestRiskAppService_RiskProfiles_DemoFallback(t *testing.T) {
	noLabel := dataframe.New(series.New([]float64{1, 2}, series.Float, "feature1"))
	metrics := new(MockMetrics)
	metrics.On("RecordProjection", ProjectionDemo).Once()
	svc := newRiskService(newMemorySource(map[string]dataframe.DataFrame{
		constants.DatasetClusterValidation: noLabel,
	}), nil, metrics)

	resp, err := svc.RiskProfiles(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Demo)
	assert.Equal(t, []string{constants.NoticeDemoClusterData}, resp.Notices)
	assert.Equal(t, constants.DefaultPreviewRows, resp.Preview.RowCount)
	require.NotNil(t, resp.Projection)
	assert.Len(t, resp.Projection.Points, constants.DemoClusterRows)

	total := 0
	for _, f := range resp.Frequencies {
		total += f.Count
	}
	assert.Equal(t, constants.DemoClusterRows, total)
	metrics.AssertExpectations(t)
}

func TestRiskAppService_RiskProfiles_InsufficientFeatures(t *testing.T) {
	oneFeature := dataframe.New(
		series.New([]string{"a", "b", "a"}, series.String, constants.ColumnClusterLabel),
		series.New([]float64{1, 2, 3}, series.Float, "feature1"),
	)
	metrics := new(MockMetrics)
	metrics.On("RecordProjection", ProjectionSkipped).Once()
	svc := newRiskService(newMemorySource(map[string]dataframe.DataFrame{
		constants.DatasetClusterValidation: oneFeature,
	}), nil, metrics)

	resp, err := svc.RiskProfiles(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp.Projection)
	assert.Equal(t, []string{constants.NoticeInsufficientFeatures}, resp.Notices)
	assert.Equal(t, "a", resp.Frequencies[0].Cluster)
	metrics.AssertExpectations(t)
}
