// internal/application/service/risk_app_service.go
package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/riskboard/internal/application/dto"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/internal/infrastructure/export"
	rediscache "github.com/turtacn/riskboard/internal/infrastructure/persistence/redis"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

// Explorer notices.
const (
	NoticeEmptyTable      = "The table is empty or could not be parsed."
	NoticeNoMatches       = "No startups match the selected filters."
	NoticeCompanyNotFound = "Company %q is not in the filtered table."
)

// RiskAppService serves the startup explorer and the risk profiles page.
// RiskAppService 风险评分应用服务接口。
type RiskAppService interface {
	// ScoreUpload scores an uploaded CSV and applies the query filters.
	// ScoreUpload 对上传的表格评分并筛选。
	ScoreUpload(ctx context.Context, upload []byte, q dto.StartupQuery) (*dto.ScoreResponse, error)

	// ScoreSample scores a seeded synthetic table and applies the query filters.
	// ScoreSample 对生成的样本数据评分并筛选。
	ScoreSample(ctx context.Context, q dto.StartupQuery) (*dto.ScoreResponse, error)

	// ExportUpload renders the filtered, scored upload as a download.
	// ExportUpload 导出筛选后的评分表。
	ExportUpload(ctx context.Context, upload []byte, q dto.StartupQuery, format string) (*dto.ExportFile, error)

	// RiskProfiles returns the cluster frequencies and the 2-D projection of the cluster dataset.
	// RiskProfiles 返回聚类分布与主成分投影。
	RiskProfiles(ctx context.Context) (*dto.RiskProfilesResponse, error)
}

type riskAppServiceImpl struct {
	source    DatasetSource
	reader    TableReader
	scorer    *domainservice.RiskScorer
	projector *domainservice.ClusterProjector
	cache     ExportCache
	metrics   Metrics
	opts      Options
	logger    logger.Logger
}

// NewRiskAppService creates a new instance of RiskAppService.
// A nil cache disables export caching and nil metrics are discarded.
func NewRiskAppService(
	source DatasetSource,
	reader TableReader,
	scorer *domainservice.RiskScorer,
	projector *domainservice.ClusterProjector,
	cache ExportCache,
	metrics Metrics,
	opts Options,
	log logger.Logger,
) RiskAppService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &riskAppServiceImpl{
		source:    source,
		reader:    reader,
		scorer:    scorer,
		projector: projector,
		cache:     cache,
		metrics:   metrics,
		opts:      opts,
		logger:    log.WithComponent("risk_app_service"),
	}
}

func (s *riskAppServiceImpl) ScoreUpload(ctx context.Context, upload []byte, q dto.StartupQuery) (*dto.ScoreResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "RiskAppService.ScoreUpload", map[string]interface{}{"upload.bytes": len(upload)})
	defer span.End()

	df, err := s.readUpload(ctx, upload)
	if err != nil {
		return nil, err
	}
	return s.explore(ctx, df, SourceUpload, q), nil
}

func (s *riskAppServiceImpl) ScoreSample(ctx context.Context, q dto.StartupQuery) (*dto.ScoreResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "RiskAppService.ScoreSample", nil)
	defer span.End()

	df, err := sampleFrame(q, s.opts)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sample.rows", df.Nrow()))
	return s.explore(ctx, df, SourceSample, q), nil
}

func (s *riskAppServiceImpl) ExportUpload(ctx context.Context, upload []byte, q dto.StartupQuery, format string) (*dto.ExportFile, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "RiskAppService.ExportUpload", map[string]interface{}{"upload.bytes": len(upload)})
	defer span.End()

	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	file := &dto.ExportFile{FileName: f.FileName(constants.DefaultExportFileName), ContentType: f.ContentType()}

	key := rediscache.ExportKey(upload, s.scorer.Policy(), s.scorer.MissingPolicy(), q.Filter(), string(f))
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "Export cache read failed", logger.Fields{"error": err.Error()})
		case ok:
			span.SetAttributes(attribute.Bool("cache.hit", true))
			file.Data, file.Cached = data, true
			return file, nil
		}
	}

	df, err := s.readUpload(ctx, upload)
	if err != nil {
		return nil, err
	}
	scored := s.scorer.EnsureScored(df)
	s.metrics.RecordScoreRun(SourceUpload, scored.Nrow())
	table := domainservice.SortByRisk(domainservice.FilterStartups(scored, q.Filter()))

	var data []byte
	err = s.opts.Tracer.TraceOperation(ctx, "export.Encode", map[string]interface{}{"format": string(f), "rows": table.Nrow()}, func(context.Context) error {
		data, err = export.Encode(table, f)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to encode export", err, logger.Fields{"format": string(f)})
		return nil, err
	}
	file.Data = data

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warn(ctx, "Export cache write failed", logger.Fields{"error": err.Error()})
		}
	}
	return file, nil
}

func (s *riskAppServiceImpl) RiskProfiles(ctx context.Context) (*dto.RiskProfilesResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "RiskAppService.RiskProfiles", nil)
	defer span.End()

	df, demo := loadClusterFrame(ctx, s.source, s.projector, s.opts.Seed)
	resp := &dto.RiskProfilesResponse{
		Dataset: constants.DatasetClusterValidation,
		Demo:    demo,
		Preview: dto.NewTableDTO(domainservice.Head(df, s.opts.PreviewRows)),
	}
	if demo {
		resp.Notices = append(resp.Notices, constants.NoticeDemoClusterData)
	}

	result := s.projector.Project(df)
	resp.Frequencies = result.Frequencies
	resp.Projection = result.Projection
	if result.Notice != "" {
		resp.Notices = append(resp.Notices, result.Notice)
	}

	outcome := ProjectionSkipped
	switch {
	case demo:
		outcome = ProjectionDemo
	case result.Projected():
		outcome = ProjectionProjected
	}
	s.metrics.RecordProjection(outcome)
	span.SetAttributes(attribute.String("projection.result", outcome), attribute.Int("rows", df.Nrow()))
	return resp, nil
}

// explore runs the explorer pipeline over an unscored table.
func (s *riskAppServiceImpl) explore(ctx context.Context, df dataframe.DataFrame, source string, q dto.StartupQuery) *dto.ScoreResponse {
	scored := s.scorer.EnsureScored(df)
	s.metrics.RecordScoreRun(source, scored.Nrow())

	resp := &dto.ScoreResponse{
		Source:        source,
		Policy:        s.scorer.Policy(),
		MissingPolicy: string(s.scorer.MissingPolicy()),
		TotalRows:     scored.Nrow(),
		Options: dto.FilterOptions{
			Sectors:   domainservice.DistinctValues(scored, constants.ColumnSector),
			Stages:    domainservice.DistinctValues(scored, constants.ColumnStage),
			Countries: domainservice.DistinctValues(scored, constants.ColumnCountry),
		},
	}
	if domainservice.IsEmptyFrame(scored) {
		resp.TotalRows = 0
		resp.Notices = append(resp.Notices, NoticeEmptyTable)
	}

	filtered := domainservice.FilterStartups(scored, q.Filter())
	kpis := domainservice.ComputeKPIs(filtered, s.scorer.Aliases())
	resp.KPIs = dto.KPIsDTO{
		AverageRisk:        dto.Round1(kpis.AverageRisk),
		AverageRiskDisplay: "N/A",
		Count:              kpis.Count,
		MedianRevenue:      kpis.MedianRevenue,
	}
	if kpis.AverageRisk != nil {
		resp.KPIs.AverageRiskDisplay = fmt.Sprintf("%.1f", *kpis.AverageRisk)
	}
	resp.RiskBySector = domainservice.RiskBySector(filtered)
	resp.Histogram = domainservice.RiskHistogram(filtered, s.opts.HistogramBins)

	sorted := domainservice.SortByRisk(filtered)
	if !domainservice.IsEmptyFrame(scored) && domainservice.IsEmptyFrame(sorted) {
		resp.Notices = append(resp.Notices, NoticeNoMatches)
	}
	if q.Company != "" {
		if i, ok := domainservice.FindRow(sorted, constants.ColumnCompany, q.Company); ok {
			resp.Company = dto.RowDTO(sorted, i)
		} else {
			resp.Notices = append(resp.Notices, fmt.Sprintf(NoticeCompanyNotFound, q.Company))
		}
	}
	if q.Limit > 0 {
		sorted = domainservice.Head(sorted, q.Limit)
	}
	resp.Table = dto.NewTableDTO(sorted)

	s.logger.Debug(ctx, "Explorer view computed", logger.Fields{
		"source":   source,
		"rows":     resp.TotalRows,
		"filtered": kpis.Count,
	})
	return resp
}

func (s *riskAppServiceImpl) readUpload(ctx context.Context, upload []byte) (dataframe.DataFrame, error) {
	if len(bytes.TrimSpace(upload)) == 0 {
		return dataframe.DataFrame{}, errors.ErrInvalidRequest("upload is empty")
	}
	return s.reader.ReadCSV(ctx, bytes.NewReader(upload), SourceUpload), nil
}

// sampleFrame generates the synthetic table described by the query's n and seed.
func sampleFrame(q dto.StartupQuery, opts Options) (dataframe.DataFrame, error) {
	n := q.N
	if n == 0 {
		n = opts.SampleSize
	}
	limit := opts.MaxSampleSize
	if limit <= 0 {
		limit = constants.MaxSampleSize
	}
	if n < 0 || n > limit {
		return dataframe.DataFrame{}, errors.ErrInvalidRequest(fmt.Sprintf("n must be in 1..%d", limit))
	}
	seed := opts.Seed
	if q.Seed != nil {
		seed = *q.Seed
	}
	return domainservice.GenerateStartups(n, seed), nil
}

// loadClusterFrame reads the cluster dataset, falling back to demo data when it is empty
// or lacks the label column. demo reports the fallback.
func loadClusterFrame(ctx context.Context, source DatasetSource, p *domainservice.ClusterProjector, seed int64) (df dataframe.DataFrame, demo bool) {
	df = source.Frame(ctx, constants.DatasetClusterValidation)
	if p.CanProject(df) {
		return df, false
	}
	return domainservice.DemoClusterFrame(seed), true
}
