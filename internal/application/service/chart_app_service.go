// internal/application/service/chart_app_service.go
package service

import (
	"context"

	"github.com/turtacn/riskboard/internal/application/dto"
	"github.com/turtacn/riskboard/internal/domain/models"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

// ChartRenderer draws PNG charts.
type ChartRenderer interface {
	RiskHistogram(scores []float64, bins int) ([]byte, error)
	SectorRisk(rows []models.SectorRisk) ([]byte, error)
	ClusterSizes(freqs []models.ClusterFrequency) ([]byte, error)
	Projection(proj *models.Projection) ([]byte, error)
	RevenueVsRisk(points []models.RevenueRiskPoint) ([]byte, error)
}

// Chart names.
const (
	ChartRiskHistogram = "risk-histogram"
	ChartRiskBySector  = "risk-by-sector"
	ChartClusterSizes  = "cluster-sizes"
	ChartPCA           = "pca"
	ChartRevenueVsRisk = "revenue-vs-risk"
)

// ChartAppService renders the dashboard charts.
// ChartAppService 图表渲染应用服务接口。
type ChartAppService interface {
	// Render draws the named chart. Startup charts use the seeded sample filtered by q;
	// cluster charts use the cluster dataset or its demo stand-in.
	// Render 渲染指定图表。
	Render(ctx context.Context, chart string, q dto.StartupQuery) ([]byte, error)
}

type chartAppServiceImpl struct {
	source    DatasetSource
	renderer  ChartRenderer
	scorer    *domainservice.RiskScorer
	projector *domainservice.ClusterProjector
	opts      Options
	logger    logger.Logger
}

// NewChartAppService creates a new instance of ChartAppService.
func NewChartAppService(
	source DatasetSource,
	renderer ChartRenderer,
	scorer *domainservice.RiskScorer,
	projector *domainservice.ClusterProjector,
	opts Options,
	log logger.Logger,
) ChartAppService {
	return &chartAppServiceImpl{
		source:    source,
		renderer:  renderer,
		scorer:    scorer,
		projector: projector,
		opts:      opts,
		logger:    log.WithComponent("chart_app_service"),
	}
}

func (s *chartAppServiceImpl) Render(ctx context.Context, chart string, q dto.StartupQuery) ([]byte, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "ChartAppService.Render", map[string]interface{}{"chart": chart})
	defer span.End()

	var (
		img []byte
		err error
	)
	switch chart {
	case ChartRiskHistogram, ChartRiskBySector, ChartRevenueVsRisk:
		sample, sampleErr := sampleFrame(q, s.opts)
		if sampleErr != nil {
			return nil, sampleErr
		}
		filtered := domainservice.FilterStartups(s.scorer.EnsureScored(sample), q.Filter())
		switch chart {
		case ChartRiskHistogram:
			var scores []float64
			if domainservice.HasColumn(filtered, constants.ColumnRiskScore) {
				scores = domainservice.FloatColumn(filtered, constants.ColumnRiskScore)
			}
			img, err = s.renderer.RiskHistogram(scores, s.opts.HistogramBins)
		case ChartRiskBySector:
			img, err = s.renderer.SectorRisk(domainservice.RiskBySector(filtered))
		default:
			img, err = s.renderer.RevenueVsRisk(domainservice.RevenueRiskPoints(filtered, s.scorer.Aliases()))
		}
	case ChartClusterSizes, ChartPCA:
		df, _ := loadClusterFrame(ctx, s.source, s.projector, s.opts.Seed)
		result := s.projector.Project(df)
		if chart == ChartClusterSizes {
			img, err = s.renderer.ClusterSizes(result.Frequencies)
		} else {
			img, err = s.renderer.Projection(result.Projection)
		}
	default:
		return nil, errors.ErrInvalidRequest("unknown chart " + chart).WithMetadata("chart", chart)
	}

	if err != nil {
		s.opts.Tracer.RecordError(ctx, err)
		s.logger.Error(ctx, "Failed to render chart", err, logger.Fields{"chart": chart})
		return nil, errors.Wrap(err, "render chart")
	}
	return img, nil
}
