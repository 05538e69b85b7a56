// internal/application/service/insights_app_service.go
package service

import (
	"context"

	"github.com/turtacn/riskboard/internal/application/dto"
	"github.com/turtacn/riskboard/internal/domain/models"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/pkg/constants"
	"github.com/turtacn/riskboard/pkg/logger"
)

// Geographic and recommendation notices.
const (
	NoticeNoStateData       = "No state heatmap data available."
	NoticeNoCountyData      = "No county heatmap data available."
	NoticeStateUnresolved   = "State or value column not found; showing a preview."
	NoticeCountyUnresolved  = "Latitude or longitude column not found; showing a preview."
	NoticeNoCandidates      = "No investment candidate data available."
	NoticeNoUndercap        = "No undercap data available."
	NoticeNoSectorMatrix    = "No sector opportunity data available."
	unresolvedPreviewRows   = 5
	recommendationSummaries = constants.DefaultSummaryRows
)

type recommendation struct {
	key, title, dataset, notice string
	rows                        int
}

var recommendations = []recommendation{
	{"candidates", "Investment candidates", constants.DatasetInvestmentCandidates, NoticeNoCandidates, constants.DefaultCandidateRows},
	{"undercap", "Undercap / Opportunity summaries", constants.DatasetIndustryUndercap, NoticeNoUndercap, recommendationSummaries},
	{"sector_matrix", "Sector opportunity matrix", constants.DatasetSectorOpportunity, NoticeNoSectorMatrix, recommendationSummaries},
}

// InsightsAppService serves the geographic and recommendations pages.
// InsightsAppService 地理与推荐页面应用服务接口。
type InsightsAppService interface {
	// Geographic resolves the state choropleth and the county map layer.
	// Geographic 解析州与县级地图图层。
	Geographic(ctx context.Context) (*dto.GeographicResponse, error)

	// Recommendations returns the heads of the recommendation tables.
	// Recommendations 返回推荐数据表。
	Recommendations(ctx context.Context) (*dto.RecommendationsResponse, error)
}

type insightsAppServiceImpl struct {
	source  DatasetSource
	aliases models.ColumnAliases
	opts    Options
	logger  logger.Logger
}

// NewInsightsAppService creates a new instance of InsightsAppService using the default geographic aliases.
func NewInsightsAppService(source DatasetSource, opts Options, log logger.Logger) InsightsAppService {
	return &insightsAppServiceImpl{
		source:  source,
		opts:    opts,
		aliases: models.DefaultGeoAliases(),
		logger:  log.WithComponent("insights_app_service"),
	}
}

func (s *insightsAppServiceImpl) Geographic(ctx context.Context) (*dto.GeographicResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "InsightsAppService.Geographic", nil)
	defer span.End()

	resp := &dto.GeographicResponse{
		State:  dto.StateLayerDTO{Dataset: constants.DatasetStateHeatmap},
		County: dto.CountyLayerDTO{Dataset: constants.DatasetCountyHeatmap},
	}

	state := s.source.Frame(ctx, constants.DatasetStateHeatmap)
	switch values, ok := domainservice.StateValues(state, s.aliases); {
	case domainservice.IsEmptyFrame(state):
		resp.State.Notice = NoticeNoStateData
	case ok:
		resp.State.Values = values
	default:
		resp.State.Preview = dto.NewTableDTOPtr(domainservice.Head(state, unresolvedPreviewRows))
		resp.State.Notice = NoticeStateUnresolved
	}

	county := s.source.Frame(ctx, constants.DatasetCountyHeatmap)
	switch layer, ok := domainservice.CountyLayerOf(county, s.aliases); {
	case domainservice.IsEmptyFrame(county):
		resp.County.Notice = NoticeNoCountyData
	case ok:
		resp.County.Layer = layer
	default:
		resp.County.Preview = dto.NewTableDTOPtr(domainservice.Head(county, unresolvedPreviewRows))
		resp.County.Notice = NoticeCountyUnresolved
	}
	return resp, nil
}

func (s *insightsAppServiceImpl) Recommendations(ctx context.Context) (*dto.RecommendationsResponse, error) {
	ctx, span := s.opts.Tracer.StartSpan(ctx, "InsightsAppService.Recommendations", nil)
	defer span.End()

	resp := &dto.RecommendationsResponse{Sections: make([]dto.RecommendationSection, 0, len(recommendations))}
	for _, r := range recommendations {
		section := dto.RecommendationSection{Key: r.key, Title: r.title, Dataset: r.dataset}
		df := s.source.Frame(ctx, r.dataset)
		if domainservice.IsEmptyFrame(df) {
			section.Notice = r.notice
		} else {
			section.Table = dto.NewTableDTOPtr(domainservice.Head(df, r.rows))
		}
		resp.Sections = append(resp.Sections, section)
	}
	return resp, nil
}
