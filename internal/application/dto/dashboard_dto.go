package dto

import (
	"time"

	"github.com/turtacn/riskboard/internal/domain/models"
)

// DatasetInfo describes one CSV dataset.
type DatasetInfo struct {
	Name    string    `json:"name"`
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// DatasetListResponse lists the datasets of the data directory.
type DatasetListResponse struct {
	Dir      string        `json:"dir"`
	Datasets []DatasetInfo `json:"datasets"`
}

// ColumnSummaryDTO is models.ColumnSummary with missing statistics as null.
type ColumnSummaryDTO struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Median *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// NewColumnSummaries converts describe output for JSON.
func NewColumnSummaries(in []models.ColumnSummary) []ColumnSummaryDTO {
	out := make([]ColumnSummaryDTO, len(in))
	for i, s := range in {
		out[i] = ColumnSummaryDTO{
			Column: s.Column,
			Count:  s.Count,
			Mean:   FloatPtr(s.Mean),
			Std:    FloatPtr(s.Std),
			Min:    FloatPtr(s.Min),
			Q25:    FloatPtr(s.Q25),
			Median: FloatPtr(s.Median),
			Q75:    FloatPtr(s.Q75),
			Max:    FloatPtr(s.Max),
		}
	}
	return out
}

// DatasetPreviewResponse is the overview of one dataset.
type DatasetPreviewResponse struct {
	Name           string             `json:"name"`
	Rows           int                `json:"rows"`
	Columns        int                `json:"columns"`
	NumericColumns int                `json:"numeric_columns"`
	ColumnNames    []string           `json:"column_names"`
	Sampled        bool               `json:"sampled"`
	Preview        TableDTO           `json:"preview"`
	Summary        []ColumnSummaryDTO `json:"summary"`
}

// StartupQuery carries the explorer filters and display options from the query string.
type StartupQuery struct {
	Sectors   []string `form:"sector"`
	Stages    []string `form:"stage"`
	Countries []string `form:"country"`
	MinRisk   *float64 `form:"min_risk"`
	MaxRisk   *float64 `form:"max_risk"`
	Company   string   `form:"company"`
	Limit     int      `form:"limit"`
	N         int      `form:"n"`
	Seed      *int64   `form:"seed"`
	Format    string   `form:"format"`
}

// Filter returns the row filter part of the query.
func (q StartupQuery) Filter() models.StartupFilter {
	return models.StartupFilter{
		Sectors:   q.Sectors,
		Stages:    q.Stages,
		Countries: q.Countries,
		MinRisk:   q.MinRisk,
		MaxRisk:   q.MaxRisk,
	}
}

// FilterOptions lists the values available to each filter.
type FilterOptions struct {
	Sectors   []string `json:"sectors"`
	Stages    []string `json:"stages"`
	Countries []string `json:"countries"`
}

// KPIsDTO are the explorer headline numbers.
type KPIsDTO struct {
	AverageRisk        *float64 `json:"average_risk"`
	AverageRiskDisplay string   `json:"average_risk_display"`
	Count              int      `json:"count"`
	MedianRevenue      *float64 `json:"median_revenue"`
}

// ScoreResponse is the startup explorer view of a scored table.
type ScoreResponse struct {
	Source        string                 `json:"source"`
	Policy        models.ScoringPolicy   `json:"policy"`
	MissingPolicy string                 `json:"missing_policy"`
	TotalRows     int                    `json:"total_rows"`
	Options       FilterOptions          `json:"filter_options"`
	KPIs          KPIsDTO                `json:"kpis"`
	RiskBySector  []models.SectorRisk    `json:"risk_by_sector"`
	Histogram     []models.HistogramBin  `json:"histogram"`
	Table         TableDTO               `json:"table"`
	Company       map[string]interface{} `json:"company,omitempty"`
	Notices       []string               `json:"notices,omitempty"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Cached      bool
}

// RiskProfilesResponse is the cluster view.
type RiskProfilesResponse struct {
	Dataset     string                    `json:"dataset"`
	Demo        bool                      `json:"demo"`
	Preview     TableDTO                  `json:"preview"`
	Frequencies []models.ClusterFrequency `json:"frequencies"`
	Projection  *models.Projection        `json:"projection,omitempty"`
	Notices     []string                  `json:"notices,omitempty"`
}

// StateLayerDTO is the state choropleth, or a preview when columns could not be resolved.
type StateLayerDTO struct {
	Dataset string              `json:"dataset"`
	Values  []models.StateValue `json:"values,omitempty"`
	Preview *TableDTO           `json:"preview,omitempty"`
	Notice  string              `json:"notice,omitempty"`
}

// CountyLayerDTO is the county map layer, or a preview when columns could not be resolved.
type CountyLayerDTO struct {
	Dataset string              `json:"dataset"`
	Layer   *models.CountyLayer `json:"layer,omitempty"`
	Preview *TableDTO           `json:"preview,omitempty"`
	Notice  string              `json:"notice,omitempty"`
}

// GeographicResponse is the geographic page.
type GeographicResponse struct {
	State  StateLayerDTO  `json:"state"`
	County CountyLayerDTO `json:"county"`
}

// RecommendationSection is one table of the recommendations page.
type RecommendationSection struct {
	Key     string    `json:"key"`
	Title   string    `json:"title"`
	Dataset string    `json:"dataset"`
	Table   *TableDTO `json:"table,omitempty"`
	Notice  string    `json:"notice,omitempty"`
}

// RecommendationsResponse is the recommendations page.
type RecommendationsResponse struct {
	Sections []RecommendationSection `json:"sections"`
}
