package models

import "github.com/turtacn/riskboard/pkg/constants"

// ScoringPolicy is the versioned weight set of the composite risk score.
// Higher normalized values reduce risk; weights sum to 1.
type ScoringPolicy struct {
	Version     string  `json:"version"`
	Revenue     float64 `json:"revenue"`
	Employees   float64 `json:"employees"`
	LastFunding float64 `json:"last_funding"`
	Founders    float64 `json:"founders"`
}

// DefaultScoringPolicy returns the v1 weights.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		Version:     constants.ScoringPolicyVersion,
		Revenue:     constants.WeightRevenue,
		Employees:   constants.WeightEmployees,
		LastFunding: constants.WeightLastFunding,
		Founders:    constants.WeightFounders,
	}
}

// StartupFilter narrows a scored startup table.
// Empty slices keep every value; values within a field are OR-ed, fields are AND-ed.
type StartupFilter struct {
	Sectors   []string `json:"sectors,omitempty" form:"sector"`
	Stages    []string `json:"stages,omitempty" form:"stage"`
	Countries []string `json:"countries,omitempty" form:"country"`
	MinRisk   *float64 `json:"min_risk,omitempty" form:"min_risk"`
	MaxRisk   *float64 `json:"max_risk,omitempty" form:"max_risk"`
}

// RiskKPIs are the headline numbers of the startup explorer.
// Pointers are nil when the filtered table has no usable values.
type RiskKPIs struct {
	AverageRisk   *float64 `json:"average_risk"`
	Count         int      `json:"count"`
	MedianRevenue *float64 `json:"median_revenue"`
}

// SectorRisk is the mean risk of one sector.
type SectorRisk struct {
	Sector      string  `json:"sector"`
	AverageRisk float64 `json:"average_risk"`
	Count       int     `json:"count"`
}

// RevenueRiskPoint is one startup on the revenue-vs-risk chart.
// Employees is NaN when the head count is unknown.
type RevenueRiskPoint struct {
	Sector    string  `json:"sector"`
	Revenue   float64 `json:"revenue"`
	Risk      float64 `json:"risk"`
	Employees float64 `json:"employees"`
}

// HistogramBin counts risk scores falling in [Lower, Upper).
// The last bin is closed on both ends.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}
