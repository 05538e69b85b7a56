package models

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/turtacn/riskboard/pkg/constants"
)

// ClusterFrequency is one row of the cluster size table.
type ClusterFrequency struct {
	Cluster string `json:"cluster"`
	Count   int    `json:"count"`
}

// ProjectedPoint is one input record placed on the first two principal axes.
type ProjectedPoint struct {
	Axis1        float64 `json:"axis1"`
	Axis2        float64 `json:"axis2"`
	ClusterLabel string  `json:"cluster_label"`
}

// Projection is the 2-D PCA view of a cluster table, in input row order.
type Projection struct {
	Points                 []ProjectedPoint `json:"points"`
	Features               []string         `json:"features"`
	ExplainedVarianceRatio [2]float64       `json:"explained_variance_ratio"`
}

// Frame renders the projection as a PCA1/PCA2/cluster_label table.
func (p *Projection) Frame() dataframe.DataFrame {
	axis1 := make([]float64, len(p.Points))
	axis2 := make([]float64, len(p.Points))
	labels := make([]string, len(p.Points))
	for i, pt := range p.Points {
		axis1[i] = pt.Axis1
		axis2[i] = pt.Axis2
		labels[i] = pt.ClusterLabel
	}
	return dataframe.New(
		series.New(axis1, series.Float, constants.ColumnPCA1),
		series.New(axis2, series.Float, constants.ColumnPCA2),
		series.New(labels, series.String, constants.ColumnClusterLabel),
	)
}

// ClusterProjection bundles the frequency table with the optional projection.
// Projection is nil when the table has fewer than two numeric features; Notice says why.
type ClusterProjection struct {
	Frequencies []ClusterFrequency `json:"frequencies"`
	Projection  *Projection        `json:"projection,omitempty"`
	Notice      string             `json:"notice,omitempty"`
}

// Projected reports whether a projection was produced.
func (c ClusterProjection) Projected() bool {
	return c.Projection != nil
}
