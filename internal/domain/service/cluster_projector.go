package service

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
)

// ClusterProjector computes cluster sizes and a two-component PCA view of a cluster table.
type ClusterProjector struct {
	labelColumn string
}

// ProjectorOption configures a ClusterProjector.
type ProjectorOption func(*ClusterProjector)

// WithLabelColumn overrides the cluster label column name.
func WithLabelColumn(name string) ProjectorOption {
	return func(p *ClusterProjector) {
		if name != "" {
			p.labelColumn = name
		}
	}
}

// NewClusterProjector creates a projector reading labels from cluster_label.
func NewClusterProjector(opts ...ProjectorOption) *ClusterProjector {
	p := &ClusterProjector{labelColumn: constants.ColumnClusterLabel}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LabelColumn returns the label column name.
func (p *ClusterProjector) LabelColumn() string {
	return p.labelColumn
}

// CanProject reports whether df carries rows and the label column.
func (p *ClusterProjector) CanProject(df dataframe.DataFrame) bool {
	return !IsEmptyFrame(df) && HasColumn(df, p.labelColumn)
}

// Project returns the frequency table and, when at least two numeric features exist,
// the projection of every record in input order.
func (p *ClusterProjector) Project(df dataframe.DataFrame) models.ClusterProjection {
	result := models.ClusterProjection{Frequencies: []models.ClusterFrequency{}}
	if !p.CanProject(df) {
		return result
	}

	labels := LabelStrings(df.Col(p.labelColumn))
	result.Frequencies = CountLabels(labels)

	features := p.numericFeatures(df)
	if len(features) < constants.ProjectionComponents {
		result.Notice = constants.NoticeInsufficientFeatures
		return result
	}

	result.Projection = projectPCA(standardize(df, features), labels, features)
	return result
}

// CountLabels counts occurrences per label in descending count order.
// Equal counts keep first-seen order; missing labels are not counted.
func CountLabels(labels []string) []models.ClusterFrequency {
	index := make(map[string]int)
	freqs := make([]models.ClusterFrequency, 0)
	for _, label := range labels {
		if label == "" {
			continue
		}
		i, ok := index[label]
		if !ok {
			i = len(freqs)
			index[label] = i
			freqs = append(freqs, models.ClusterFrequency{Cluster: label})
		}
		freqs[i].Count++
	}
	sort.SliceStable(freqs, func(i, j int) bool {
		return freqs[i].Count > freqs[j].Count
	})
	return freqs
}

func (p *ClusterProjector) numericFeatures(df dataframe.DataFrame) []string {
	var features []string
	types := df.Types()
	for i, name := range df.Names() {
		if name == p.labelColumn || !IsNumeric(types[i]) {
			continue
		}
		features = append(features, name)
	}
	return features
}

// standardize builds the n×d z-score matrix with population standard deviation.
// Constant or unobserved features become all zero; missing cells become zero.
func standardize(df dataframe.DataFrame, features []string) *mat.Dense {
	n, d := df.Nrow(), len(features)
	z := mat.NewDense(n, d, nil)
	for j, name := range features {
		col := FloatColumn(df, name)
		observed := make([]float64, 0, n)
		for _, v := range col {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			continue
		}
		mean, variance := stat.PopMeanVariance(observed, nil)
		std := math.Sqrt(variance)
		if std == 0 || math.IsNaN(std) {
			continue
		}
		for i, v := range col {
			if math.IsNaN(v) {
				continue
			}
			z.Set(i, j, (v-mean)/std)
		}
	}
	return z
}

// projectPCA projects z onto its top two principal axes.
// Each axis is signed so its largest-magnitude loading is positive.
func projectPCA(z *mat.Dense, labels []string, features []string) *models.Projection {
	n, d := z.Dims()
	proj := &models.Projection{
		Points:   make([]models.ProjectedPoint, n),
		Features: features,
	}
	for i := range proj.Points {
		proj.Points[i].ClusterLabel = labels[i]
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(z, nil); !ok {
		return proj
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	_, k := vecs.Dims()
	if k > constants.ProjectionComponents {
		k = constants.ProjectionComponents
	}
	for j := 0; j < k; j++ {
		pivot := 0
		for i := 1; i < d; i++ {
			if math.Abs(vecs.At(i, j)) > math.Abs(vecs.At(pivot, j)) {
				pivot = i
			}
		}
		if vecs.At(pivot, j) < 0 {
			for i := 0; i < d; i++ {
				vecs.Set(i, j, -vecs.At(i, j))
			}
		}
	}

	var scores mat.Dense
	scores.Mul(z, vecs.Slice(0, d, 0, k))
	for i := 0; i < n; i++ {
		proj.Points[i].Axis1 = scores.At(i, 0)
		if k > 1 {
			proj.Points[i].Axis2 = scores.At(i, 1)
		}
	}

	total := 0.0
	for _, v := range vars {
		total += v
	}
	if total > 0 {
		for j := 0; j < k; j++ {
			proj.ExplainedVarianceRatio[j] = vars[j] / total
		}
	}
	return proj
}
