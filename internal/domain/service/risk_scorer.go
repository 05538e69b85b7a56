package service

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
)

// RiskScorer adds a bounded composite risk score to an entity table.
// A scorer holds only configuration; Score is a pure function of its input.
type RiskScorer struct {
	policy  models.ScoringPolicy
	aliases models.ColumnAliases
	missing constants.MissingPolicy
}

// ScorerOption configures a RiskScorer.
type ScorerOption func(*RiskScorer)

// WithScorerAliases replaces the column alias table.
func WithScorerAliases(aliases models.ColumnAliases) ScorerOption {
	return func(s *RiskScorer) { s.aliases = aliases }
}

// WithMissingPolicy selects how NaN terms affect the composite.
func WithMissingPolicy(p constants.MissingPolicy) ScorerOption {
	return func(s *RiskScorer) {
		if p == constants.MissingPolicyNeutral {
			s.missing = p
			return
		}
		s.missing = constants.MissingPolicyPropagate
	}
}

// NewRiskScorer creates a scorer with the v1 weights and default aliases.
func NewRiskScorer(opts ...ScorerOption) *RiskScorer {
	s := &RiskScorer{
		policy:  models.DefaultScoringPolicy(),
		aliases: models.DefaultEntityAliases(),
		missing: constants.MissingPolicyPropagate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the weight set in use.
func (s *RiskScorer) Policy() models.ScoringPolicy {
	return s.policy
}

// Aliases returns the column alias table used to resolve input fields.
func (s *RiskScorer) Aliases() models.ColumnAliases {
	return s.aliases
}

// MissingPolicy returns the NaN handling in use.
func (s *RiskScorer) MissingPolicy() constants.MissingPolicy {
	return s.missing
}

// Score returns a copy of df with a risk_score column in [0, 100], one decimal.
// Required fields absent from df are added as all-missing columns under their canonical names.
func (s *RiskScorer) Score(df dataframe.DataFrame) dataframe.DataFrame {
	if IsEmptyFrame(df) {
		return EmptyLike(df,
			constants.ColumnRevenue, constants.ColumnEmployees, constants.ColumnFounders,
			constants.ColumnLastFunding, constants.ColumnRiskScore)
	}

	out := df.Copy()
	n := out.Nrow()

	column := func(field string) []float64 {
		if name, ok := s.aliases.Resolve(out.Names(), field); ok {
			return FloatColumn(out, name)
		}
		out = out.Mutate(series.New(nanSlice(n), series.Float, field))
		return nanSlice(n)
	}

	revenue := column(constants.ColumnRevenue)
	employees := column(constants.ColumnEmployees)
	founders := column(constants.ColumnFounders)
	funding := column(constants.ColumnLastFunding)

	for i, v := range founders {
		if math.IsNaN(v) {
			founders[i] = constants.DefaultFounders
		}
	}

	revN := normalize(log1p(revenue))
	empN := normalize(log1p(employees))
	fundN := normalize(log1p(funding))
	foundN := normalize(log1p(founders))

	scores := make([]float64, n)
	for i := range scores {
		composite := s.policy.Revenue*s.term(revN[i]) +
			s.policy.Employees*s.term(empN[i]) +
			s.policy.LastFunding*s.term(fundN[i]) +
			s.policy.Founders*s.term(foundN[i])
		scores[i] = boundScore(1.0 - composite)
	}

	return out.Mutate(series.New(scores, series.Float, constants.ColumnRiskScore))
}

// EnsureScored scores df only when risk_score is absent or entirely missing.
func (s *RiskScorer) EnsureScored(df dataframe.DataFrame) dataframe.DataFrame {
	if IsEmptyFrame(df) || !HasColumn(df, constants.ColumnRiskScore) {
		return s.Score(df)
	}
	for _, v := range FloatColumn(df, constants.ColumnRiskScore) {
		if !math.IsNaN(v) {
			return df.Copy()
		}
	}
	return s.Score(df)
}

func (s *RiskScorer) term(v float64) float64 {
	if math.IsNaN(v) && s.missing == constants.MissingPolicyNeutral {
		return constants.NeutralNormalizedValue
	}
	return v
}

func log1p(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log1p(v)
	}
	return out
}

// normalize min-max scales x to [0, 1] ignoring NaN when locating the range.
// A series without any observed value maps to the neutral constant.
func normalize(x []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	observed := false
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		observed = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(x))
	if !observed {
		for i := range out {
			out[i] = constants.NeutralNormalizedValue
		}
		return out
	}

	span := hi - lo + constants.NormalizationEpsilon
	for i, v := range x {
		out[i] = (v - lo) / span
	}
	return out
}

// boundScore scales to percent, clips and rounds half-to-even at one decimal.
func boundScore(risk float64) float64 {
	if math.IsNaN(risk) {
		return risk
	}
	v := risk * 100
	v = math.Max(constants.RiskScoreMin, math.Min(constants.RiskScoreMax, v))
	return math.RoundToEven(v*10) / 10
}
