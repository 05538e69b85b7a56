package service

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/riskboard/internal/domain/models"
)

// NumericColumns lists the int and float columns of df in column order.
func NumericColumns(df dataframe.DataFrame) []string {
	if df.Err != nil {
		return nil
	}
	var cols []string
	types := df.Types()
	for i, name := range df.Names() {
		if IsNumeric(types[i]) {
			cols = append(cols, name)
		}
	}
	return cols
}

// Describe summarizes every numeric column of df.
// std is the sample standard deviation and quantiles interpolate linearly between order statistics.
func Describe(df dataframe.DataFrame) []models.ColumnSummary {
	cols := NumericColumns(df)
	out := make([]models.ColumnSummary, 0, len(cols))
	for _, name := range cols {
		values := observed(FloatColumn(df, name))
		summary := models.ColumnSummary{Column: name, Count: len(values)}
		if len(values) == 0 {
			nan := math.NaN()
			summary.Mean, summary.Std, summary.Min, summary.Max = nan, nan, nan, nan
			summary.Q25, summary.Median, summary.Q75 = nan, nan, nan
			out = append(out, summary)
			continue
		}
		sort.Float64s(values)
		summary.Mean, summary.Std = stat.MeanStdDev(values, nil)
		summary.Min = floats.Min(values)
		summary.Max = floats.Max(values)
		summary.Q25 = Quantile(values, 0.25)
		summary.Median = Quantile(values, 0.5)
		summary.Q75 = Quantile(values, 0.75)
		out = append(out, summary)
	}
	return out
}

// Quantile returns the p-quantile of sorted by linear interpolation at (n-1)·p.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// SampleOrHead returns a preview of at most n rows.
// Tables no larger than n come back whole; tables with at least threshold rows are sampled
// with rng; anything in between returns the first n rows.
func SampleOrHead(df dataframe.DataFrame, n, threshold int, rng *rand.Rand) dataframe.DataFrame {
	if IsEmptyFrame(df) || df.Nrow() <= n {
		return df
	}
	if df.Nrow() >= threshold && rng != nil {
		return df.Subset(rng.Perm(df.Nrow())[:n])
	}
	return Head(df, n)
}

// Head returns the first n rows of df.
func Head(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if IsEmptyFrame(df) || df.Nrow() <= n {
		return df
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return df.Subset(idx)
}

func observed(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
