package service

import (
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
)

// FilterStartups keeps the rows of a scored table that match every set criterion.
// Criteria on columns the table lacks are ignored. Rows without a score fail a risk range.
func FilterStartups(df dataframe.DataFrame, f models.StartupFilter) dataframe.DataFrame {
	if IsEmptyFrame(df) {
		return df
	}

	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}

	matchAny := func(column string, allowed []string) {
		if len(allowed) == 0 || !HasColumn(df, column) {
			return
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[strings.ToLower(v)] = true
		}
		for i, v := range LabelStrings(df.Col(column)) {
			if !set[strings.ToLower(v)] {
				keep[i] = false
			}
		}
	}
	matchAny(constants.ColumnSector, f.Sectors)
	matchAny(constants.ColumnStage, f.Stages)
	matchAny(constants.ColumnCountry, f.Countries)

	if (f.MinRisk != nil || f.MaxRisk != nil) && HasColumn(df, constants.ColumnRiskScore) {
		for i, v := range FloatColumn(df, constants.ColumnRiskScore) {
			if math.IsNaN(v) ||
				(f.MinRisk != nil && v < *f.MinRisk) ||
				(f.MaxRisk != nil && v > *f.MaxRisk) {
				keep[i] = false
			}
		}
	}

	idx := make([]int, 0, len(keep))
	for i, ok := range keep {
		if ok {
			idx = append(idx, i)
		}
	}
	switch len(idx) {
	case df.Nrow():
		return df
	case 0:
		return EmptyLike(df)
	}
	return df.Subset(idx)
}

// DistinctValues returns the sorted non-missing values of a categorical column.
func DistinctValues(df dataframe.DataFrame, column string) []string {
	if IsEmptyFrame(df) || !HasColumn(df, column) {
		return []string{}
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, v := range LabelStrings(df.Col(column)) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ComputeKPIs returns the average risk, row count and median revenue of df.
func ComputeKPIs(df dataframe.DataFrame, aliases models.ColumnAliases) models.RiskKPIs {
	kpis := models.RiskKPIs{}
	if IsEmptyFrame(df) {
		return kpis
	}
	kpis.Count = df.Nrow()

	if HasColumn(df, constants.ColumnRiskScore) {
		if scores := observed(FloatColumn(df, constants.ColumnRiskScore)); len(scores) > 0 {
			sum := 0.0
			for _, v := range scores {
				sum += v
			}
			avg := sum / float64(len(scores))
			kpis.AverageRisk = &avg
		}
	}

	if name, ok := aliases.Resolve(df.Names(), constants.ColumnRevenue); ok {
		if revenue := observed(FloatColumn(df, name)); len(revenue) > 0 {
			sort.Float64s(revenue)
			median := Quantile(revenue, 0.5)
			kpis.MedianRevenue = &median
		}
	}
	return kpis
}

// RiskBySector averages risk per sector, highest first. Sectors with no scored rows are dropped.
func RiskBySector(df dataframe.DataFrame) []models.SectorRisk {
	out := make([]models.SectorRisk, 0)
	if IsEmptyFrame(df) || !HasColumn(df, constants.ColumnSector) || !HasColumn(df, constants.ColumnRiskScore) {
		return out
	}

	sectors := LabelStrings(df.Col(constants.ColumnSector))
	scores := FloatColumn(df, constants.ColumnRiskScore)
	index := make(map[string]int)
	sums := make([]float64, 0)
	for i, sector := range sectors {
		if sector == "" || math.IsNaN(scores[i]) {
			continue
		}
		j, ok := index[sector]
		if !ok {
			j = len(out)
			index[sector] = j
			out = append(out, models.SectorRisk{Sector: sector})
			sums = append(sums, 0)
		}
		sums[j] += scores[i]
		out[j].Count++
	}
	for j := range out {
		out[j].AverageRisk = sums[j] / float64(out[j].Count)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageRisk > out[j].AverageRisk
	})
	return out
}

// RevenueRiskPoints returns the (revenue, risk) pairs of the scored rows, tagged with sector and
// head count. Rows lacking revenue or a score are skipped; a table without revenue yields none.
func RevenueRiskPoints(df dataframe.DataFrame, aliases models.ColumnAliases) []models.RevenueRiskPoint {
	out := make([]models.RevenueRiskPoint, 0)
	if IsEmptyFrame(df) || !HasColumn(df, constants.ColumnRiskScore) {
		return out
	}
	revenueCol, ok := aliases.Resolve(df.Names(), constants.ColumnRevenue)
	if !ok {
		return out
	}

	revenue := FloatColumn(df, revenueCol)
	scores := FloatColumn(df, constants.ColumnRiskScore)
	employees := nanSlice(df.Nrow())
	if col, ok := aliases.Resolve(df.Names(), constants.ColumnEmployees); ok {
		employees = FloatColumn(df, col)
	}
	sectors := make([]string, df.Nrow())
	if HasColumn(df, constants.ColumnSector) {
		sectors = LabelStrings(df.Col(constants.ColumnSector))
	}

	for i := range scores {
		if math.IsNaN(revenue[i]) || math.IsNaN(scores[i]) {
			continue
		}
		out = append(out, models.RevenueRiskPoint{
			Sector:    sectors[i],
			Revenue:   revenue[i],
			Risk:      scores[i],
			Employees: employees[i],
		})
	}
	return out
}

// RiskHistogram splits the observed risk scores into equal-width bins spanning their range.
func RiskHistogram(df dataframe.DataFrame, bins int) []models.HistogramBin {
	out := make([]models.HistogramBin, 0)
	if IsEmptyFrame(df) || !HasColumn(df, constants.ColumnRiskScore) || bins <= 0 {
		return out
	}
	scores := observed(FloatColumn(df, constants.ColumnRiskScore))
	if len(scores) == 0 {
		return out
	}

	lo, hi := scores[0], scores[0]
	for _, v := range scores {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return append(out, models.HistogramBin{Lower: lo, Upper: hi, Count: len(scores)})
	}

	width := (hi - lo) / float64(bins)
	out = make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, v := range scores {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// SortByRisk orders rows by risk_score descending; unscored rows go last, ties keep input order.
func SortByRisk(df dataframe.DataFrame) dataframe.DataFrame {
	if IsEmptyFrame(df) || !HasColumn(df, constants.ColumnRiskScore) {
		return df
	}
	scores := FloatColumn(df, constants.ColumnRiskScore)
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := scores[idx[a]], scores[idx[b]]
		if math.IsNaN(sb) {
			return !math.IsNaN(sa)
		}
		if math.IsNaN(sa) {
			return false
		}
		return sa > sb
	})
	return df.Subset(idx)
}

// FindRow returns the index of the first row whose column equals value.
func FindRow(df dataframe.DataFrame, column, value string) (int, bool) {
	if IsEmptyFrame(df) || !HasColumn(df, column) {
		return 0, false
	}
	for i, v := range LabelStrings(df.Col(column)) {
		if v == value {
			return i, true
		}
	}
	return 0, false
}
