package service

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// IsEmptyFrame reports whether df is unusable or has no rows.
// Failed loads surface as frames with Err set; both count as empty.
func IsEmptyFrame(df dataframe.DataFrame) bool {
	return df.Err != nil || df.Nrow() == 0
}

// HasColumn reports whether df has a column named exactly name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	if df.Err != nil {
		return false
	}
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// FloatColumn returns the column as float64 values; missing cells are NaN.
func FloatColumn(df dataframe.DataFrame, name string) []float64 {
	return df.Col(name).Float()
}

// IsNumeric reports whether a series holds numbers. Booleans are not numeric.
func IsNumeric(t series.Type) bool {
	return t == series.Int || t == series.Float
}

// LabelStrings renders a categorical column as strings.
// Integral floats print without a fractional part; missing cells become "".
func LabelStrings(s series.Series) []string {
	out := make([]string, s.Len())
	if s.Type() == series.Float {
		for i, v := range s.Float() {
			if math.IsNaN(v) {
				continue
			}
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		return out
	}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out
}

// EmptyLike returns a zero-row frame with the columns of df plus extra.
// A frame carrying a load error contributes no columns.
func EmptyLike(df dataframe.DataFrame, extra ...string) dataframe.DataFrame {
	var cols []series.Series
	seen := make(map[string]bool)
	if df.Err == nil {
		names := df.Names()
		types := df.Types()
		for i, name := range names {
			cols = append(cols, series.New([]string{}, types[i], name))
			seen[name] = true
		}
	}
	for _, name := range extra {
		if seen[name] {
			continue
		}
		cols = append(cols, series.New([]float64{}, series.Float, name))
		seen[name] = true
	}
	if len(cols) == 0 {
		return dataframe.DataFrame{}
	}
	return dataframe.New(cols...)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
