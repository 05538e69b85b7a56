package dto

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// TableDTO is a JSON rendering of a table. Missing cells are null.
type TableDTO struct {
	Columns  []string                 `json:"columns"`
	Rows     []map[string]interface{} `json:"rows"`
	RowCount int                      `json:"row_count"`
}

// NewTableDTO renders every row of df.
func NewTableDTO(df dataframe.DataFrame) TableDTO {
	t := TableDTO{Columns: []string{}, Rows: []map[string]interface{}{}}
	if df.Err != nil {
		return t
	}
	t.Columns = df.Names()
	cols := make([]series.Series, len(t.Columns))
	for j, name := range t.Columns {
		cols[j] = df.Col(name)
	}
	for i := 0; i < df.Nrow(); i++ {
		t.Rows = append(t.Rows, rowOf(t.Columns, cols, i))
	}
	t.RowCount = len(t.Rows)
	return t
}

// NewTableDTOPtr is NewTableDTO for optional fields.
func NewTableDTOPtr(df dataframe.DataFrame) *TableDTO {
	t := NewTableDTO(df)
	return &t
}

// RowDTO renders row i of df.
func RowDTO(df dataframe.DataFrame, i int) map[string]interface{} {
	names := df.Names()
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = df.Col(name)
	}
	return rowOf(names, cols, i)
}

func rowOf(names []string, cols []series.Series, i int) map[string]interface{} {
	row := make(map[string]interface{}, len(names))
	for j, col := range cols {
		row[names[j]] = cellValue(col.Elem(i), col.Type())
	}
	return row
}

func cellValue(e series.Element, t series.Type) interface{} {
	if e.IsNA() {
		return nil
	}
	switch t {
	case series.Float:
		return FloatPtr(e.Float())
	case series.Int:
		if v, err := e.Int(); err == nil {
			return v
		}
		return nil
	case series.Bool:
		if v, err := e.Bool(); err == nil {
			return v
		}
		return nil
	default:
		return e.String()
	}
}

// FloatPtr returns nil for NaN and infinities, which JSON cannot carry.
func FloatPtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Round1 rounds a present value to one decimal.
func Round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
