// Package export serializes tables as CSV or XLSX downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/turtacn/riskboard/pkg/errors"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv or xlsx, case-insensitively. An empty string is csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX):
		return FormatXLSX, nil
	default:
		return "", errors.ErrUnsupportedFormat(s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns base with the format's extension.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// Encode serializes df in format f.
func Encode(df dataframe.DataFrame, f Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatXLSX:
		err = WriteXLSX(&buf, df, "")
	default:
		err = WriteCSV(&buf, df)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes df with a header row. Floats use the shortest exact representation
// and missing cells are empty.
func WriteCSV(w io.Writer, df dataframe.DataFrame) error {
	cw := csv.NewWriter(w)
	if df.Err != nil || df.Ncol() == 0 {
		cw.Flush()
		return cw.Error()
	}
	if err := cw.Write(df.Names()); err != nil {
		return err
	}

	cols := make([]series.Series, df.Ncol())
	for j := range cols {
		cols[j] = df.Col(df.Names()[j])
	}
	record := make([]string, len(cols))
	for i := 0; i < df.Nrow(); i++ {
		for j, col := range cols {
			record[j] = CellString(col, i)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CellString renders one cell as text; missing values are empty.
func CellString(col series.Series, i int) string {
	e := col.Elem(i)
	if e.IsNA() {
		return ""
	}
	if col.Type() == series.Float {
		v := e.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return e.String()
}

// cellValue is the typed spreadsheet value of a cell; nil leaves it blank.
func cellValue(col series.Series, i int) interface{} {
	e := col.Elem(i)
	if e.IsNA() {
		return nil
	}
	switch col.Type() {
	case series.Float:
		v := e.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return nil
		}
		return v
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			return nil
		}
		return v
	default:
		return e.String()
	}
}
