package export

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes df to a single worksheet named sheet (Sheet1 when empty).
func WriteXLSX(w io.Writer, df dataframe.DataFrame, sheet string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if sheet != "" && sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		sheet = defaultSheet
	}

	if df.Err == nil && df.Ncol() > 0 {
		names := df.Names()
		header := make([]interface{}, len(names))
		cols := make([]series.Series, len(names))
		for j, name := range names {
			header[j] = name
			cols[j] = df.Col(name)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		row := make([]interface{}, len(cols))
		for i := 0; i < df.Nrow(); i++ {
			for j, col := range cols {
				row[j] = cellValue(col, i)
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
