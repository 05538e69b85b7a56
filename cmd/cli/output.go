package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/turtacn/riskboard/internal/infrastructure/export"
)

// printFrame writes df as an aligned text table.
func printFrame(w io.Writer, df dataframe.DataFrame) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	names := df.Names()
	fmt.Fprintln(tw, strings.Join(names, "\t"))

	cols := make([]series.Series, len(names))
	for j, name := range names {
		cols[j] = df.Col(name)
	}
	cells := make([]string, len(cols))
	for i := 0; i < df.Nrow(); i++ {
		for j, col := range cols {
			cells[j] = export.CellString(col, i)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// writeFrame saves df to path in the format named by its extension.
func writeFrame(path string, df dataframe.DataFrame) error {
	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	data, err := export.Encode(df, format)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
