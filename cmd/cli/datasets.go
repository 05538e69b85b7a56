package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appservice "github.com/turtacn/riskboard/internal/application/service"
	"github.com/turtacn/riskboard/internal/infrastructure/datastore"
)

func newDatasetsCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the CSV datasets of the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Data.Dir = dir
			}
			log := toolLogger(cfg)
			loader := datastore.NewLoader(log, datastore.NopRecorder(), cfg.Data.LoadConcurrency)
			cache := datastore.NewTableCache(loader, cfg.Cache.TTL, cfg.Cache.CleanupInterval, nil)
			store := datastore.NewStore(cfg.Data.Dir, cache, cfg.Data.LoadConcurrency)

			resp, err := appservice.NewDatasetAppService(store, appservice.OptionsFromConfig(cfg), log).ListDatasets(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Datasets) == 0 {
				fmt.Fprintf(out, "No CSV datasets in %s\n", resp.Dir)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "name\trows\tcolumns\tbytes\tmodified")
			for _, d := range resp.Datasets {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", d.Name, d.Rows, d.Columns, d.Size, d.ModTime.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "data directory (default data.dir)")
	return cmd
}
