package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/internal/infrastructure/datastore"
	"github.com/turtacn/riskboard/pkg/constants"
)

func newProjectCommand() *cobra.Command {
	var (
		label  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "project <file.csv>",
		Short: "Count cluster labels and project records onto two principal axes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loader := datastore.NewLoader(toolLogger(cfg), datastore.NopRecorder(), 1)
			df := loader.LoadCSV(cmd.Context(), args[0])

			projector := domainservice.NewClusterProjector(domainservice.WithLabelColumn(label))
			if !projector.CanProject(df) {
				return fmt.Errorf("%s: no rows with a %q column", args[0], projector.LabelColumn())
			}
			result := projector.Project(df)

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "cluster\tcount")
			for _, f := range result.Frequencies {
				fmt.Fprintf(tw, "%s\t%d\n", f.Cluster, f.Count)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !result.Projected() {
				fmt.Fprintln(out, result.Notice)
				return nil
			}
			p := result.Projection
			fmt.Fprintf(out, "\nExplained variance: PCA1 %.3f  PCA2 %.3f (features: %d)\n",
				p.ExplainedVarianceRatio[0], p.ExplainedVarianceRatio[1], len(p.Features))
			if output != "" {
				if err := writeFrame(output, p.Frame()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d projected points to %s\n", len(p.Points), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", constants.ColumnClusterLabel, "column holding the cluster label")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write PCA1/PCA2/cluster_label to this .csv or .xlsx file")
	return cmd
}
