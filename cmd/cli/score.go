package cli

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/internal/infrastructure/datastore"
	"github.com/turtacn/riskboard/pkg/constants"
)

func newScoreCommand() *cobra.Command {
	var (
		output  string
		missing string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "score <file.csv>",
		Short: "Add risk_score to a startup CSV",
		Long: `score reads a startup table, adds the composite risk_score column and either prints
the riskiest rows or writes the scored table to --output (.csv or .xlsx).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			policy := cfg.Scoring.Policy()
			if cmd.Flags().Changed("missing") {
				policy = constants.MissingPolicy(strings.ToLower(missing))
			}
			if policy != constants.MissingPolicyPropagate && policy != constants.MissingPolicyNeutral {
				return fmt.Errorf("unknown missing-value policy %q (want propagate or neutral)", policy)
			}

			loader := datastore.NewLoader(toolLogger(cfg), datastore.NopRecorder(), 1)
			df := loader.LoadCSV(cmd.Context(), args[0])
			if domainservice.IsEmptyFrame(df) {
				return fmt.Errorf("%s: no rows could be read", args[0])
			}

			scored := domainservice.NewRiskScorer(domainservice.WithMissingPolicy(policy)).Score(df)
			if output != "" {
				if err := writeFrame(output, scored); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scored %d rows into %s\n", scored.Nrow(), output)
				return nil
			}
			return printScored(cmd, scored, limit)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the scored table to this .csv or .xlsx file")
	cmd.Flags().StringVar(&missing, "missing", string(constants.MissingPolicyPropagate), "missing-value policy: propagate or neutral")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPreviewRows, "rows to print, riskiest first")
	return cmd
}

func printScored(cmd *cobra.Command, scored dataframe.DataFrame, limit int) error {
	out := cmd.OutOrStdout()
	kpis := domainservice.ComputeKPIs(scored, domainservice.NewRiskScorer().Aliases())
	avg := "N/A"
	if kpis.AverageRisk != nil {
		avg = fmt.Sprintf("%.1f", *kpis.AverageRisk)
	}
	fmt.Fprintf(out, "Startups: %d  Average risk: %s\n\n", kpis.Count, avg)
	return printFrame(out, domainservice.Head(domainservice.SortByRisk(scored), limit))
}
