package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/pkg/constants"
)

func newSampleCommand() *cobra.Command {
	var (
		n      int
		seed   int64
		output string
		score  bool
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a deterministic synthetic startup table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 || n > constants.MaxSampleSize {
				return fmt.Errorf("-n must be between 1 and %d", constants.MaxSampleSize)
			}
			df := domainservice.GenerateStartups(n, seed)
			if score {
				df = domainservice.NewRiskScorer().Score(df)
			}
			if output == "" {
				return printFrame(cmd.OutOrStdout(), df)
			}
			if err := writeFrame(output, df); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d startups to %s\n", df.Nrow(), output)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "n", "n", constants.DefaultSampleSize, "number of startups")
	cmd.Flags().Int64Var(&seed, "seed", constants.DefaultSeed, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this .csv or .xlsx file instead of stdout")
	cmd.Flags().BoolVar(&score, "score", false, "add the risk_score column")
	return cmd
}
