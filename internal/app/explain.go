package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
)

var (
	explainFilter filterFlags

	explainCmd = &cobra.Command{
		Use:   "explain <champion> <champion>",
		Short: "Show every metric for one champion pair",
		Long: `Break down one pair of champions in both directions.

Shows how often each champion was picked, how often they were picked
together against what independent picks would predict, and the support,
confidence, lift and win rate of the pair. Thresholds do not apply.
Champion names are matched case-insensitively.`,
		Example: `  champrules explain Lucian Nami
  champrules explain leesin ahri --region kr`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("explain needs two champion names, got %d", len(args))
			}
			return nil
		},
		RunE: runExplain,
	}
)

func init() {
	explainFilter.register(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filter, err := explainFilter.resolve(st)
	if err != nil {
		return err
	}

	exp, err := newAnalyzer(st, currentConfig().Mining.Shards).ExplainPair(filter, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderExplanation(exp))
	return nil
}
