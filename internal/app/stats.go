package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
)

var (
	statsFilter filterFlags
	statsLimit  int

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show pick and win rates per champion",
		Long: `Show how often each champion was picked and how often its team won,
most picked first.`,
		Example: `  champrules stats
  champrules stats --region kr --limit 20`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}
)

func init() {
	statsFilter.register(statsCmd)
	statsCmd.Flags().IntVar(&statsLimit, "limit", 0, "maximum champions shown, 0 for all")
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must not be negative)", statsLimit)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filter, err := statsFilter.resolve(st)
	if err != nil {
		return err
	}

	stats, teams, err := newAnalyzer(st, 1).ChampionStats(filter)
	if err != nil {
		return err
	}
	if statsLimit > 0 && len(stats) > statsLimit {
		stats = stats[:statsLimit]
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderChampionTable(stats, teams))
	return nil
}
