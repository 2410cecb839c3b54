package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
)

var (
	mineFilter   filterFlags
	mineParams   miningFlags
	mineNoRecord bool

	mineCmd = &cobra.Command{
		Use:   "mine",
		Short: "Mine association rules from imported teams",
		Long: `Mine champion pair rules from the imported teams.

For every ordered pair A -> B:
  support     percentage of teams containing both A and B
  confidence  percentage of teams with A that also have B
  lift        how much more often A and B appear together than if picks
              were independent (shown only above 1)
  win rate    share of teams with both A and B that won

A rule is listed when its support or its confidence passes the threshold.
Metrics that did not pass are shown as a dash. Every run is recorded and
listed by 'champrules status'.`,
		Example: `  # Defaults from the config file
  champrules mine

  # Stricter thresholds, top 10 by lift
  champrules mine --support 2 --confidence 60 --sort lift --limit 10

  # Only one import, pairs with at least 50 games
  champrules mine --import 0b4f1c9e --min-games 50

  # Count teams on 4 goroutines
  champrules mine --shards 4`,
		Args: cobra.NoArgs,
		RunE: runMine,
	}
)

func init() {
	mineFilter.register(mineCmd)
	mineParams.register(mineCmd)
	mineCmd.Flags().BoolVar(&mineNoRecord, "no-record", false, "do not record this run")
}

func runMine(cmd *cobra.Command, args []string) error {
	req, shards, err := mineParams.request(cmd)
	if err != nil {
		return err
	}
	req.Record = !mineNoRecord

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	req.Filter, err = mineFilter.resolve(st)
	if err != nil {
		return err
	}

	report, err := newAnalyzer(st, shards).Mine(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderRuleSummary(report))
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderRuleTable(report.Rules))
	return nil
}
