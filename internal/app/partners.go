package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
)

var (
	partnersFilter   filterFlags
	partnersLimit    int
	partnersMinGames int

	partnersCmd = &cobra.Command{
		Use:   "partners <champion>",
		Short: "List the champions most often picked with a champion",
		Long: `List the partners of one champion, ranked by confidence: the share of
teams with the champion that also had the partner.`,
		Example: `  champrules partners Thresh
  champrules partners thresh --limit 5 --min-games 30`,
		Args: cobra.ExactArgs(1),
		RunE: runPartners,
	}
)

func init() {
	partnersFilter.register(partnersCmd)
	partnersCmd.Flags().IntVar(&partnersLimit, "limit", 10, "maximum partners shown, 0 for all")
	partnersCmd.Flags().IntVar(&partnersMinGames, "min-games", 0, "hide partners seen in fewer games")
}

func runPartners(cmd *cobra.Command, args []string) error {
	if partnersLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must not be negative)", partnersLimit)
	}
	if partnersMinGames < 0 {
		return fmt.Errorf("invalid min-games: %d (must not be negative)", partnersMinGames)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filter, err := partnersFilter.resolve(st)
	if err != nil {
		return err
	}

	a := newAnalyzer(st, currentConfig().Mining.Shards)
	rules, err := a.Partners(filter, args[0], partnersMinGames, partnersLimit)
	if err != nil {
		return err
	}

	name := args[0]
	if len(rules) > 0 {
		name = string(rules[0].Pair.A)
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderPartnerTable(name, rules))
	return nil
}
