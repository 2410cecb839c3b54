package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
	"github.com/blackwell-systems/champrules/internal/store"
)

var (
	statusRuns int

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show database contents and recent mining runs",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
)

func init() {
	statusCmd.Flags().IntVar(&statusRuns, "runs", 5, "number of recent mining runs shown")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path, err := getDBPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(out, "Database: %s (not created)\n\n", path)
		fmt.Fprintln(out, "Run 'champrules import <matches.csv>' to get started.")
		return nil
	}

	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	imports, err := st.ListImports()
	if err != nil {
		return err
	}
	teams, err := st.CountTeams(store.TeamFilter{})
	if err != nil {
		return err
	}

	regions := make(map[string]bool)
	for _, imp := range imports {
		if imp.Region != "" {
			regions[imp.Region] = true
		}
	}

	fmt.Fprintf(out, "Database: %s\n", path)
	fmt.Fprintf(out, "Imports:  %d\n", len(imports))
	fmt.Fprintf(out, "Teams:    %d\n", teams)
	fmt.Fprintf(out, "Regions:  %d\n", len(regions))

	if len(imports) > 0 {
		fmt.Fprintf(out, "Latest:   %s (%s)\n", output.ShortID(imports[0].ID), imports[0].Source)
	}

	if statusRuns > 0 {
		runs, err := st.ListRuns(statusRuns)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recent mining runs:")
		fmt.Fprint(out, output.RenderRunTable(runs))
	}
	return nil
}
