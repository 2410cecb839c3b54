package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
	"github.com/blackwell-systems/champrules/internal/scanner"
	"github.com/blackwell-systems/champrules/internal/store"
)

var (
	importRegion  string
	importQueues  []int
	importReplace bool
	importQuiet   bool

	importCmd = &cobra.Command{
		Use:   "import <matches.csv|dir>",
		Short: "Import match files into the database",
		Long: `Import match rows into the champrules database.

Each row is split into two teams of five champions. Rows from queues other
than the selected ones are dropped and malformed rows are skipped; both are
counted in the import summary.

When given a directory, every *.csv file in it is imported. Without
--region, each file's region is taken from its name (kr.csv -> kr).`,
		Example: `  # Import one file
  champrules import matches/kr.csv --region kr

  # Ranked solo queue only
  champrules import matches/kr.csv --queues 420

  # Re-import a file that was updated, dropping the old import
  champrules import matches/kr.csv --replace

  # Import a whole directory
  champrules import matches/`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().StringVar(&importRegion, "region", "", "region tag for the import (default from config or file name)")
	importCmd.Flags().IntSliceVar(&importQueues, "queues", nil, "queue IDs to keep (default from config: 400,420,430,440)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace earlier imports of the same file")
	importCmd.Flags().BoolVar(&importQuiet, "quiet", false, "suppress output")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist", path)
		}
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c := currentConfig().Ingest
	opts := scanner.ImportOptions{
		Region:  strings.ToLower(c.Region),
		Queues:  c.Queues,
		Replace: importReplace,
	}
	if cmd.Flags().Changed("region") {
		opts.Region = strings.ToLower(importRegion)
	}
	if cmd.Flags().Changed("queues") {
		opts.Queues = importQueues
	}

	sc := scanner.New(st)
	out := cmd.OutOrStdout()

	if info.IsDir() {
		imports, err := importDir(cmd.Context(), sc, path, opts)
		if err != nil {
			return err
		}
		if !importQuiet {
			total := 0
			for _, imp := range imports {
				total += imp.TeamCount
			}
			fmt.Fprintf(out, "✓ Imported %d teams from %d files\n\n", total, len(imports))
			fmt.Fprint(out, output.RenderImportTable(imports))
		}
		return nil
	}

	var spinner *output.Spinner
	if !importQuiet {
		spinner = output.NewSpinner(fmt.Sprintf("Reading %s", filepath.Base(path)))
		spinner.SetWriter(cmd.ErrOrStderr())
		spinner.Start()
		opts.Progress = func(rows int) {
			if rows%5000 == 0 {
				spinner.UpdateMessage(fmt.Sprintf("Reading %s (%d rows)", filepath.Base(path), rows))
			}
		}
	}

	imp, err := sc.ImportFile(path, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if !importQuiet {
		printImportSummary(cmd, imp)
	}
	return nil
}

// importDir imports every match file in dir, showing a progress bar
// while the parsed files are stored.
func importDir(ctx context.Context, sc *scanner.Scanner, dir string, opts scanner.ImportOptions) ([]*store.Import, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}

	var bar *output.ProgressBar
	if !importQuiet && len(files) > 0 {
		bar = output.NewProgress(len(files), "Importing match files")
		opts.Stored = func(*store.Import) { bar.Increment() }
	}

	imports, err := sc.ImportDir(ctx, dir, opts)
	if bar != nil && err == nil {
		bar.Finish()
	}
	return imports, err
}

func printImportSummary(cmd *cobra.Command, imp *store.Import) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Imported %d teams from %s\n", imp.TeamCount, imp.Source)
	fmt.Fprintf(out, "  Import ID: %s\n", imp.ID)
	if imp.Region != "" {
		fmt.Fprintf(out, "  Region:    %s\n", imp.Region)
	}
	if imp.FilteredRows > 0 {
		fmt.Fprintf(out, "  Filtered:  %d rows from other queues\n", imp.FilteredRows)
	}
	if imp.SkippedRows > 0 {
		fmt.Fprintf(out, "  Skipped:   %d malformed rows\n", imp.SkippedRows)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next: champrules mine")
}
