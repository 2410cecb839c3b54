package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/analyzer"
	"github.com/blackwell-systems/champrules/internal/output"
	"github.com/blackwell-systems/champrules/internal/scanner"
	"github.com/blackwell-systems/champrules/internal/store"
	"github.com/blackwell-systems/champrules/internal/watcher"
)

var (
	watchParams   miningFlags
	watchRegion   string
	watchDebounce time.Duration
	watchRescan   time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch <matches.csv>",
		Short: "Re-import and re-mine a match file whenever it changes",
		Long: `Watch a match file and keep its import current.

The file is imported immediately, replacing earlier imports of the same
file, and mined. Every time the file changes and then stays quiet for the
debounce interval it is imported and mined again. Press Ctrl+C to stop.`,
		Example: `  # Follow the extractor's output
  champrules watch matches/kr.csv --region kr

  # Top 10 by lift after each update, re-importing every 10 minutes as well
  champrules watch matches/kr.csv --sort lift --limit 10 --rescan 10m`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchParams.register(watchCmd)
	watchCmd.Flags().StringVar(&watchRegion, "region", "", "region tag for the import")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-importing (default from config: 2s)")
	watchCmd.Flags().DurationVar(&watchRescan, "rescan", 0, "also re-import on this interval, 0 disables")
}

func runWatch(cmd *cobra.Command, args []string) error {
	req, shards, err := watchParams.request(cmd)
	if err != nil {
		return err
	}
	req.Record = true

	c := currentConfig()
	debounce, err := c.DebounceInterval()
	if err != nil {
		return err
	}
	rescan, err := c.RescanInterval()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debounce") {
		debounce = watchDebounce
	}
	if cmd.Flags().Changed("rescan") {
		rescan = watchRescan
	}

	importOpts := scanner.ImportOptions{
		Region: strings.ToLower(c.Ingest.Region),
		Queues: c.Ingest.Queues,
	}
	if cmd.Flags().Changed("region") {
		importOpts.Region = strings.ToLower(watchRegion)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	w, err := watcher.New(scanner.New(st), newAnalyzer(st, shards), args[0], watcher.Options{
		Import:   importOpts,
		Mine:     req,
		Debounce: debounce,
		Rescan:   rescan,
		OnReport: func(imp *store.Import, report *analyzer.Report) {
			fmt.Fprintf(out, "[%s] imported %d teams (%s)\n",
				time.Now().Format("15:04:05"), imp.TeamCount, output.ShortID(imp.ID))
			fmt.Fprint(out, output.RenderRuleSummary(report))
			fmt.Fprintln(out)
			fmt.Fprint(out, output.RenderRuleTable(report.Rules))
			fmt.Fprintln(out)
		},
	})
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n\n", w.Path())
	if err := w.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Stopped after %d imports\n", w.Imports())
	return nil
}
