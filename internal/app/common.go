package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/analyzer"
	"github.com/blackwell-systems/champrules/internal/miner"
	"github.com/blackwell-systems/champrules/internal/store"
)

// openStore opens the database and makes sure the schema exists.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// newAnalyzer returns an analyzer using the configured shard count.
func newAnalyzer(st *store.Store, shards int) *analyzer.Analyzer {
	a := analyzer.New(st)
	a.Shards = shards
	return a
}

// filterFlags selects which stored teams a command reads.
type filterFlags struct {
	importID string
	region   string
	queue    int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.importID, "import", "", "only teams from this import (ID or unique prefix)")
	cmd.Flags().StringVar(&f.region, "region", "", "only teams from imports tagged with this region")
	cmd.Flags().IntVar(&f.queue, "queue", 0, "only teams from this queue ID (e.g. 420)")
}

// resolve turns the flags into a store filter, expanding an import ID
// prefix to the full ID.
func (f *filterFlags) resolve(st *store.Store) (store.TeamFilter, error) {
	filter := store.TeamFilter{Region: strings.ToLower(f.region), QueueID: f.queue}
	if f.queue < 0 {
		return filter, fmt.Errorf("invalid queue: %d", f.queue)
	}
	if f.importID == "" {
		return filter, nil
	}

	id, err := resolveImportID(st, f.importID)
	if err != nil {
		return filter, err
	}
	filter.ImportID = id
	return filter, nil
}

// resolveImportID finds the single import whose ID starts with prefix.
func resolveImportID(st *store.Store, prefix string) (string, error) {
	imports, err := st.ListImports()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, imp := range imports {
		if imp.ID == prefix {
			return imp.ID, nil
		}
		if strings.HasPrefix(imp.ID, prefix) {
			matches = append(matches, imp.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("import not found: %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("import ID prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// miningFlags holds the rule parameters shared by mine and watch. Unset
// flags fall back to the config file.
type miningFlags struct {
	support    float64
	confidence float64
	sortBy     string
	limit      int
	minGames   int
	shards     int
}

func (m *miningFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&m.support, "support", 0, "minimum support in percent (default from config: 1)")
	cmd.Flags().Float64Var(&m.confidence, "confidence", 0, "minimum confidence in percent (default from config: 50)")
	cmd.Flags().StringVar(&m.sortBy, "sort", "", "sort by: confidence, support, lift, winrate, games")
	cmd.Flags().IntVar(&m.limit, "limit", 0, "maximum rules shown, 0 for all (default from config: 25)")
	cmd.Flags().IntVar(&m.minGames, "min-games", 0, "hide pairs seen in fewer games")
	cmd.Flags().IntVar(&m.shards, "shards", 0, "goroutines used to count teams (default from config: 1)")
}

// request builds a MineRequest from the config, overridden by any flag
// set on cmd.
func (m *miningFlags) request(cmd *cobra.Command) (analyzer.MineRequest, int, error) {
	c := currentConfig().Mining
	flags := cmd.Flags()

	req := analyzer.MineRequest{
		Thresholds: miner.Thresholds{Support: c.Support, Confidence: c.Confidence},
		Limit:      c.Limit,
		MinGames:   c.MinGames,
	}
	sortBy := c.Sort
	shards := c.Shards

	if flags.Changed("support") {
		req.Thresholds.Support = m.support
	}
	if flags.Changed("confidence") {
		req.Thresholds.Confidence = m.confidence
	}
	if flags.Changed("sort") {
		sortBy = m.sortBy
	}
	if flags.Changed("limit") {
		req.Limit = m.limit
	}
	if flags.Changed("min-games") {
		req.MinGames = m.minGames
	}
	if flags.Changed("shards") {
		shards = m.shards
	}

	key, err := analyzer.ParseSortKey(sortBy)
	if err != nil {
		return req, 0, err
	}
	req.SortBy = key

	if err := req.Thresholds.Validate(); err != nil {
		return req, 0, err
	}
	if req.Limit < 0 {
		return req, 0, fmt.Errorf("invalid limit: %d (must not be negative)", req.Limit)
	}
	if req.MinGames < 0 {
		return req, 0, fmt.Errorf("invalid min-games: %d (must not be negative)", req.MinGames)
	}
	if shards < 1 {
		return req, 0, fmt.Errorf("invalid shards: %d (must be at least 1)", shards)
	}

	return req, shards, nil
}
