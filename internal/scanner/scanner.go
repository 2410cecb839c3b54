package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/champrules/internal/ingest"
	"github.com/blackwell-systems/champrules/internal/store"
)

// Scanner loads match files into the store.
type Scanner struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a new Scanner instance with the given store.
func New(store *store.Store) *Scanner {
	return &Scanner{store: store, logger: slog.Default()}
}

// SetLogger replaces the scanner's logger.
func (s *Scanner) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// ImportOptions controls a single import.
type ImportOptions struct {
	Region string
	Queues []int

	// Replace drops earlier imports of the same file first.
	Replace bool

	// Progress is passed through to the parser.
	Progress func(rows int)

	// Stored, if set, is called after each import is written.
	Stored func(imp *store.Import)
}

// ImportFile parses path and stores its teams as one import.
func (s *Scanner) ImportFile(path string, opts ImportOptions) (*store.Import, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	res, err := ingest.ParseFile(abs, ingest.Options{Queues: opts.Queues, Progress: opts.Progress})
	if err != nil {
		return nil, err
	}

	return s.save(abs, opts, res)
}

func (s *Scanner) save(source string, opts ImportOptions, res *ingest.Result) (*store.Import, error) {
	imp := &store.Import{
		Source:       source,
		Region:       opts.Region,
		SkippedRows:  res.Skipped,
		FilteredRows: res.Filtered,
	}

	var err error
	if opts.Replace {
		err = s.store.ReplaceImport(imp, res.Teams)
	} else {
		err = s.store.InsertImport(imp, res.Teams)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", source, err)
	}

	s.logger.Info("imported match file",
		"source", source,
		"import", imp.ID,
		"teams", imp.TeamCount,
		"filtered", res.Filtered,
		"skipped", res.Skipped)
	if res.Skipped > 0 {
		s.logger.Warn("skipped malformed rows", "source", source, "rows", res.Skipped)
	}
	if opts.Stored != nil {
		opts.Stored(imp)
	}

	return imp, nil
}

// ImportDir imports every *.csv file directly under dir. Files are parsed
// concurrently and stored one at a time in name order. When opts.Region is
// empty each file's region is taken from its base name, so kr.csv becomes
// region "kr". Progress is ignored.
func (s *Scanner) ImportDir(ctx context.Context, dir string, opts ImportOptions) ([]*store.Import, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read match directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list match files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no match files (*.csv) in %s", dir)
	}
	sort.Strings(paths)

	results := make([]*ingest.Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := ingest.ParseFile(p, ingest.Options{Queues: opts.Queues})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	imports := make([]*store.Import, 0, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return imports, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		fileOpts := opts
		if fileOpts.Region == "" {
			fileOpts.Region = RegionFromPath(p)
		}
		imp, err := s.save(abs, fileOpts, results[i])
		if err != nil {
			return imports, err
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

// RegionFromPath derives a region label from a match file name, e.g.
// "data/EUW1_matches.csv" -> "euw1".
func RegionFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexAny(base, "_-."); i > 0 {
		base = base[:i]
	}
	return strings.ToLower(base)
}
