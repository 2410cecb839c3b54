package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/champrules/internal/analyzer"
	"github.com/blackwell-systems/champrules/internal/scanner"
	"github.com/blackwell-systems/champrules/internal/store"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 2 * time.Second

// Options configures a Watcher.
type Options struct {
	// Import is passed to the scanner. Replace is always set.
	Import scanner.ImportOptions

	// Mine is the request run after every import. Its Filter.ImportID is
	// set to the new import.
	Mine analyzer.MineRequest

	// Debounce is how long the file must be quiet before it is imported.
	Debounce time.Duration

	// Rescan, if positive, re-imports on a fixed interval even without
	// file events.
	Rescan time.Duration

	// OnReport is called after each successful import and mine.
	OnReport func(imp *store.Import, report *analyzer.Report)

	// OnError is called when an import or mine fails. The watcher keeps
	// running. Defaults to logging the error.
	OnError func(err error)
}

// Watcher keeps one match file's import current.
type Watcher struct {
	scanner  *scanner.Scanner
	analyzer *analyzer.Analyzer
	path     string
	opts     Options
	logger   *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	imports int
}

// New creates a Watcher for the match file at path.
func New(sc *scanner.Scanner, a *analyzer.Analyzer, path string, opts Options) (*Watcher, error) {
	if sc == nil {
		return nil, fmt.Errorf("scanner cannot be nil")
	}
	if a == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Rescan < 0 {
		return nil, fmt.Errorf("invalid rescan interval: %s", opts.Rescan)
	}
	opts.Import.Replace = true

	w := &Watcher{
		scanner:  sc,
		analyzer: a,
		path:     abs,
		opts:     opts,
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
	}
	if w.opts.OnError == nil {
		w.opts.OnError = func(err error) {
			w.logger.Error("watch refresh failed", "path", w.path, "error", err)
		}
	}
	return w, nil
}

// SetLogger replaces the watcher's logger.
func (w *Watcher) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Imports returns the number of successful imports so far.
func (w *Watcher) Imports() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.imports
}

// Run imports the file once, then re-imports after every settled change
// until ctx is canceled or Stop is called. Failures after the initial
// import are reported through OnError and do not end the loop.
func (w *Watcher) Run(ctx context.Context) (err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Watch the directory: editors and extractors often replace the file
	// through a rename, which drops a watch on the file itself.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	if err := w.refresh(); err != nil {
		return err
	}

	var rescan <-chan time.Time
	if w.opts.Rescan > 0 {
		ticker := time.NewTicker(w.opts.Rescan)
		defer ticker.Stop()
		rescan = ticker.C
	}

	// debounce is nil while no import is pending.
	var timer *time.Timer
	var debounce <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("match file changed", "path", w.path, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
			debounce = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-debounce:
			debounce = nil
			w.report(w.refresh())
		case <-rescan:
			w.report(w.refresh())
		}
	}
}

// Start runs the watcher on its own goroutine. Errors from the initial
// import are passed to OnError.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.report(w.Run(ctx))
	}()
}

// Stop ends Run and waits for a goroutine started with Start. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// relevant reports whether event touches the watched file in a way that
// may change its contents.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// refresh re-imports the file and mines the new import.
func (w *Watcher) refresh() error {
	imp, err := w.scanner.ImportFile(w.path, w.opts.Import)
	if err != nil {
		return fmt.Errorf("import %s: %w", w.path, err)
	}

	w.mu.Lock()
	w.imports++
	w.mu.Unlock()

	req := w.opts.Mine
	req.Filter.ImportID = imp.ID
	report, err := w.analyzer.Mine(req)
	if errors.Is(err, analyzer.ErrNoTeams) {
		w.logger.Warn("import has no teams to mine", "path", w.path, "import", imp.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mine %s: %w", w.path, err)
	}

	if w.opts.OnReport != nil {
		w.opts.OnReport(imp, report)
	}
	return nil
}

func (w *Watcher) report(err error) {
	if err != nil {
		w.opts.OnError(err)
	}
}
