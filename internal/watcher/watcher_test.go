package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/champrules/internal/analyzer"
	"github.com/blackwell-systems/champrules/internal/scanner"
	"github.com/blackwell-systems/champrules/internal/store"
)

var champs = []string{"Garen", "LeeSin", "Ahri", "Jinx", "Thresh", "Darius", "Vi", "Zed", "Ezreal", "Leona"}

func writeMatches(t *testing.T, path string, n int) {
	t.Helper()

	var b strings.Builder
	for i := 0; i < n; i++ {
		fields := []string{fmt.Sprint(i), fmt.Sprintf("KR_%d", i), "0", "CLASSIC", "MATCHED_GAME", "14.1", "11", "420"}
		for j, c := range champs {
			fields = append(fields, fmt.Sprintf("p%d", j), c, fmt.Sprint(j < 5))
		}
		b.WriteString(strings.Join(fields, ",") + "\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

type update struct {
	imp    *store.Import
	report *analyzer.Report
}

func newTestWatcher(t *testing.T, st *store.Store, path string, opts Options) (*Watcher, chan update) {
	t.Helper()

	updates := make(chan update, 16)
	opts.OnReport = func(imp *store.Import, r *analyzer.Report) {
		updates <- update{imp: imp, report: r}
	}
	if opts.Debounce == 0 {
		opts.Debounce = 50 * time.Millisecond
	}

	w, err := New(scanner.New(st), analyzer.New(st), path, opts)
	require.NoError(t, err)
	return w, updates
}

func waitUpdate(t *testing.T, updates <-chan update) update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher update")
		return update{}
	}
}

func TestNew_Validation(t *testing.T) {
	st := setupTestStore(t)
	sc, a := scanner.New(st), analyzer.New(st)

	_, err := New(nil, a, "kr.csv", Options{})
	assert.Error(t, err)

	_, err = New(sc, nil, "kr.csv", Options{})
	assert.Error(t, err)

	_, err = New(sc, a, "kr.csv", Options{Rescan: -time.Second})
	assert.Error(t, err)

	w, err := New(sc, a, "kr.csv", Options{})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(w.Path()))
	assert.Equal(t, DefaultDebounce, w.opts.Debounce)
	assert.True(t, w.opts.Import.Replace)
}

func TestRun_ReimportsOnChange(t *testing.T) {
	st := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "kr.csv")
	writeMatches(t, path, 2)

	w, updates := newTestWatcher(t, st, path, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	first := waitUpdate(t, updates)
	assert.Equal(t, 4, first.imp.TeamCount)
	assert.Equal(t, 4, first.report.Transactions)
	assert.Equal(t, first.imp.ID, first.report.Request.Filter.ImportID)

	writeMatches(t, path, 3)
	second := waitUpdate(t, updates)
	assert.Equal(t, 6, second.imp.TeamCount)
	assert.NotEqual(t, first.imp.ID, second.imp.ID)

	imports, err := st.ListImports()
	require.NoError(t, err)
	assert.Len(t, imports, 1, "re-import replaces the previous import")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, w.Imports(), 2)
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "kr.csv")
	writeMatches(t, path, 1)

	w, updates := newTestWatcher(t, st, path, Options{})
	w.Start(context.Background())
	defer w.Stop()

	waitUpdate(t, updates)

	writeMatches(t, filepath.Join(dir, "na.csv"), 1)
	select {
	case <-updates:
		t.Fatal("unexpected update for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, 1, w.Imports())
}

func TestRun_Rescan(t *testing.T) {
	st := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "kr.csv")
	writeMatches(t, path, 1)

	w, updates := newTestWatcher(t, st, path, Options{Rescan: 100 * time.Millisecond})
	w.Start(context.Background())
	defer w.Stop()

	waitUpdate(t, updates)
	waitUpdate(t, updates)
	assert.GreaterOrEqual(t, w.Imports(), 2)
}

func TestRun_InitialImportFails(t *testing.T) {
	st := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "missing.csv")

	w, _ := newTestWatcher(t, st, path, Options{})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestStart_ReportsErrors(t *testing.T) {
	st := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "missing.csv")

	errs := make(chan error, 1)
	w, _ := newTestWatcher(t, st, path, Options{OnError: func(err error) { errs <- err }})
	w.Start(context.Background())

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("expected OnError to be called")
	}
	w.Stop()
	w.Stop()
}

func TestRelevant(t *testing.T) {
	st := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "kr.csv")
	w, _ := newTestWatcher(t, st, path, Options{})

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: path + ".tmp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
