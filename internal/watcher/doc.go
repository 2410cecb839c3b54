// Package watcher re-imports a match file whenever it changes and mines
// the fresh import.
//
// The upstream extractor appends to or rewrites its CSV while it runs. The
// Watcher watches the file's directory with fsnotify, waits for writes to
// settle, replaces the previous import of the file and runs the analyzer
// over the new teams.
//
// Key features:
//   - fsnotify events on the parent directory, so rename-on-save is seen
//   - Debounced re-import (one import per burst of writes)
//   - Optional periodic re-import as a backup for missed events
//   - Graceful shutdown via context cancellation or Stop
//
// Example usage:
//
//	w, err := watcher.New(sc, a, "matches/kr.csv", watcher.Options{
//		Debounce: 2 * time.Second,
//		OnReport: func(imp *store.Import, r *analyzer.Report) {
//			fmt.Print(output.RenderRuleTable(r.Rules))
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher
