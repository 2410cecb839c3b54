package watcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/champrules/internal/store"
)

// setupTestStore creates an in-memory SQLite store for tests and registers
// cleanup with t.Cleanup so callers don't need explicit defer.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	require.NoError(t, err, "setupTestStore: open")
	require.NoError(t, st.CreateSchema(), "setupTestStore: schema")
	t.Cleanup(func() { st.Close() })
	return st
}
