package analyzer

import (
	"log/slog"

	"github.com/blackwell-systems/champrules/internal/store"
)

// Analyzer mines association rules over the teams held in a store.
type Analyzer struct {
	store  *store.Store
	logger *slog.Logger

	// Shards > 1 aggregates teams in parallel.
	Shards int
}

// New creates a new Analyzer instance with the given store.
func New(store *store.Store) *Analyzer {
	return &Analyzer{store: store, logger: slog.Default(), Shards: 1}
}

// SetLogger replaces the analyzer's logger.
func (a *Analyzer) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}
