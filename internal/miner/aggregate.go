package miner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Tables holds the three count tables built from one pass over a
// transaction set, plus the number of transactions seen.
type Tables struct {
	N     int
	Items ItemCount
	Pairs PairCount
	Wins  PairWinCount
}

// NewTables returns empty tables.
func NewTables() *Tables {
	return &Tables{
		Items: make(ItemCount),
		Pairs: make(PairCount),
		Wins:  make(PairWinCount),
	}
}

// Add folds a single transaction into all three tables.
func (t *Tables) Add(tx Transaction) {
	items := tx.Items()
	won := tx.Won()

	t.N++
	for _, it := range items {
		t.Items[it]++
	}
	forEachCombination(items, func(a, b Item) {
		t.Pairs[Pair{A: a, B: b}]++
		t.Pairs[Pair{A: b, B: a}]++
		if won {
			t.Wins[Pair{A: a, B: b}]++
			t.Wins[Pair{A: b, B: a}]++
		}
	})
}

// Merge adds other's counts into t. Counts are plain increments, so the
// merge order does not matter.
func (t *Tables) Merge(other *Tables) {
	if other == nil {
		return
	}
	t.N += other.N
	for k, v := range other.Items {
		t.Items[k] += v
	}
	for k, v := range other.Pairs {
		t.Pairs[k] += v
	}
	for k, v := range other.Wins {
		t.Wins[k] += v
	}
}

// forEachCombination calls fn for every unordered 2-combination of items,
// in positional order. Combinations of two equal items are skipped so a
// duplicated item never produces a self pair.
func forEachCombination(items []Item, fn func(a, b Item)) {
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if items[i] == items[j] {
				continue
			}
			fn(items[i], items[j])
		}
	}
}

// CountItems counts, for every item, the transactions it appears in. An
// item repeated inside one transaction is counted once per occurrence.
func CountItems[T Transaction](txs []T) ItemCount {
	counts := make(ItemCount)
	for _, tx := range txs {
		for _, it := range tx.Items() {
			counts[it]++
		}
	}
	return counts
}

// CountPairs counts co-occurrences for every pair of items, storing both
// directions.
func CountPairs[T Transaction](txs []T) PairCount {
	counts := make(PairCount)
	for _, tx := range txs {
		forEachCombination(tx.Items(), func(a, b Item) {
			counts[Pair{A: a, B: b}]++
			counts[Pair{A: b, B: a}]++
		})
	}
	return counts
}

// CountWinningPairs counts co-occurrences in winning transactions only.
// Losing transactions contribute nothing.
func CountWinningPairs[T Transaction](txs []T) PairWinCount {
	counts := make(PairWinCount)
	for _, tx := range txs {
		if !tx.Won() {
			continue
		}
		forEachCombination(tx.Items(), func(a, b Item) {
			counts[Pair{A: a, B: b}]++
			counts[Pair{A: b, B: a}]++
		})
	}
	return counts
}

// Aggregate builds all tables in a single sequential pass.
func Aggregate[T Transaction](txs []T) *Tables {
	t := NewTables()
	for _, tx := range txs {
		t.Add(tx)
	}
	return t
}

// AggregateSharded splits txs into at most shards contiguous parts,
// aggregates each part on its own goroutine and merges the results. Each
// shard owns its tables, so no locking is involved. The result equals
// Aggregate(txs).
func AggregateSharded[T Transaction](ctx context.Context, txs []T, shards int) (*Tables, error) {
	if shards < 1 {
		return nil, fmt.Errorf("invalid shard count: %d (must be positive)", shards)
	}
	if shards == 1 || len(txs) < 2 {
		return Aggregate(txs), nil
	}
	if shards > len(txs) {
		shards = len(txs)
	}

	parts := make([]*Tables, shards)
	size := (len(txs) + shards - 1) / shards

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * size
		hi := lo + size
		if hi > len(txs) {
			hi = len(txs)
		}
		if lo >= hi {
			parts[i] = NewTables()
			continue
		}
		i, chunk := i, txs[lo:hi]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parts[i] = Aggregate(chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate shards: %w", err)
	}

	merged := NewTables()
	for _, p := range parts {
		merged.Merge(p)
	}
	return merged, nil
}
