// Package miner computes pairwise association rules (support, confidence,
// lift) over team compositions, with a win-rate overlay.
//
// Everything in this package is pure computation. Count tables are built
// fresh for every call and returned by value, so shards of a transaction
// set can be aggregated independently and merged by addition.
package miner

// Item is an opaque identifier, e.g. a champion name.
type Item string

// Transaction is one team composition. The aggregator only reads the
// items and the outcome through these accessors, so the underlying row
// layout can change without touching the counting logic.
type Transaction interface {
	Items() []Item
	Won() bool
}

// Basket is the minimal Transaction implementation.
type Basket struct {
	Members []Item
	Win     bool
}

// Items returns the basket members.
func (b Basket) Items() []Item { return b.Members }

// Won reports whether the basket's team won.
func (b Basket) Won() bool { return b.Win }

// Pair is a directed pair key. (A,B) and (B,A) are distinct keys.
type Pair struct {
	A Item
	B Item
}

// Reverse returns the pair with its direction flipped.
func (p Pair) Reverse() Pair {
	return Pair{A: p.B, B: p.A}
}

// Canonical returns the direction with the lexically smaller item first.
func (p Pair) Canonical() Pair {
	if p.B < p.A {
		return p.Reverse()
	}
	return p
}

// String formats the pair as "A -> B".
func (p Pair) String() string {
	return string(p.A) + " -> " + string(p.B)
}

// ItemCount maps an item to the number of transactions containing it.
type ItemCount map[Item]int

// PairCount maps a directed pair to the number of transactions containing
// both items. Both directions are stored with the same value.
type PairCount map[Pair]int

// PairWinCount maps a directed pair to the number of winning transactions
// containing both items. Directed and duplicated like PairCount.
type PairWinCount map[Pair]int

// RuleMetrics holds the three metrics for one directed pair.
type RuleMetrics struct {
	Support    float64 // percentage of all transactions containing both
	Confidence float64 // percentage of A transactions that also contain B
	Lift       float64 // observed / expected co-occurrence
}

// Thresholds are the inclusion cut-offs, both percentages in [0, 100].
type Thresholds struct {
	Support    float64
	Confidence float64
}
