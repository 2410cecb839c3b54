package miner

import (
	"fmt"
	"sort"
)

// Rules is the output of FilterRules: only entries that passed their
// thresholds are present.
type Rules struct {
	Supports   map[Pair]float64
	Confidence map[Pair]float64
	Lifts      map[Pair]float64

	// Skipped lists directions whose confidence denominator was zero.
	Skipped []Pair
}

func newRules() *Rules {
	return &Rules{
		Supports:   make(map[Pair]float64),
		Confidence: make(map[Pair]float64),
		Lifts:      make(map[Pair]float64),
	}
}

// Metrics returns the metrics recorded for p. ok is false when p passed
// none of the filters.
func (r *Rules) Metrics(p Pair) (m RuleMetrics, ok bool) {
	s, sok := r.Supports[p]
	c, cok := r.Confidence[p]
	l, lok := r.Lifts[p]
	return RuleMetrics{Support: s, Confidence: c, Lift: l}, sok || cok || lok
}

// Support returns c / n * 100.
func Support(c, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("support: %w", ErrZeroDenominator)
	}
	return float64(c) / float64(n) * 100, nil
}

// Confidence returns c / countA * 100, the percentage of transactions
// containing A that also contain B.
func Confidence(c, countA int) (float64, error) {
	if countA <= 0 {
		return 0, fmt.Errorf("confidence: %w", ErrZeroDenominator)
	}
	return float64(c) / float64(countA) * 100, nil
}

// Lift returns (c/n) / ((countA/n) * (countB/n)), computed as
// c*n / (countA*countB).
func Lift(c, n, countA, countB int) (float64, error) {
	if n <= 0 || countA <= 0 || countB <= 0 {
		return 0, fmt.Errorf("lift: %w", ErrZeroDenominator)
	}
	return float64(c) * float64(n) / (float64(countA) * float64(countB)), nil
}

// FilterRules converts raw counts into metrics and keeps the entries that
// pass the thresholds:
//
//   - support(A,B) >= th.Support, emitted under both directions
//   - confidence(A->B) >= th.Confidence, each direction independently
//   - lift for a direction iff its confidence passed and lift > 1
//
// Each unordered pair is visited once and both directions are computed
// from that visit. n is the total transaction count.
func FilterRules(pairs PairCount, items ItemCount, n int, th Thresholds) (*Rules, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, ErrEmptyInput
	}

	rules := newRules()
	for _, p := range unorderedPairs(pairs) {
		c := pairs[p]
		rev := p.Reverse()

		support, _ := Support(c, n)
		if support >= th.Support {
			rules.Supports[p] = support
			rules.Supports[rev] = support
		}

		lift, liftErr := Lift(c, n, items[p.A], items[p.B])

		if conf, err := Confidence(c, items[p.A]); err != nil {
			rules.Skipped = append(rules.Skipped, p)
		} else if conf >= th.Confidence {
			rules.Confidence[p] = conf
			if liftErr == nil && lift > 1 {
				rules.Lifts[p] = lift
			}
		}

		if conf, err := Confidence(c, items[p.B]); err != nil {
			rules.Skipped = append(rules.Skipped, rev)
		} else if conf >= th.Confidence {
			rules.Confidence[rev] = conf
			if liftErr == nil && lift > 1 {
				rules.Lifts[rev] = lift
			}
		}
	}

	return rules, nil
}

// unorderedPairs returns one key per unordered pair, sorted so iteration
// is deterministic. When only one direction is present in the table that
// direction is used.
func unorderedPairs(pairs PairCount) []Pair {
	keys := make([]Pair, 0, len(pairs)/2+1)
	for p := range pairs {
		if p.A == p.B {
			continue
		}
		canon := p.Canonical()
		if canon != p {
			if _, ok := pairs[canon]; ok {
				continue
			}
		}
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	return keys
}
