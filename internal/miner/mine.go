package miner

import (
	"context"
	"fmt"
)

// Result is the output of one mining run.
type Result struct {
	Rules

	// N is the number of transactions in allTeams.
	N int

	// Items, Pairs are counted from allTeams; Wins from withWins. The raw
	// tables are exposed so callers can derive per-pair win rates.
	Items ItemCount
	Pairs PairCount
	Wins  PairWinCount
}

// WinRate returns Wins[p] / Pairs[p] as a fraction in [0, 1]. ok is false
// when the pair was never seen, which callers should report as "no data".
func (r *Result) WinRate(p Pair) (rate float64, ok bool) {
	games := r.Pairs[p]
	if games <= 0 {
		return 0, false
	}
	return float64(r.Wins[p]) / float64(games), true
}

type options struct {
	ctx    context.Context
	shards int
}

// Option configures Mine.
type Option func(*options)

// WithShards aggregates transactions across n goroutines. n <= 1 keeps
// the sequential pass.
func WithShards(n int) Option {
	return func(o *options) {
		o.shards = n
	}
}

// WithContext sets the context used by sharded aggregation.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Mine counts allTeams for support, confidence and lift, counts winning
// pairs in withWins, and filters the rules against th. Thresholds are
// validated before any counting; an empty allTeams yields ErrEmptyInput
// and no partial result.
func Mine[T Transaction](allTeams, withWins []T, th Thresholds, opts ...Option) (*Result, error) {
	o := options{ctx: context.Background(), shards: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if err := th.Validate(); err != nil {
		return nil, err
	}
	if len(allTeams) == 0 {
		return nil, ErrEmptyInput
	}

	all, err := aggregate(o, allTeams)
	if err != nil {
		return nil, fmt.Errorf("aggregate teams: %w", err)
	}
	wins, err := aggregate(o, withWins)
	if err != nil {
		return nil, fmt.Errorf("aggregate wins: %w", err)
	}

	rules, err := FilterRules(all.Pairs, all.Items, all.N, th)
	if err != nil {
		return nil, err
	}

	return &Result{
		Rules: *rules,
		N:     all.N,
		Items: all.Items,
		Pairs: all.Pairs,
		Wins:  wins.Wins,
	}, nil
}

func aggregate[T Transaction](o options, txs []T) (*Tables, error) {
	if o.shards <= 1 {
		return Aggregate(txs), nil
	}
	return AggregateSharded(o.ctx, txs, o.shards)
}
