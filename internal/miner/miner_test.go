package miner

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basket(won bool, items ...Item) Basket {
	return Basket{Members: items, Win: won}
}

// randomTeams builds n teams of five distinct champions from a pool of 12.
func randomTeams(seed int64, n int) []Basket {
	pool := []Item{"Ahri", "Garen", "LeeSin", "Jinx", "Thresh", "Darius",
		"Lux", "Ezreal", "Nami", "Vi", "Zed", "Leona"}
	rng := rand.New(rand.NewSource(seed))
	teams := make([]Basket, n)
	for i := range teams {
		perm := rng.Perm(len(pool))[:5]
		members := make([]Item, 5)
		for j, idx := range perm {
			members[j] = pool[idx]
		}
		teams[i] = Basket{Members: members, Win: rng.Intn(2) == 1}
	}
	return teams
}

func TestCountItems(t *testing.T) {
	txs := []Basket{
		basket(false, "X", "Y"),
		basket(false, "X", "Y"),
		basket(false, "X", "Z"),
	}

	got := CountItems(txs)
	assert.Equal(t, ItemCount{"X": 3, "Y": 2, "Z": 1}, got)
}

func TestCountItems_DuplicateCountedPerOccurrence(t *testing.T) {
	got := CountItems([]Basket{basket(false, "X", "X")})
	assert.Equal(t, 2, got["X"])
}

func TestCountPairs_BothDirections(t *testing.T) {
	txs := []Basket{
		basket(false, "X", "Y"),
		basket(false, "X", "Y"),
		basket(false, "X", "Z"),
	}

	got := CountPairs(txs)
	assert.Equal(t, PairCount{
		{A: "X", B: "Y"}: 2,
		{A: "Y", B: "X"}: 2,
		{A: "X", B: "Z"}: 1,
		{A: "Z", B: "X"}: 1,
	}, got)
}

func TestCountPairs_CombinationCount(t *testing.T) {
	got := CountPairs([]Basket{basket(false, "A", "B", "C", "D", "E")})
	// 5 items -> 10 unordered combinations -> 20 directed keys.
	assert.Len(t, got, 20)
	for p, c := range got {
		assert.NotEqual(t, p.A, p.B)
		assert.Equal(t, 1, c)
	}
}

func TestCountPairs_NoSelfPairs(t *testing.T) {
	got := CountPairs([]Basket{basket(false, "X", "X", "Y")})
	_, self := got[Pair{A: "X", B: "X"}]
	assert.False(t, self)
	assert.Equal(t, 2, got[Pair{A: "X", B: "Y"}])
}

func TestCountPairs_SingleItemProducesNone(t *testing.T) {
	txs := []Basket{basket(true, "Solo"), basket(false)}
	assert.Empty(t, CountPairs(txs))
	assert.Equal(t, ItemCount{"Solo": 1}, CountItems(txs))
}

func TestCountWinningPairs(t *testing.T) {
	txs := []Basket{
		basket(true, "A", "B"),
		basket(false, "A", "B"),
		basket(true, "A", "C"),
	}

	got := CountWinningPairs(txs)
	assert.Equal(t, 1, got[Pair{A: "A", B: "B"}])
	assert.Equal(t, 1, got[Pair{A: "B", B: "A"}])
	assert.Equal(t, 1, got[Pair{A: "C", B: "A"}])
	assert.Len(t, got, 4)
}

func TestAggregate_MatchesIndividualCounters(t *testing.T) {
	txs := randomTeams(7, 200)

	tables := Aggregate(txs)
	assert.Equal(t, 200, tables.N)
	assert.Equal(t, CountItems(txs), tables.Items)
	assert.Equal(t, CountPairs(txs), tables.Pairs)
	assert.Equal(t, CountWinningPairs(txs), tables.Wins)
}

func TestAggregate_Empty(t *testing.T) {
	tables := Aggregate([]Basket{})
	assert.Zero(t, tables.N)
	assert.Empty(t, tables.Items)
	assert.Empty(t, tables.Pairs)
	assert.Empty(t, tables.Wins)
}

func TestAggregateSharded_EqualsSequential(t *testing.T) {
	txs := randomTeams(42, 1001)
	want := Aggregate(txs)

	for _, shards := range []int{1, 2, 3, 8, 5000} {
		got, err := AggregateSharded(context.Background(), txs, shards)
		require.NoError(t, err, "shards=%d", shards)
		assert.Equal(t, want, got, "shards=%d", shards)
	}
}

func TestAggregateSharded_InvalidShards(t *testing.T) {
	_, err := AggregateSharded(context.Background(), randomTeams(1, 3), 0)
	assert.Error(t, err)
}

func TestAggregateSharded_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateSharded(ctx, randomTeams(1, 100), 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTablesMerge_Nil(t *testing.T) {
	tables := Aggregate(randomTeams(3, 10))
	before := len(tables.Pairs)
	tables.Merge(nil)
	assert.Len(t, tables.Pairs, before)
}

func TestMetricHelpers(t *testing.T) {
	s, err := Support(2, 4)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, s, 1e-9)

	c, err := Confidence(3, 4)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, c, 1e-9)

	l, err := Lift(2, 10, 4, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l, 1e-9)

	_, err = Support(1, 0)
	assert.ErrorIs(t, err, ErrZeroDenominator)
	_, err = Confidence(1, 0)
	assert.ErrorIs(t, err, ErrZeroDenominator)
	_, err = Lift(1, 10, 0, 3)
	assert.ErrorIs(t, err, ErrZeroDenominator)
}

func TestMine_ScenarioBasic(t *testing.T) {
	txs := []Basket{
		basket(true, "X", "Y"),
		basket(false, "X", "Y"),
		basket(true, "X", "Z"),
	}

	res, err := Mine(txs, txs, Thresholds{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.N)
	assert.Equal(t, ItemCount{"X": 3, "Y": 2, "Z": 1}, res.Items)
	assert.Equal(t, 2, res.Pairs[Pair{A: "X", B: "Y"}])
	assert.Equal(t, 1, res.Pairs[Pair{A: "X", B: "Z"}])

	assert.InDelta(t, 66.6667, res.Supports[Pair{A: "X", B: "Y"}], 1e-3)
	assert.InDelta(t, 66.6667, res.Supports[Pair{A: "Y", B: "X"}], 1e-3)
	assert.InDelta(t, 66.6667, res.Confidence[Pair{A: "X", B: "Y"}], 1e-3)
	assert.InDelta(t, 100.0, res.Confidence[Pair{A: "Y", B: "X"}], 1e-9)

	// lift(X,Y) = 2*3/(3*2) = 1 and lift(X,Z) = 1*3/(3*1) = 1: neither > 1.
	assert.Empty(t, res.Lifts)
}

func TestMine_EmptyInput(t *testing.T) {
	res, err := Mine([]Basket{}, []Basket{}, Thresholds{Support: 1, Confidence: 1})
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Nil(t, res)
}

func TestMine_SingleItemTeams(t *testing.T) {
	txs := []Basket{basket(true, "Solo"), basket(false, "Solo"), basket(true, "Solo")}

	res, err := Mine(txs, txs, Thresholds{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Items["Solo"])
	assert.Empty(t, res.Pairs)
	assert.Empty(t, res.Supports)
	assert.Empty(t, res.Confidence)
	assert.Empty(t, res.Lifts)
}

func TestMine_WinRateZeroIsNotError(t *testing.T) {
	txs := []Basket{
		basket(false, "A", "B"),
		basket(false, "A", "B"),
		basket(false, "A", "B"),
		basket(false, "A", "B"),
	}

	res, err := Mine(txs, txs, Thresholds{})
	require.NoError(t, err)

	p := Pair{A: "A", B: "B"}
	assert.Equal(t, 4, res.Pairs[p])
	assert.Zero(t, res.Wins[p])

	rate, ok := res.WinRate(p)
	assert.True(t, ok)
	assert.Zero(t, rate)

	_, ok = res.WinRate(Pair{A: "A", B: "Nobody"})
	assert.False(t, ok, "unseen pair should report no data")
}

func TestMine_ZeroThresholdsLiftGate(t *testing.T) {
	txs := []Basket{
		basket(true, "A", "B"),
		basket(true, "A", "B"),
		basket(false, "C", "D"),
		basket(false, "A", "C"),
	}

	res, err := Mine(txs, txs, Thresholds{})
	require.NoError(t, err)

	for p := range res.Pairs {
		assert.Contains(t, res.Supports, p)
		assert.Contains(t, res.Confidence, p)

		lift, _ := Lift(res.Pairs[p], res.N, res.Items[p.A], res.Items[p.B])
		if lift > 1 {
			assert.Contains(t, res.Lifts, p)
		} else {
			assert.NotContains(t, res.Lifts, p)
		}
	}

	// lift(A,B) = 2*4/(3*2) = 1.333...
	assert.InDelta(t, 4.0/3.0, res.Lifts[Pair{A: "A", B: "B"}], 1e-9)
	assert.InDelta(t, 4.0/3.0, res.Lifts[Pair{A: "B", B: "A"}], 1e-9)
}

func TestMine_WinsCountedFromWithWins(t *testing.T) {
	all := []Basket{basket(false, "A", "B"), basket(false, "A", "B")}
	withWins := []Basket{basket(true, "A", "B"), basket(false, "A", "B")}

	res, err := Mine(all, withWins, Thresholds{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Wins[Pair{A: "A", B: "B"}])

	rate, ok := res.WinRate(Pair{A: "B", B: "A"})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, rate, 1e-9)
}

func TestMine_ThresholdRange(t *testing.T) {
	txs := randomTeams(1, 10)

	tests := []struct {
		name string
		th   Thresholds
		bad  string
	}{
		{"negative support", Thresholds{Support: -0.1}, "support"},
		{"support over 100", Thresholds{Support: 100.5}, "support"},
		{"negative confidence", Thresholds{Confidence: -1}, "confidence"},
		{"confidence over 100", Thresholds{Confidence: 101}, "confidence"},
		{"NaN support", Thresholds{Support: math.NaN()}, "support"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Mine(txs, txs, tt.th)
			require.Error(t, err)
			assert.Nil(t, res)

			var rangeErr *ThresholdRangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, tt.bad, rangeErr.Name)
		})
	}
}

func TestMine_ThresholdRangeCheckedBeforeEmpty(t *testing.T) {
	_, err := Mine([]Basket{}, []Basket{}, Thresholds{Support: 200})
	var rangeErr *ThresholdRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestMine_BoundaryThresholdsAccepted(t *testing.T) {
	txs := []Basket{basket(true, "A", "B")}

	res, err := Mine(txs, txs, Thresholds{Support: 100, Confidence: 100})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.Supports[Pair{A: "A", B: "B"}], 1e-9)
	assert.InDelta(t, 100.0, res.Confidence[Pair{A: "B", B: "A"}], 1e-9)
}

func TestMine_ShardedMatchesSequential(t *testing.T) {
	txs := randomTeams(99, 500)
	th := Thresholds{Support: 2, Confidence: 20}

	seq, err := Mine(txs, txs, th)
	require.NoError(t, err)
	par, err := Mine(txs, txs, th, WithShards(4), WithContext(context.Background()))
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestMine_Idempotent(t *testing.T) {
	txs := randomTeams(5, 300)
	th := Thresholds{Support: 1, Confidence: 10}

	first, err := Mine(txs, txs, th)
	require.NoError(t, err)
	second, err := Mine(txs, txs, th)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProperties_RandomTeams(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		txs := randomTeams(seed, 250)
		res, err := Mine(txs, txs, Thresholds{})
		require.NoError(t, err)

		for p, c := range res.Pairs {
			// Symmetry.
			assert.Equal(t, c, res.Pairs[p.Reverse()])

			// Bound.
			assert.LessOrEqual(t, c, res.Items[p.A])
			assert.LessOrEqual(t, c, res.Items[p.B])

			// Support bound.
			s := res.Supports[p]
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)

			// Confidence bound, and 100 iff every A team also has B.
			conf := res.Confidence[p]
			assert.GreaterOrEqual(t, conf, 0.0)
			assert.LessOrEqual(t, conf, 100.0)
			assert.Equal(t, everyContains(txs, p.A, p.B), conf == 100, "pair %s", p)

			// Lift symmetry.
			l1, ok1 := res.Lifts[p]
			l2, ok2 := res.Lifts[p.Reverse()]
			if ok1 && ok2 {
				assert.Equal(t, l1, l2)
			}
			l, err := Lift(c, res.N, res.Items[p.A], res.Items[p.B])
			require.NoError(t, err)
			lr, err := Lift(c, res.N, res.Items[p.B], res.Items[p.A])
			require.NoError(t, err)
			assert.Equal(t, l, lr)
			assert.GreaterOrEqual(t, l, 0.0)
		}
	}
}

func everyContains(txs []Basket, a, b Item) bool {
	for _, tx := range txs {
		hasA, hasB := false, false
		for _, it := range tx.Members {
			hasA = hasA || it == a
			hasB = hasB || it == b
		}
		if hasA && !hasB {
			return false
		}
	}
	return true
}

func TestProperties_SupportThresholdMonotonic(t *testing.T) {
	txs := randomTeams(11, 400)
	tables := Aggregate(txs)

	prev := math.MaxInt
	for _, sup := range []float64{0, 1, 5, 10, 15, 20, 30, 50, 100} {
		rules, err := FilterRules(tables.Pairs, tables.Items, tables.N, Thresholds{Support: sup})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(rules.Supports), prev, "support threshold %v", sup)
		prev = len(rules.Supports)
	}
}

func TestFilterRules_ZeroItemCountSkipsDirection(t *testing.T) {
	pairs := PairCount{{A: "A", B: "B"}: 1, {A: "B", B: "A"}: 1}
	items := ItemCount{"A": 2}

	rules, err := FilterRules(pairs, items, 2, Thresholds{})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, rules.Confidence[Pair{A: "A", B: "B"}], 1e-9)
	assert.NotContains(t, rules.Confidence, Pair{A: "B", B: "A"})
	assert.Equal(t, []Pair{{A: "B", B: "A"}}, rules.Skipped)
	assert.Empty(t, rules.Lifts)
	for _, v := range rules.Confidence {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestFilterRules_EmptyInput(t *testing.T) {
	_, err := FilterRules(PairCount{}, ItemCount{}, 0, Thresholds{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFilterRules_OneDirectionOnly(t *testing.T) {
	pairs := PairCount{{A: "B", B: "A"}: 2}
	items := ItemCount{"A": 2, "B": 4}

	rules, err := FilterRules(pairs, items, 4, Thresholds{})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, rules.Confidence[Pair{A: "B", B: "A"}], 1e-9)
	assert.InDelta(t, 100.0, rules.Confidence[Pair{A: "A", B: "B"}], 1e-9)
	assert.Len(t, rules.Supports, 2)
}

func TestFilterRules_ConfidenceDirectionsIndependent(t *testing.T) {
	// conf(A->B) = 2/4 = 50, conf(B->A) = 2/2 = 100.
	pairs := PairCount{{A: "A", B: "B"}: 2, {A: "B", B: "A"}: 2}
	items := ItemCount{"A": 4, "B": 2}

	rules, err := FilterRules(pairs, items, 8, Thresholds{Confidence: 75})
	require.NoError(t, err)

	assert.NotContains(t, rules.Confidence, Pair{A: "A", B: "B"})
	assert.Contains(t, rules.Confidence, Pair{A: "B", B: "A"})
	// lift = 2*8/(4*2) = 2, gated by the passing direction only.
	assert.NotContains(t, rules.Lifts, Pair{A: "A", B: "B"})
	assert.InDelta(t, 2.0, rules.Lifts[Pair{A: "B", B: "A"}], 1e-9)
}

func TestRulesMetrics(t *testing.T) {
	txs := []Basket{basket(true, "A", "B"), basket(false, "A", "B"), basket(false, "C", "D")}
	res, err := Mine(txs, txs, Thresholds{})
	require.NoError(t, err)

	m, ok := res.Metrics(Pair{A: "A", B: "B"})
	require.True(t, ok)
	assert.InDelta(t, 66.6667, m.Support, 1e-3)
	assert.InDelta(t, 100.0, m.Confidence, 1e-9)
	assert.InDelta(t, 1.5, m.Lift, 1e-9)

	_, ok = res.Metrics(Pair{A: "A", B: "Z"})
	assert.False(t, ok)
}

func TestPairHelpers(t *testing.T) {
	p := Pair{A: "Zed", B: "Ahri"}
	assert.Equal(t, Pair{A: "Ahri", B: "Zed"}, p.Reverse())
	assert.Equal(t, Pair{A: "Ahri", B: "Zed"}, p.Canonical())
	assert.Equal(t, p.Reverse(), p.Reverse().Canonical())
	assert.Equal(t, "Zed -> Ahri", p.String())
}
