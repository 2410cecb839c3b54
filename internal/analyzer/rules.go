package analyzer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blackwell-systems/champrules/internal/ingest"
	"github.com/blackwell-systems/champrules/internal/miner"
	"github.com/blackwell-systems/champrules/internal/store"
)

// ErrNoTeams is returned when the filter matches no stored teams.
var ErrNoTeams = errors.New("no teams match: import a match file first")

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortConfidence, nil
	}
	for _, k := range SortKeys {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	names := make([]string, len(SortKeys))
	for i, k := range SortKeys {
		names[i] = string(k)
	}
	return "", fmt.Errorf("invalid sort key: %s (must be one of %s)", s, strings.Join(names, ", "))
}

// loadAndMine reads the filtered teams and runs the miner over them. The
// stored teams carry their outcome, so the same set serves as both the
// composition and the win-conditioned input.
func (a *Analyzer) loadAndMine(filter store.TeamFilter, th miner.Thresholds) ([]ingest.Team, *miner.Result, error) {
	teams, err := a.store.ListTeams(filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load teams: %w", err)
	}

	res, err := miner.Mine(teams, teams, th, miner.WithShards(a.Shards))
	if errors.Is(err, miner.ErrEmptyInput) {
		return nil, nil, fmt.Errorf("%w (%v)", ErrNoTeams, err)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(res.Skipped) > 0 {
		a.logger.Warn("skipped rule directions with zero item count", "count", len(res.Skipped))
	}
	a.logger.Debug("mined teams",
		"transactions", res.N,
		"pairs", len(res.Pairs)/2,
		"support_rules", len(res.Supports),
		"confidence_rules", len(res.Confidence),
		"lift_rules", len(res.Lifts))

	return teams, res, nil
}

// Mine runs the miner over stored teams and builds a sorted report.
func (a *Analyzer) Mine(req MineRequest) (*Report, error) {
	if req.SortBy == "" {
		req.SortBy = SortConfidence
	}
	if _, err := ParseSortKey(string(req.SortBy)); err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("invalid limit: %d (must not be negative)", req.Limit)
	}

	_, res, err := a.loadAndMine(req.Filter, req.Thresholds)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Request:         req,
		Transactions:    res.N,
		Champions:       len(res.Items),
		SupportRules:    len(res.Supports),
		ConfidenceRules: len(res.Confidence),
		LiftRules:       len(res.Lifts),
		Skipped:         len(res.Skipped),
		Result:          res,
	}

	seen := make(map[miner.Pair]bool, len(res.Confidence))
	for _, m := range []map[miner.Pair]float64{res.Confidence, res.Supports} {
		for p := range m {
			if seen[p] {
				continue
			}
			seen[p] = true
			rule := buildRule(res, p)
			if rule.Games < req.MinGames {
				continue
			}
			report.Rules = append(report.Rules, rule)
		}
	}

	sortRules(report.Rules, req.SortBy)
	if req.Limit > 0 && len(report.Rules) > req.Limit {
		report.Rules = report.Rules[:req.Limit]
	}

	if req.Record {
		run := &store.MiningRun{
			ImportID:            req.Filter.ImportID,
			SupportThreshold:    req.Thresholds.Support,
			ConfidenceThreshold: req.Thresholds.Confidence,
			Transactions:        report.Transactions,
			SupportRules:        report.SupportRules,
			ConfidenceRules:     report.ConfidenceRules,
			LiftRules:           report.LiftRules,
		}
		if _, err := a.store.InsertRun(run); err != nil {
			return nil, fmt.Errorf("failed to record mining run: %w", err)
		}
	}

	return report, nil
}

// buildRule collects every metric recorded for p.
func buildRule(res *miner.Result, p miner.Pair) Rule {
	rule := Rule{
		Pair:  p,
		Games: res.Pairs[p],
		Wins:  res.Wins[p],
	}
	rule.Support, rule.HasSupport = res.Supports[p]
	rule.Confidence, rule.HasConfidence = res.Confidence[p]
	rule.Lift, rule.HasLift = res.Lifts[p]
	rule.WinRate, rule.HasWinRate = res.WinRate(p)
	return rule
}

// sortRules orders rules by key descending, breaking ties by games and
// then by pair name so output is deterministic.
func sortRules(rules []Rule, key SortKey) {
	value := func(r Rule) float64 {
		switch key {
		case SortSupport:
			return r.Support
		case SortLift:
			return r.Lift
		case SortWinRate:
			if !r.HasWinRate {
				return -1
			}
			return r.WinRate
		case SortGames:
			return float64(r.Games)
		default:
			return r.Confidence
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		vi, vj := value(rules[i]), value(rules[j])
		if vi != vj {
			return vi > vj
		}
		if rules[i].Games != rules[j].Games {
			return rules[i].Games > rules[j].Games
		}
		if rules[i].Pair.A != rules[j].Pair.A {
			return rules[i].Pair.A < rules[j].Pair.A
		}
		return rules[i].Pair.B < rules[j].Pair.B
	})
}

// resolveChampion finds the stored spelling of name, ignoring case.
func resolveChampion(items miner.ItemCount, name string) (miner.Item, error) {
	if _, ok := items[miner.Item(name)]; ok {
		return miner.Item(name), nil
	}
	for it := range items {
		if strings.EqualFold(string(it), name) {
			return it, nil
		}
	}
	return "", fmt.Errorf("champion not found: %s", name)
}

// Partners returns the champions most often picked alongside champion,
// ranked by confidence(champion -> partner).
func (a *Analyzer) Partners(filter store.TeamFilter, champion string, minGames, limit int) ([]Rule, error) {
	_, res, err := a.loadAndMine(filter, miner.Thresholds{})
	if err != nil {
		return nil, err
	}

	item, err := resolveChampion(res.Items, champion)
	if err != nil {
		return nil, err
	}

	var rules []Rule
	for p := range res.Confidence {
		if p.A != item {
			continue
		}
		rule := buildRule(res, p)
		if rule.Games < minGames {
			continue
		}
		rules = append(rules, rule)
	}

	sortRules(rules, SortConfidence)
	if limit > 0 && len(rules) > limit {
		rules = rules[:limit]
	}
	return rules, nil
}

// ExplainPair reports both directions of the pair (a, b) with every
// metric computed, ignoring thresholds.
func (a *Analyzer) ExplainPair(filter store.TeamFilter, champA, champB string) (*PairExplanation, error) {
	_, res, err := a.loadAndMine(filter, miner.Thresholds{})
	if err != nil {
		return nil, err
	}

	itemA, err := resolveChampion(res.Items, champA)
	if err != nil {
		return nil, err
	}
	itemB, err := resolveChampion(res.Items, champB)
	if err != nil {
		return nil, err
	}
	if itemA == itemB {
		return nil, fmt.Errorf("cannot explain a champion paired with itself: %s", itemA)
	}

	forward := miner.Pair{A: itemA, B: itemB}
	exp := &PairExplanation{
		A:            itemA,
		B:            itemB,
		Transactions: res.N,
		CountA:       res.Items[itemA],
		CountB:       res.Items[itemB],
		Games:        res.Pairs[forward],
		Wins:         res.Wins[forward],
		Forward:      buildRule(res, forward),
		Backward:     buildRule(res, forward.Reverse()),
	}
	exp.Expected = float64(exp.CountA) * float64(exp.CountB) / float64(res.N)

	lift, err := miner.Lift(exp.Games, res.N, exp.CountA, exp.CountB)
	if err != nil {
		return nil, fmt.Errorf("failed to compute lift: %w", err)
	}
	switch {
	case lift > 1:
		exp.Association = "positive"
	case lift < 1:
		exp.Association = "negative"
	default:
		exp.Association = "independent"
	}

	// The rule tables only hold pairs that co-occurred and lifts above 1;
	// the explanation shows raw values for both directions regardless.
	support, _ := miner.Support(exp.Games, res.N)
	exp.Forward.Support, exp.Backward.Support = support, support
	exp.Forward.Confidence, _ = miner.Confidence(exp.Games, exp.CountA)
	exp.Backward.Confidence, _ = miner.Confidence(exp.Games, exp.CountB)
	exp.Forward.Lift, exp.Backward.Lift = lift, lift

	return exp, nil
}

// ChampionStats returns pick and win counts per champion, most picked
// first.
func (a *Analyzer) ChampionStats(filter store.TeamFilter) ([]ChampionStat, int, error) {
	teams, err := a.store.ListTeams(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, 0, ErrNoTeams
	}

	picks := miner.CountItems(teams)
	wins := make(map[miner.Item]int, len(picks))
	for _, t := range teams {
		if !t.Won() {
			continue
		}
		for _, it := range t.Items() {
			wins[it]++
		}
	}

	stats := make([]ChampionStat, 0, len(picks))
	for it, n := range picks {
		stats = append(stats, ChampionStat{
			Champion: it,
			Picks:    n,
			Wins:     wins[it],
			PickRate: float64(n) / float64(len(teams)) * 100,
			WinRate:  float64(wins[it]) / float64(n),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Picks != stats[j].Picks {
			return stats[i].Picks > stats[j].Picks
		}
		return stats[i].Champion < stats[j].Champion
	})

	return stats, len(teams), nil
}
