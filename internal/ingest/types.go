// Package ingest turns raw match rows into per-team transactions.
package ingest

import "github.com/blackwell-systems/champrules/internal/miner"

// Lanes lists team slots in the order champions are stored.
var Lanes = [TeamSize]string{"Top", "Jungle", "Middle", "Bot", "Support"}

// TeamSize is the number of champions on one team.
const TeamSize = 5

// Team is one side of a match: five champions and whether the side won.
type Team struct {
	MatchID   string
	Side      int // 1 or 2
	QueueID   int
	Champions [TeamSize]string
	Win       bool
}

// Items returns the team's champions as mining items. Empty slots are
// left out.
func (t Team) Items() []miner.Item {
	items := make([]miner.Item, 0, TeamSize)
	for _, c := range t.Champions {
		if c == "" {
			continue
		}
		items = append(items, miner.Item(c))
	}
	return items
}

// Won reports whether the team won its match.
func (t Team) Won() bool { return t.Win }

// Result summarizes one parse.
type Result struct {
	Teams    []Team
	Rows     int // data rows read
	Filtered int // rows dropped for an unsupported queue
	Skipped  int // malformed rows
}
