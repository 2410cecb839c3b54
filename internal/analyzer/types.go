package analyzer

import (
	"github.com/blackwell-systems/champrules/internal/miner"
	"github.com/blackwell-systems/champrules/internal/store"
)

// SortKey selects the column rules are ranked by.
type SortKey string

const (
	SortConfidence SortKey = "confidence"
	SortSupport    SortKey = "support"
	SortLift       SortKey = "lift"
	SortWinRate    SortKey = "winrate"
	SortGames      SortKey = "games"
)

// SortKeys lists every accepted sort key, in help-text order.
var SortKeys = []SortKey{SortConfidence, SortSupport, SortLift, SortWinRate, SortGames}

// Rule is one directed pair as shown to the user. Has* flags say whether
// the metric passed its filter.
type Rule struct {
	Pair       miner.Pair
	Games      int // teams containing both champions
	Wins       int // winning teams containing both
	Support    float64
	Confidence float64
	Lift       float64
	WinRate    float64 // fraction in [0, 1]

	HasSupport    bool
	HasConfidence bool
	HasLift       bool
	HasWinRate    bool // false means "no data"
}

// MineRequest describes one mining run over stored teams.
type MineRequest struct {
	Filter     store.TeamFilter
	Thresholds miner.Thresholds
	SortBy     SortKey // defaults to SortConfidence
	Limit      int     // 0 means no limit
	MinGames   int     // hide pairs seen in fewer games
	Record     bool    // store a MiningRun row
}

// Report is the outcome of a mining run.
type Report struct {
	Request      MineRequest
	Transactions int
	Champions    int

	SupportRules    int
	ConfidenceRules int
	LiftRules       int
	Skipped         int

	// Rules holds every directed pair that passed the support or the
	// confidence filter, sorted and truncated per the request.
	Rules []Rule

	Result *miner.Result
}

// PairExplanation breaks down both directions of one pair.
type PairExplanation struct {
	A, B         miner.Item
	Transactions int
	CountA       int
	CountB       int
	Games        int
	Wins         int

	Expected    float64 // co-occurrences expected if picks were independent
	Association string  // "positive", "independent" or "negative"

	Forward  Rule // A -> B
	Backward Rule // B -> A
}

// ChampionStat summarizes one champion's picks.
type ChampionStat struct {
	Champion miner.Item
	Picks    int
	Wins     int
	PickRate float64 // percentage of teams
	WinRate  float64 // fraction in [0, 1]
}
