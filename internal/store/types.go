package store

import "time"

// Import records one match file loaded into the database.
type Import struct {
	ID           string
	Source       string // path of the match file
	Region       string // e.g. "kr", "na1"; empty when unknown
	ImportedAt   time.Time
	TeamCount    int
	SkippedRows  int
	FilteredRows int
}

// TeamFilter narrows ListTeams and CountTeams. Zero values match all.
type TeamFilter struct {
	ImportID string
	Region   string
	QueueID  int
}

// MiningRun records the parameters and rule counts of one mining run.
// The mined rules themselves are not stored.
type MiningRun struct {
	ID                  int64
	CreatedAt           time.Time
	ImportID            string // empty when all imports were mined
	SupportThreshold    float64
	ConfidenceThreshold float64
	Transactions        int
	SupportRules        int
	ConfidenceRules     int
	LiftRules           int
}
