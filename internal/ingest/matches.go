package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyFile is returned when a match file has no rows at all.
var ErrEmptyFile = errors.New("match file is empty")

// DefaultQueues are the Summoner's Rift queues kept by default: normal
// draft, ranked solo, normal blind and ranked flex.
var DefaultQueues = []int{400, 420, 430, 440}

// Match row layout, as written by the match extractor (no header):
//
//	idx, matchId, gameCreation, gameMode, gameType, gameVersion, mapId, queueId,
//	then 10 participants of (puuid, championName, win).
const (
	matchIDColumn      = 1
	queueColumn        = 7
	firstParticipant   = 8
	participantWidth   = 3
	participantCount   = 10
	championOffset     = 1
	winOffset          = 2
	rowWidth           = firstParticipant + participantCount*participantWidth
	participantsOnSide = participantCount / 2
)

// Options controls which rows are kept.
type Options struct {
	// Queues restricts rows to these queue IDs. Empty means DefaultQueues.
	Queues []int

	// Progress, if set, is called after every data row with the number
	// of rows read so far.
	Progress func(rows int)
}

func (o Options) queueSet() map[int]bool {
	queues := o.Queues
	if len(queues) == 0 {
		queues = DefaultQueues
	}
	set := make(map[int]bool, len(queues))
	for _, q := range queues {
		set[q] = true
	}
	return set
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("match file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to open match file: %w", err)
	}
	defer f.Close()

	res, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Parse reads match rows and splits every kept match into two teams:
// participants 0-4 and 5-9. A team's outcome is read from the win column
// of its last participant. Malformed rows are counted in Result.Skipped
// rather than failing the parse.
func Parse(r io.Reader, opts Options) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	queues := opts.queueSet()
	res := &Result{}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Rows++
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read match rows: %w", err)
		}

		res.Rows++
		if opts.Progress != nil {
			opts.Progress(res.Rows)
		}

		if len(record) < rowWidth {
			res.Skipped++
			continue
		}

		queueID, err := strconv.Atoi(strings.TrimSpace(record[queueColumn]))
		if err != nil {
			res.Skipped++
			continue
		}
		if !queues[queueID] {
			res.Filtered++
			continue
		}

		matchID := strings.TrimSpace(record[matchIDColumn])
		res.Teams = append(res.Teams,
			teamFromRecord(record, matchID, queueID, 1),
			teamFromRecord(record, matchID, queueID, 2),
		)
	}

	if res.Rows == 0 {
		return nil, ErrEmptyFile
	}

	return res, nil
}

// teamFromRecord builds side 1 (participants 0-4) or side 2 (5-9).
func teamFromRecord(record []string, matchID string, queueID, side int) Team {
	team := Team{MatchID: matchID, Side: side, QueueID: queueID}

	base := firstParticipant + (side-1)*participantsOnSide*participantWidth
	for i := 0; i < participantsOnSide; i++ {
		col := base + i*participantWidth
		team.Champions[i] = strings.TrimSpace(record[col+championOffset])
	}

	lastWin := base + (participantsOnSide-1)*participantWidth + winOffset
	team.Win = ParseWin(record[lastWin])

	return team
}

// ParseWin reads a win column. Only "true" (any case) is a win; any other
// value, including blanks, counts as a loss.
func ParseWin(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
