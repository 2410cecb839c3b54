package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/champrules/internal/ingest"
)

// Import operations

// InsertImport stores an import and its teams in one transaction. An empty
// imp.ID is replaced with a new UUID and a zero ImportedAt with the current
// time; TeamCount is always set from teams.
func (s *Store) InsertImport(imp *Import, teams []ingest.Team) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}

	if err := insertImport(tx, imp, teams); err != nil {
		tx.Rollback() //nolint:errcheck
		return notInitialized(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// ReplaceImport deletes every earlier import of imp.Source and stores imp
// in its place, atomically.
func (s *Store) ReplaceImport(imp *Import, teams []ingest.Team) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM imports WHERE source = ?`, imp.Source); err != nil {
		tx.Rollback() //nolint:errcheck
		return notInitialized(fmt.Errorf("failed to delete previous imports of %s: %w", imp.Source, err))
	}

	if err := insertImport(tx, imp, teams); err != nil {
		tx.Rollback() //nolint:errcheck
		return notInitialized(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func insertImport(tx *sql.Tx, imp *Import, teams []ingest.Team) error {
	if imp.ID == "" {
		imp.ID = uuid.NewString()
	}
	if imp.ImportedAt.IsZero() {
		imp.ImportedAt = time.Now().UTC()
	}
	imp.TeamCount = len(teams)

	_, err := tx.Exec(`
		INSERT INTO imports (id, source, region, imported_at, team_count, skipped_rows, filtered_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		imp.ID,
		imp.Source,
		imp.Region,
		imp.ImportedAt.Format(time.RFC3339),
		imp.TeamCount,
		imp.SkippedRows,
		imp.FilteredRows,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import %s: %w", imp.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO teams (import_id, match_id, side, queue_id, top, jungle, middle, bot, support, won)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare team insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range teams {
		c := t.Champions
		if _, err := stmt.Exec(imp.ID, t.MatchID, t.Side, t.QueueID, c[0], c[1], c[2], c[3], c[4], t.Win); err != nil {
			return fmt.Errorf("failed to insert team %s/%d: %w", t.MatchID, t.Side, err)
		}
	}

	return nil
}

// GetImport retrieves an import by ID.
func (s *Store) GetImport(id string) (*Import, error) {
	query := `
		SELECT id, source, region, imported_at, team_count, skipped_rows, filtered_rows
		FROM imports
		WHERE id = ?
	`

	imp, err := scanImport(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("import %s not found", id)
	}
	if err != nil {
		return nil, notInitialized(fmt.Errorf("failed to get import %s: %w", id, err))
	}
	return imp, nil
}

// ListImports returns all imports, newest first.
func (s *Store) ListImports() ([]*Import, error) {
	query := `
		SELECT id, source, region, imported_at, team_count, skipped_rows, filtered_rows
		FROM imports
		ORDER BY imported_at DESC, rowid DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, notInitialized(fmt.Errorf("failed to list imports: %w", err))
	}
	defer rows.Close()

	var imports []*Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import row: %w", err)
		}
		imports = append(imports, imp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imports: %w", err)
	}

	return imports, nil
}

// DeleteImport removes an import and, by cascade, its teams.
func (s *Store) DeleteImport(id string) error {
	result, err := s.db.Exec(`DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return notInitialized(fmt.Errorf("failed to delete import %s: %w", id, err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("import %s not found", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (*Import, error) {
	var imp Import
	var region sql.NullString
	var importedAt string

	if err := row.Scan(
		&imp.ID,
		&imp.Source,
		&region,
		&importedAt,
		&imp.TeamCount,
		&imp.SkippedRows,
		&imp.FilteredRows,
	); err != nil {
		return nil, err
	}

	imp.Region = region.String

	t, err := time.Parse(time.RFC3339, importedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse imported_at for %s: %w", imp.ID, err)
	}
	imp.ImportedAt = t

	return &imp, nil
}

// Team operations

func (f TeamFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.ImportID != "" {
		conds = append(conds, "t.import_id = ?")
		args = append(args, f.ImportID)
	}
	if f.Region != "" {
		conds = append(conds, "i.region = ?")
		args = append(args, f.Region)
	}
	if f.QueueID != 0 {
		conds = append(conds, "t.queue_id = ?")
		args = append(args, f.QueueID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ListTeams returns the teams matching filter in insertion order.
func (s *Store) ListTeams(filter TeamFilter) ([]ingest.Team, error) {
	where, args := filter.where()
	query := `
		SELECT t.match_id, t.side, t.queue_id, t.top, t.jungle, t.middle, t.bot, t.support, t.won
		FROM teams t
		JOIN imports i ON i.id = t.import_id
		` + where + `
		ORDER BY t.id
	`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, notInitialized(fmt.Errorf("failed to list teams: %w", err))
	}
	defer rows.Close()

	var teams []ingest.Team
	for rows.Next() {
		var t ingest.Team
		c := &t.Champions
		if err := rows.Scan(&t.MatchID, &t.Side, &t.QueueID, &c[0], &c[1], &c[2], &c[3], &c[4], &t.Win); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// CountTeams returns the number of teams matching filter.
func (s *Store) CountTeams(filter TeamFilter) (int, error) {
	where, args := filter.where()
	query := `
		SELECT COUNT(*)
		FROM teams t
		JOIN imports i ON i.id = t.import_id
		` + where

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, notInitialized(fmt.Errorf("failed to count teams: %w", err))
	}
	return count, nil
}

// Mining run operations

// InsertRun records a mining run and returns its ID. A zero CreatedAt is
// set to the current time.
func (s *Store) InsertRun(run *MiningRun) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.Exec(`
		INSERT INTO mining_runs
		(created_at, import_id, support_threshold, confidence_threshold, transactions, support_rules, confidence_rules, lift_rules)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.CreatedAt.Format(time.RFC3339),
		run.ImportID,
		run.SupportThreshold,
		run.ConfidenceThreshold,
		run.Transactions,
		run.SupportRules,
		run.ConfidenceRules,
		run.LiftRules,
	)
	if err != nil {
		return 0, notInitialized(fmt.Errorf("failed to insert mining run: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id
	return id, nil
}

// ListRuns returns the most recent mining runs, newest first. limit <= 0
// returns every run.
func (s *Store) ListRuns(limit int) ([]*MiningRun, error) {
	query := `
		SELECT id, created_at, import_id, support_threshold, confidence_threshold,
		       transactions, support_rules, confidence_rules, lift_rules
		FROM mining_runs
		ORDER BY id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, notInitialized(fmt.Errorf("failed to list mining runs: %w", err))
	}
	defer rows.Close()

	var runs []*MiningRun
	for rows.Next() {
		var run MiningRun
		var createdAt string
		var importID sql.NullString
		if err := rows.Scan(
			&run.ID,
			&createdAt,
			&importID,
			&run.SupportThreshold,
			&run.ConfidenceThreshold,
			&run.Transactions,
			&run.SupportRules,
			&run.ConfidenceRules,
			&run.LiftRules,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mining run row: %w", err)
		}

		run.ImportID = importID.String
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for run %d: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mining runs: %w", err)
	}

	return runs, nil
}
