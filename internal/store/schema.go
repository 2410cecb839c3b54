package store

const schema = `
CREATE TABLE IF NOT EXISTS imports (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    region TEXT,
    imported_at TIMESTAMP NOT NULL,
    team_count INTEGER NOT NULL,
    skipped_rows INTEGER NOT NULL DEFAULT 0,
    filtered_rows INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS teams (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id TEXT NOT NULL,
    match_id TEXT NOT NULL,
    side INTEGER NOT NULL,
    queue_id INTEGER NOT NULL,
    top TEXT,
    jungle TEXT,
    middle TEXT,
    bot TEXT,
    support TEXT,
    won BOOLEAN NOT NULL,
    FOREIGN KEY (import_id) REFERENCES imports(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS mining_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP NOT NULL,
    import_id TEXT,
    support_threshold REAL NOT NULL,
    confidence_threshold REAL NOT NULL,
    transactions INTEGER NOT NULL,
    support_rules INTEGER NOT NULL,
    confidence_rules INTEGER NOT NULL,
    lift_rules INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_teams_import ON teams(import_id);
CREATE INDEX IF NOT EXISTS idx_teams_match ON teams(match_id);
CREATE INDEX IF NOT EXISTS idx_imports_region ON imports(region);
CREATE INDEX IF NOT EXISTS idx_runs_created ON mining_runs(created_at);
`
