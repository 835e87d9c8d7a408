package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS insights (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content TEXT NOT NULL,
    source_url TEXT,
    shared_by TEXT,
    shared_date TEXT,
    context_message TEXT,
    content_category TEXT NOT NULL DEFAULT 'note',
    tags TEXT,
    quality_score INTEGER NOT NULL DEFAULT 5,
    extracted_text TEXT,
    extraction_status TEXT NOT NULL DEFAULT 'pending',
    status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'responded', 'archived')),
    last_shown_date TEXT,
    times_shown INTEGER NOT NULL DEFAULT 0,
    times_skipped INTEGER NOT NULL DEFAULT 0,
    is_duplicate INTEGER NOT NULL DEFAULT 0,
    duplicate_of INTEGER,
    useful_for_daily INTEGER NOT NULL DEFAULT 1,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS responses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    insight_id INTEGER NOT NULL REFERENCES insights(id),
    response_text TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS generations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic TEXT NOT NULL,
    source_insight_ids TEXT NOT NULL,
    linkedin_post TEXT NOT NULL,
    twitter_thread TEXT NOT NULL,
    blog_outline TEXT NOT NULL,
    feedback TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS user_actions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    insight_id INTEGER NOT NULL REFERENCES insights(id),
    action_type TEXT NOT NULL,
    action_date TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS daily_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_date TEXT NOT NULL UNIQUE,
    insight_ids TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_insights_status ON insights(status);
CREATE INDEX IF NOT EXISTS idx_insights_category ON insights(content_category);
CREATE INDEX IF NOT EXISTS idx_insights_daily ON insights(useful_for_daily, status);
CREATE INDEX IF NOT EXISTS idx_responses_insight ON responses(insight_id);
CREATE INDEX IF NOT EXISTS idx_actions_insight ON user_actions(insight_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
