// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Portable between SQLite and PostgreSQL: no JSONB, no NOW()
const schema = `
-- Runs
CREATE TABLE IF NOT EXISTS election_run (
    id TEXT PRIMARY KEY,
    voting_system TEXT NOT NULL CHECK (voting_system IN ('IR', 'OPL', 'MPO')),
    seats INTEGER NOT NULL,
    candidates INTEGER NOT NULL,
    ballots INTEGER NOT NULL,
    invalid_ballots INTEGER NOT NULL DEFAULT 0,
    seed BIGINT NOT NULL,
    inputs_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_election_run_created_at ON election_run(created_at);
CREATE INDEX IF NOT EXISTS idx_election_run_inputs_hash ON election_run(inputs_hash);

-- Audit Events
CREATE TABLE IF NOT EXISTS audit_event (
    run_id TEXT NOT NULL REFERENCES election_run(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    message TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);

-- Result Snapshots
CREATE TABLE IF NOT EXISTS result_snapshot (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL UNIQUE REFERENCES election_run(id) ON DELETE CASCADE,
    method TEXT NOT NULL,
    computed_at BIGINT NOT NULL,
    payload TEXT NOT NULL
);
`
