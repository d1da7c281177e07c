// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists tabulation runs, their audit trails and result snapshots.

# Opening a Store

Two backends share one schema:

	store, err := db.Open("sqlite", "quickly-tally.db")      // modernc.org/sqlite
	store, err := db.Open("postgres", "postgres://...")      // github.com/lib/pq

Open pings the database and creates the schema. Queries are written with ?
placeholders and rebound to $n for PostgreSQL.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election_run: one row per tabulation (rule, seats, counts, seed, inputs hash)
  - audit_event: ordered audit lines per run
  - result_snapshot: immutable JSON result per run

# Relationships

	election_run 1──* audit_event
	election_run 1──1 result_snapshot

Timestamps are stored as Unix milliseconds so both backends sort them the
same way.
*/
package db
