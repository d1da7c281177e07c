// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for quickly-tally.

quickly-tally counts election ballot files under three rules: instant runoff
(IR), open party list (OPL) and multiple popularity only (MPO). Every step of
a count is written to an audit trail, and random tie-breaks are driven by a
recorded seed so any run can be replayed.

# Counting a File

	go run . tally ballots.csv

Without a file argument the filename is read from standard input. Useful flags:

	-s, --seed          Tie-break seed (0 draws a fresh one)
	--audit-file        Audit trail, appended to (default: auditFile.txt)
	--invalid-file      Rejected IR ballots (default: invalidated.csv)
	-r, --report        XLSX results workbook
	-d, --database-url  Store the run for the HTTP API

# Serving Stored Runs

	DATABASE_URL=runs.db go run . serve

Or against PostgreSQL:

	go run . serve -t postgres -d "postgres://..." -p 3318

# Configuration

Each source overrides the previous one:

  - built-in defaults
  - YAML file (-c, --config)
  - .env file (--env-file, default .env)
  - environment (BALLOT_FILE, AUDIT_FILE, INVALID_FILE, REPORT_FILE,
    DATABASE_URL, DATABASE_TYPE, TIE_BREAK_SEED, PORT, INPUTS_SALT, VERBOSE)
  - flags given on the command line

# Architecture

  - cmd: cobra command tree (tally, serve, version)
  - ballotfile: ballot file loader
  - tally: IR, OPL and MPO tabulators and tie-break policies
  - audit: audit trail sinks
  - report: terminal summary and XLSX workbook
  - db: run, audit and result storage (SQLite or PostgreSQL)
  - digest: ballot file fingerprints and short run codes
  - handlers, router, middleware: HTTP API
  - cliparse: configuration resolution
  - models: shared types

See package documentation for each component.
*/
package main
