// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands built with cobra register the same flags on their own flag set and
resolve after cobra has parsed:

	cliparse.RegisterFlags(rootCmd.PersistentFlags())
	cfg, err := cliparse.Resolve(cmd.Flags())

# Config Fields

  - BallotFile: Ballot file to tabulate (first positional argument)
  - AuditFile: Audit trail, appended to (default: auditFile.txt)
  - InvalidFile: Rejected IR ballots (default: invalidated.csv)
  - ReportFile: Optional XLSX results workbook
  - DatabaseURL: SQLite path or PostgreSQL connection string
  - DatabaseType: sqlite or postgres (default: sqlite)
  - Seed: Tie-break seed; 0 draws one from crypto/rand
  - Port: Server listen port (default: 3318)
  - InputsSalt: Key for the ballot file inputs hash
  - Verbose: Debug logging

# Sources

Later sources override earlier ones:

 1. Defaults
 2. YAML file named by -c/--config
 3. dotenv file (--env-file, default .env; a missing default file is ignored)
 4. Environment variables
 5. Flags that were set explicitly

# Environment Variables

	BALLOT_FILE    → positional argument
	AUDIT_FILE     → --audit-file
	INVALID_FILE   → --invalid-file
	REPORT_FILE    → -r, --report
	DATABASE_URL   → -d, --database-url
	DATABASE_TYPE  → -t, --database-type
	TIE_BREAK_SEED → -s, --seed
	PORT           → -p, --port
	INPUTS_SALT    → --inputs-salt
	VERBOSE        → -v, --verbose

# Validation

ParseFlags returns an error if:

  - the database type is not sqlite or postgres
  - the port is outside 1-65535
  - the audit file path is empty
*/
package cliparse
