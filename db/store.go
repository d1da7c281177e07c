// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/quickly-tally/models"
)

var (
	ErrNotFound       = errors.New("run not found")
	ErrUnknownBackend = errors.New("unknown database type")
)

// Database types accepted by Open
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store persists runs in SQLite or PostgreSQL.
type Store struct {
	sqlDB    *sql.DB
	postgres bool
}

// Open connects to the database, pings it and creates the schema.
func Open(dbType, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	var dsn string
	switch dbType {
	case TypeSQLite:
		dsn = url
		if !strings.Contains(dsn, "?") && dsn != ":memory:" {
			dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
	case TypePostgres:
		dsn = url
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, dbType)
	}

	sqlDB, err := sql.Open(dbType, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dbType, err)
	}
	if dbType == TypeSQLite {
		// a :memory: database lives and dies with its connection
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s db: %w", dbType, err)
	}

	store := &Store{sqlDB: sqlDB, postgres: dbType == TypePostgres}
	if err := CreateSchema(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

type snapshotPayload struct {
	Result     models.Result `json:"result"`
	InputsHash string        `json:"inputs_hash"`
}

// SaveRun stores the run, its audit events and a result snapshot in one
// transaction. A missing run ID or creation time is filled in.
func (s *Store) SaveRun(ctx context.Context, run models.Run, result models.Result) (models.ResultSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.ResultSnapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return models.ResultSnapshot{}, fmt.Errorf("storage is not configured")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	snap := models.ResultSnapshot{
		ID:         uuid.NewString(),
		RunID:      run.ID,
		Method:     string(result.VotingSystem),
		ComputedAt: fromMillis(toMillis(time.Now())),
		Result:     result,
		InputsHash: run.InputsHash,
	}
	payload, err := json.Marshal(snapshotPayload{Result: result, InputsHash: run.InputsHash})
	if err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO election_run (
	id, voting_system, seats, candidates, ballots, invalid_ballots, seed, inputs_hash, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`),
		run.ID,
		string(run.VotingSystem),
		run.SeatsAvailable,
		run.Candidates,
		run.Ballots,
		run.InvalidBallots,
		run.Seed,
		run.InputsHash,
		toMillis(run.CreatedAt),
	)
	if err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("insert run: %w", err)
	}

	insertEvent := s.rebind(`INSERT INTO audit_event (run_id, seq, kind, message) VALUES (?, ?, ?, ?)`)
	for _, e := range result.Events {
		if _, err := tx.ExecContext(ctx, insertEvent, run.ID, e.Seq, e.Kind, e.Message); err != nil {
			return models.ResultSnapshot{}, fmt.Errorf("insert audit event %d: %w", e.Seq, err)
		}
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO result_snapshot (id, run_id, method, computed_at, payload)
VALUES (?, ?, ?, ?, ?)
`), snap.ID, snap.RunID, snap.Method, toMillis(snap.ComputedAt), string(payload))
	if err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("commit run: %w", err)
	}
	return snap, nil
}

// GetRun returns the stored metadata for a run.
func (s *Store) GetRun(ctx context.Context, runID string) (models.Run, error) {
	if s == nil || s.sqlDB == nil {
		return models.Run{}, fmt.Errorf("storage is not configured")
	}

	var (
		run       models.Run
		system    string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, s.rebind(`
SELECT id, voting_system, seats, candidates, ballots, invalid_ballots, seed, inputs_hash, created_at
FROM election_run
WHERE id = ?
`), runID).Scan(
		&run.ID, &system, &run.SeatsAvailable, &run.Candidates, &run.Ballots,
		&run.InvalidBallots, &run.Seed, &run.InputsHash, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, fmt.Errorf("get run: %w", err)
	}
	run.VotingSystem = models.VotingSystem(system)
	run.CreatedAt = fromMillis(createdAt)
	return run, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, s.rebind(`
SELECT id, voting_system, seats, candidates, ballots, invalid_ballots, seed, inputs_hash, created_at
FROM election_run
ORDER BY created_at DESC, id
LIMIT ?
`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		var (
			run       models.Run
			system    string
			createdAt int64
		)
		if err := rows.Scan(
			&run.ID, &system, &run.SeatsAvailable, &run.Candidates, &run.Ballots,
			&run.InvalidBallots, &run.Seed, &run.InputsHash, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.VotingSystem = models.VotingSystem(system)
		run.CreatedAt = fromMillis(createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetSnapshot returns the result snapshot stored for a run.
func (s *Store) GetSnapshot(ctx context.Context, runID string) (models.ResultSnapshot, error) {
	if s == nil || s.sqlDB == nil {
		return models.ResultSnapshot{}, fmt.Errorf("storage is not configured")
	}

	var (
		snap       models.ResultSnapshot
		computedAt int64
		payload    string
	)
	err := s.sqlDB.QueryRowContext(ctx, s.rebind(`
SELECT id, run_id, method, computed_at, payload
FROM result_snapshot
WHERE run_id = ?
`), runID).Scan(&snap.ID, &snap.RunID, &snap.Method, &computedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResultSnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("get snapshot: %w", err)
	}

	var p snapshotPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return models.ResultSnapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snap.ComputedAt = fromMillis(computedAt)
	snap.Result = p.Result
	snap.InputsHash = p.InputsHash
	return snap, nil
}

// ListAuditEvents returns a run's audit trail in recording order.
func (s *Store) ListAuditEvents(ctx context.Context, runID string) ([]models.AuditEvent, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, s.rebind(`
SELECT seq, kind, message
FROM audit_event
WHERE run_id = ?
ORDER BY seq
`), runID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []models.AuditEvent{}
	for rows.Next() {
		var e models.AuditEvent
		if err := rows.Scan(&e.Seq, &e.Kind, &e.Message); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
