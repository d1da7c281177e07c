// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally implements the tabulation engine for three voting rules.

# Rules

  - IR: instant runoff. The lowest candidate is eliminated and their ballots
    move to the next active preference until a candidate holds more than 50%
    of the valid ballots or two candidates remain.
  - OPL: open party list. Parties win floor(votes / quota) seats, leftover
    seats go by largest remainder, and each party seats its candidates in
    descending vote order.
  - MPO: multiple-seat plurality. Seats go one at a time to the
    highest-voted candidate not yet seated.

# Usage

	result, err := tally.Tabulate(election, tally.NewRandomTieBreaker(seed), sink)

Tabulate returns a *ConfigError (matching ErrConfiguration) when the seat
count or candidate set makes the election impossible to run. An election
with no ballots is not an error: the result has NoResults set and no seats.

# Ties

Every tie goes through a TieBreaker. RandomTieBreaker draws from a seeded
source and the seed is written to the audit trail; FirstTieBreaker always
takes the first tied entity and makes a run fully deterministic.

# Audit

Each tabulator writes human-readable lines to an AuditSink as it goes and
keeps the same lines as models.AuditEvent values in the result. Sink errors
are logged and ignored.
*/
package tally
