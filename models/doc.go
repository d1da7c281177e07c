// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the election data model and the result surface.

# Domain Types

Passive records shared by the loader, the tabulators and the reporting layer:

  - Candidate: name, party, ballot position and live vote count
  - Ballot: ranked IR ballot holding candidate handles in preference order
  - Party: OPL party with total votes, remainder, seats won and sorted members
  - Election: loader output (rule tag, seats, candidates, ballots)

Candidates are referenced by handle (their index in Election.Candidates), so
ballots never point at candidate values directly.

# Result Types

  - Result: winner (IR) or seat list (OPL/MPO), final tallies, audit events
  - IRRound: one elimination round
  - ResultSnapshot: stored result with inputs hash
  - Run: stored run metadata

# Constants

Voting systems:

	SystemIR  = "IR"
	SystemOPL = "OPL"
	SystemMPO = "MPO"

Audit event kinds:

	AuditInitialState, AuditSeed, AuditElimination, AuditTotals, AuditTie,
	AuditQuota, AuditSeat, AuditRoundSummary, AuditNoResults, AuditFinal
*/
package models
