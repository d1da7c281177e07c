// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"github.com/danielhkuo/quickly-tally/models"
)

// Tabulator is implemented by the IR, OPL and MPO tabulators.
type Tabulator interface {
	Run() models.Result
	Events() []models.AuditEvent
}

// New builds the tabulator for the election's voting system. Configuration
// problems are reported here, before anything is audited. IR elects a single
// winner but its seat count is still checked like the other rules.
func New(e models.Election, tb TieBreaker, sink AuditSink) (Tabulator, error) {
	switch e.VotingSystem {
	case models.SystemIR:
		if err := validateSeats(e.SeatsAvailable, len(e.Candidates)); err != nil {
			return nil, err
		}
		return NewIR(e.Candidates, e.Ballots, tb, sink)
	case models.SystemOPL:
		return NewOPL(e.Candidates, e.SeatsAvailable, e.TotalValidBallots, tb, sink)
	case models.SystemMPO:
		return NewMPO(e.Candidates, e.SeatsAvailable, e.TotalValidBallots, tb, sink)
	default:
		return nil, configf(ErrUnknownSystem, "%q", e.VotingSystem)
	}
}

// Tabulate runs one election start to finish. A nil tie-breaker is replaced
// by a RandomTieBreaker with a fresh seed.
func Tabulate(e models.Election, tb TieBreaker, sink AuditSink) (models.Result, error) {
	if tb == nil {
		seed, err := NewSeed()
		if err != nil {
			return models.Result{}, err
		}
		tb = NewRandomTieBreaker(seed)
	}
	t, err := New(e, tb, sink)
	if err != nil {
		return models.Result{}, err
	}
	return t.Run(), nil
}
