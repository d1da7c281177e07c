// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-tally/models"
)

// MPOTabulator fills seats one at a time with the highest-voted candidate
// not yet seated, regardless of party.
type MPOTabulator struct {
	candidates   []models.Candidate
	seats        int
	totalBallots int
	seated       []int

	tb    TieBreaker
	audit *recorder

	result *models.Result
}

// NewMPO validates the seat count and takes a copy of the candidates, whose
// vote counts must already be aggregated.
func NewMPO(candidates []models.Candidate, seats, totalBallots int, tb TieBreaker, sink AuditSink) (*MPOTabulator, error) {
	if err := validateSeats(seats, len(candidates)); err != nil {
		return nil, err
	}
	if tb == nil {
		tb = FirstTieBreaker{}
	}

	sum := 0
	for _, c := range candidates {
		sum += c.VoteCount
	}
	if sum != totalBallots {
		slog.Warn("candidate votes do not match ballot total", "votes", sum, "ballots", totalBallots)
	}

	return &MPOTabulator{
		candidates:   copyCandidates(candidates),
		seats:        seats,
		totalBallots: totalBallots,
		tb:           tb,
		audit:        newRecorder(sink),
	}, nil
}

// Events returns the audit events recorded so far.
func (t *MPOTabulator) Events() []models.AuditEvent { return t.audit.snapshot() }

// Run seats exactly the number of seats available.
func (t *MPOTabulator) Run() models.Result {
	if t.result != nil {
		return *t.result
	}

	seed := t.audit.seed(t.tb)
	if t.totalBallots == 0 {
		t.audit.record(models.AuditNoResults, "No ballots. Therefore, no results.")
		return t.finish(seed, true)
	}

	t.audit.record(models.AuditInitialState, "INITIAL STATE OF ELECTION")
	t.audit.record(models.AuditInitialState, "Type of voting: MPO")
	t.audit.record(models.AuditInitialState, "Number of candidates: %d", len(t.candidates))
	t.audit.record(models.AuditInitialState, "Number of ballots: %d", t.totalBallots)
	t.audit.record(models.AuditInitialState, "Number of seats: %d", t.seats)
	for _, c := range t.candidates {
		t.audit.record(models.AuditInitialState, "%s (%s) has %d votes, which is %.2f%%.",
			c.Name, c.Party, c.VoteCount, percent(c.VoteCount, t.totalBallots))
	}

	remaining := make([]int, len(t.candidates))
	for i := range remaining {
		remaining[i] = i
	}

	for len(t.seated) < t.seats {
		var top []int
		for _, c := range remaining {
			switch {
			case len(top) == 0 || t.candidates[c].VoteCount > t.candidates[top[0]].VoteCount:
				top = append(top[:0], c)
			case t.candidates[c].VoteCount == t.candidates[top[0]].VoteCount:
				top = append(top, c)
			}
		}

		seatNo := humanize.Ordinal(len(t.seated) + 1)
		names := make([]string, len(top))
		for i, c := range top {
			names[i] = t.candidates[c].Name
		}
		c := top[t.audit.breakTie(t.tb, fmt.Sprintf("the %s seat", seatNo), names)]

		for i, r := range remaining {
			if r == c {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
		t.seated = append(t.seated, c)

		cand := t.candidates[c]
		t.audit.record(models.AuditSeat, "%s had the most votes with %d and has been awarded the %s seat.",
			cand.Name, cand.VoteCount, seatNo)
	}

	t.audit.record(models.AuditFinal, "ELECTION RESULTS")
	for _, c := range t.seated {
		cand := t.candidates[c]
		t.audit.record(models.AuditFinal, "%s won a seat with %d votes.", cand.Name, cand.VoteCount)
	}
	return t.finish(seed, false)
}

func (t *MPOTabulator) finish(seed int64, noResults bool) models.Result {
	res := models.Result{
		VotingSystem:   models.SystemMPO,
		SeatsAvailable: t.seats,
		TotalBallots:   t.totalBallots,
		NoResults:      noResults,
		Seated:         make([]models.Candidate, 0, len(t.seated)),
		Candidates:     copyCandidates(t.candidates),
		Seed:           seed,
		Events:         t.audit.snapshot(),
	}
	for _, c := range t.seated {
		res.Seated = append(res.Seated, t.candidates[c])
	}
	t.result = &res
	return res
}
