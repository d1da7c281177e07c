// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"github.com/danielhkuo/quickly-tally/models"
)

// IRTabulator runs an instant runoff election.
//
// Candidates and ballots live in flat slices and refer to each other by
// index. holdings[c] lists the ballot handles currently counted for
// candidate c, so candidates[c].VoteCount == len(holdings[c]) between steps.
type IRTabulator struct {
	candidates []models.Candidate
	ballots    []models.Ballot
	active     []bool
	holdings   [][]int

	remaining    int
	totalBallots int
	exhausted    int
	rounds       []models.IRRound
	winner       int

	tb    TieBreaker
	audit *recorder

	result *models.Result
}

// NewIR takes ownership of copies of candidates and ballots and deals every
// ballot to its first preference.
func NewIR(candidates []models.Candidate, ballots []models.Ballot, tb TieBreaker, sink AuditSink) (*IRTabulator, error) {
	if len(candidates) == 0 {
		return nil, &ConfigError{Kind: ErrNoCandidates}
	}
	for _, b := range ballots {
		for _, c := range b.Rankings {
			if c != models.NoCandidate && (c < 0 || c >= len(candidates)) {
				return nil, configf(ErrInvalidBallot, "ballot %d ranks candidate %d of %d", b.ID, c, len(candidates))
			}
		}
	}
	if tb == nil {
		tb = FirstTieBreaker{}
	}

	t := &IRTabulator{
		candidates:   copyCandidates(candidates),
		ballots:      make([]models.Ballot, len(ballots)),
		active:       make([]bool, len(candidates)),
		holdings:     make([][]int, len(candidates)),
		remaining:    len(candidates),
		totalBallots: len(ballots),
		winner:       -1,
		tb:           tb,
		audit:        newRecorder(sink),
	}
	for i := range t.candidates {
		t.candidates[i].VoteCount = 0
		t.active[i] = true
	}
	for i, b := range ballots {
		b.Rankings = append([]int(nil), b.Rankings...)
		t.ballots[i] = b
		if b.Exhausted {
			t.exhausted++
			continue
		}
		if !t.place(i) {
			t.exhausted++
		}
	}
	return t, nil
}

// place counts ballot b for its first active preference at or after its
// current rank, or exhausts it. An absent preference ends the ranking.
func (t *IRTabulator) place(b int) bool {
	ballot := &t.ballots[b]
	for ballot.CurrentRank < len(ballot.Rankings) {
		c := ballot.Rankings[ballot.CurrentRank]
		if c == models.NoCandidate {
			break
		}
		if t.active[c] {
			t.holdings[c] = append(t.holdings[c], b)
			t.candidates[c].VoteCount++
			return true
		}
		ballot.CurrentRank++
	}
	ballot.Exhausted = true
	return false
}

// CheckMajority reports whether an active candidate holds strictly more
// than half of the valid ballots.
func (t *IRTabulator) CheckMajority() bool {
	if t.totalBallots == 0 {
		return false
	}
	for c, cand := range t.candidates {
		if t.active[c] && cand.VoteCount*2 > t.totalBallots {
			return true
		}
	}
	return false
}

// SelectLowest returns the handle of the active candidate with the fewest
// votes, breaking ties with the tie-break policy, and decrements the count of
// live candidates. It returns -1 when no candidate is active.
func (t *IRTabulator) SelectLowest() int {
	lowest := t.extreme(func(a, b int) bool { return a < b })
	if len(lowest) == 0 {
		return -1
	}
	t.remaining--
	return lowest[t.audit.breakTie(t.tb, "last place", t.names(lowest))]
}

// Eliminate moves every ballot held by candidate c to its next active
// preference and marks c eliminated. It returns the number of ballots that
// had no active preference left.
func (t *IRTabulator) Eliminate(c int) int {
	if c < 0 || c >= len(t.candidates) || !t.active[c] {
		return 0
	}
	held := t.holdings[c]
	t.holdings[c] = nil
	t.active[c] = false
	t.candidates[c].VoteCount = 0

	exhausted := 0
	for _, b := range held {
		t.ballots[b].CurrentRank++
		if !t.place(b) {
			exhausted++
		}
	}
	t.exhausted += exhausted
	return exhausted
}

// Run eliminates the lowest candidate until one holds a majority or two
// remain, then declares the active candidate with the most votes.
func (t *IRTabulator) Run() models.Result {
	if t.result != nil {
		return *t.result
	}

	seed := t.audit.seed(t.tb)
	if t.totalBallots == 0 {
		t.audit.record(models.AuditNoResults, "No ballots. Therefore, no results.")
		return t.finish(seed)
	}

	t.auditInitialState()
	for !t.CheckMajority() && t.remaining > 2 {
		lowest := t.SelectLowest()
		votes := t.candidates[lowest].VoteCount
		exhausted := t.Eliminate(lowest)

		round := models.IRRound{
			Number:     len(t.rounds) + 1,
			Eliminated: t.candidates[lowest].Name,
			Votes:      votes,
			Exhausted:  exhausted,
		}
		t.rounds = append(t.rounds, round)

		t.audit.record(models.AuditElimination,
			"Round %d: %s has the fewest votes with %d ballots and is eliminated; %d ballot(s) exhausted.",
			round.Number, round.Eliminated, votes, exhausted)
		t.auditTotals()
	}

	top := t.extreme(func(a, b int) bool { return a > b })
	t.winner = top[t.audit.breakTie(t.tb, "first place", t.names(top))]
	w := t.candidates[t.winner]
	t.audit.record(models.AuditFinal, "%s has won with %d votes, which is %.2f%%.",
		w.Name, w.VoteCount, percent(w.VoteCount, t.totalBallots))

	return t.finish(seed)
}

// Winner returns the declared winner once Run has completed.
func (t *IRTabulator) Winner() (models.Candidate, bool) {
	if t.winner < 0 {
		return models.Candidate{}, false
	}
	return t.candidates[t.winner], true
}

// Candidate returns the live record for handle c.
func (t *IRTabulator) Candidate(c int) models.Candidate { return t.candidates[c] }

// Active reports whether candidate c is still in the running.
func (t *IRTabulator) Active(c int) bool { return t.active[c] }

// Remaining is the live-candidate counter maintained by SelectLowest.
func (t *IRTabulator) Remaining() int { return t.remaining }

// Exhausted is the number of ballots that no longer count for anyone.
func (t *IRTabulator) Exhausted() int { return t.exhausted }

// Ballot returns the current state of ballot handle b.
func (t *IRTabulator) Ballot(b int) models.Ballot { return t.ballots[b] }

// Events returns the audit events recorded so far.
func (t *IRTabulator) Events() []models.AuditEvent { return t.audit.snapshot() }

// extreme returns the active candidates whose count wins every comparison
// under better, in input order.
func (t *IRTabulator) extreme(better func(a, b int) bool) []int {
	var out []int
	for c, cand := range t.candidates {
		if !t.active[c] {
			continue
		}
		if len(out) == 0 || better(cand.VoteCount, t.candidates[out[0]].VoteCount) {
			out = append(out[:0], c)
		} else if cand.VoteCount == t.candidates[out[0]].VoteCount {
			out = append(out, c)
		}
	}
	return out
}

func (t *IRTabulator) names(handles []int) []string {
	names := make([]string, len(handles))
	for i, c := range handles {
		names[i] = t.candidates[c].Name
	}
	return names
}

func (t *IRTabulator) auditInitialState() {
	t.audit.record(models.AuditInitialState, "INITIAL STATE OF ELECTION")
	t.audit.record(models.AuditInitialState, "Type of voting: IR")
	t.audit.record(models.AuditInitialState, "Number of candidates: %d", len(t.candidates))
	t.audit.record(models.AuditInitialState, "Number of ballots: %d", t.totalBallots)
	for _, c := range t.candidates {
		t.audit.record(models.AuditInitialState, "%s (%s) has %d ballots, which is %.2f%%.",
			c.Name, c.Party, c.VoteCount, percent(c.VoteCount, t.totalBallots))
	}
}

func (t *IRTabulator) auditTotals() {
	for c, cand := range t.candidates {
		if !t.active[c] {
			continue
		}
		t.audit.record(models.AuditTotals, "%s now has %d ballots, which is %.2f%%.",
			cand.Name, cand.VoteCount, percent(cand.VoteCount, t.totalBallots))
	}
}

func (t *IRTabulator) finish(seed int64) models.Result {
	res := models.Result{
		VotingSystem:   models.SystemIR,
		SeatsAvailable: 1,
		TotalBallots:   t.totalBallots,
		NoResults:      t.winner < 0,
		Seated:         []models.Candidate{},
		Candidates:     copyCandidates(t.candidates),
		Rounds:         t.rounds,
		Exhausted:      t.exhausted,
		Seed:           seed,
		Events:         t.audit.snapshot(),
	}
	if t.winner >= 0 {
		w := t.candidates[t.winner]
		res.Winner = &w
		res.Seated = []models.Candidate{w}
	}
	t.result = &res
	return res
}
