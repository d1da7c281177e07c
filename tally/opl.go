// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-tally/models"
)

// OPLTabulator allocates seats to parties by quota and largest remainder,
// then to each party's candidates in descending vote order.
type OPLTabulator struct {
	candidates   []models.Candidate
	seats        int
	totalBallots int

	parties []*oplParty
	seated  []int
	quota   int

	tb    TieBreaker
	audit *recorder

	result *models.Result
}

type oplParty struct {
	name      string
	total     int
	remainder int
	seatsWon  int
	members   []int // candidate handles, descending vote count
}

func (p *oplParty) hasUnseated() bool { return p.seatsWon < len(p.members) }

// NewOPL validates the seat count and takes a copy of the candidates, whose
// vote counts must already be aggregated.
func NewOPL(candidates []models.Candidate, seats, totalBallots int, tb TieBreaker, sink AuditSink) (*OPLTabulator, error) {
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

	return &OPLTabulator{
		candidates:   copyCandidates(candidates),
		seats:        seats,
		totalBallots: totalBallots,
		tb:           tb,
		audit:        newRecorder(sink),
	}, nil
}

// Events returns the audit events recorded so far.
func (t *OPLTabulator) Events() []models.AuditEvent { return t.audit.snapshot() }

// Run performs both seating rounds and returns the seat allocation.
func (t *OPLTabulator) Run() models.Result {
	if t.result != nil {
		return *t.result
	}

	seed := t.audit.seed(t.tb)
	if t.totalBallots == 0 {
		t.audit.record(models.AuditNoResults, "No ballots. Therefore, no results.")
		return t.finish(seed, true)
	}

	t.groupParties()
	t.auditInitialState()

	t.quota = t.totalBallots / t.seats
	if t.quota == 0 {
		// fewer ballots than seats: every vote is worth a seat
		t.quota = 1
	}
	t.audit.record(models.AuditQuota, "Quota: %d ballots / %d seats = %d votes per seat.",
		t.totalBallots, t.seats, t.quota)

	t.seatFirstRound()
	t.seatSecondRound()

	t.audit.record(models.AuditFinal, "FINAL RESULTS")
	for _, c := range t.seated {
		cand := t.candidates[c]
		t.audit.record(models.AuditFinal, "%s was seated for the %s party with %d votes.",
			cand.Name, cand.Party, cand.VoteCount)
	}
	return t.finish(seed, false)
}

// groupParties builds one party per distinct name in order of first
// appearance and stable-sorts each party's members by descending votes.
func (t *OPLTabulator) groupParties() {
	byName := make(map[string]*oplParty)
	for c, cand := range t.candidates {
		p, ok := byName[cand.Party]
		if !ok {
			p = &oplParty{name: cand.Party}
			byName[cand.Party] = p
			t.parties = append(t.parties, p)
		}
		p.members = append(p.members, c)
		p.total += cand.VoteCount
	}
	for _, p := range t.parties {
		sort.SliceStable(p.members, func(i, j int) bool {
			return t.candidates[p.members[i]].VoteCount > t.candidates[p.members[j]].VoteCount
		})
	}
}

// seatFirstRound awards floor(total / quota) seats per party. Parties are
// visited by descending total so that seats run out at the smallest parties
// when the quotas overshoot the seats available.
func (t *OPLTabulator) seatFirstRound() {
	order := append([]*oplParty(nil), t.parties...)
	sort.SliceStable(order, func(i, j int) bool { return order[i].total > order[j].total })

	for _, p := range order {
		p.remainder = p.total % t.quota
		n := min(p.total/t.quota, len(p.members), t.seatsLeft())
		for range n {
			c := t.seat(p)
			t.audit.record(models.AuditSeat, "%s has been seated for the %s party.",
				t.candidates[c].Name, p.name)
		}
	}

	t.audit.record(models.AuditRoundSummary, "FIRST ROUND RESULTS")
	for _, p := range t.parties {
		t.audit.record(models.AuditRoundSummary,
			"%s has been allocated %d seat(s) in the first round with %d remaining votes.",
			p.name, p.seatsWon, p.remainder)
	}
	t.audit.record(models.AuditRoundSummary, "There are %d seat(s) left to allocate.", t.seatsLeft())
}

// seatSecondRound hands out the seats left one at a time by descending
// remainder. Parties tied on remainder are drawn without replacement until
// the tied group is used up or the seats are; a further pass starts only
// after every eligible party has had its turn.
func (t *OPLTabulator) seatSecondRound() {
	for t.seatsLeft() > 0 {
		var ranked []*oplParty
		for _, p := range t.parties {
			if p.hasUnseated() {
				ranked = append(ranked, p)
			}
		}
		if len(ranked) == 0 {
			slog.Warn("seats left with no unseated candidates", "seats_left", t.seatsLeft())
			return
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].remainder > ranked[j].remainder })

		for i := 0; i < len(ranked) && t.seatsLeft() > 0; {
			j := i
			for j < len(ranked) && ranked[j].remainder == ranked[i].remainder {
				j++
			}
			group := append([]*oplParty(nil), ranked[i:j]...)
			for len(group) > 0 && t.seatsLeft() > 0 {
				k := t.audit.breakTie(t.tb, "a remaining seat", partyNames(group))
				p := group[k]
				group = append(group[:k], group[k+1:]...)

				c := t.seat(p)
				t.audit.record(models.AuditSeat,
					"%s was seated for the %s party with their %d remaining votes (%s seat).",
					t.candidates[c].Name, p.name, p.remainder, humanize.Ordinal(len(t.seated)))
			}
			i = j
		}
	}
}

func (t *OPLTabulator) seat(p *oplParty) int {
	c := p.members[p.seatsWon]
	p.seatsWon++
	t.seated = append(t.seated, c)
	return c
}

func (t *OPLTabulator) seatsLeft() int { return t.seats - len(t.seated) }

func partyNames(parties []*oplParty) []string {
	names := make([]string, len(parties))
	for i, p := range parties {
		names[i] = p.name
	}
	return names
}

func (t *OPLTabulator) auditInitialState() {
	t.audit.record(models.AuditInitialState, "INITIAL STATE OF ELECTION")
	t.audit.record(models.AuditInitialState, "Type of voting: OPL")
	t.audit.record(models.AuditInitialState, "Number of candidates: %d", len(t.candidates))
	t.audit.record(models.AuditInitialState, "Number of ballots: %d", t.totalBallots)
	t.audit.record(models.AuditInitialState, "Number of seats: %d", t.seats)
	for _, c := range t.candidates {
		t.audit.record(models.AuditInitialState, "%s: %s with %d votes", c.Party, c.Name, c.VoteCount)
	}
	for _, p := range t.parties {
		t.audit.record(models.AuditInitialState, "%s has %d total votes.", p.name, p.total)
	}
}

func (t *OPLTabulator) finish(seed int64, noResults bool) models.Result {
	res := models.Result{
		VotingSystem:   models.SystemOPL,
		SeatsAvailable: t.seats,
		TotalBallots:   t.totalBallots,
		NoResults:      noResults,
		Seated:         make([]models.Candidate, 0, len(t.seated)),
		ByParty:        make(map[string]int, len(t.parties)),
		Quota:          t.quota,
		Candidates:     copyCandidates(t.candidates),
		Seed:           seed,
		Events:         t.audit.snapshot(),
	}
	for _, c := range t.seated {
		res.Seated = append(res.Seated, t.candidates[c])
	}
	for _, p := range t.parties {
		res.ByParty[p.name] = p.seatsWon
		party := models.Party{
			Name:       p.name,
			TotalVotes: p.total,
			Remainder:  p.remainder,
			SeatsWon:   p.seatsWon,
			Members:    make([]models.Candidate, len(p.members)),
		}
		for i, c := range p.members {
			party.Members[i] = t.candidates[c]
		}
		res.Parties = append(res.Parties, party)
	}
	t.result = &res
	return res
}
