// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-tally/models"
)

type memorySink struct {
	lines []string
}

func (s *memorySink) Append(text string) error {
	s.lines = append(s.lines, text)
	return nil
}

type failingSink struct {
	calls int
}

func (s *failingSink) Append(string) error {
	s.calls++
	return errors.New("disk full")
}

// lastTieBreaker always picks the last tied entity
var lastTieBreaker = TieBreakerFunc(func(n int) int { return n - 1 })

func candidates(specs ...string) []models.Candidate {
	out := make([]models.Candidate, len(specs))
	for i, s := range specs {
		name, party, _ := strings.Cut(s, "/")
		out[i] = models.Candidate{Name: name, Party: party, BallotPosition: i}
	}
	return out
}

func withVotes(cands []models.Candidate, votes ...int) []models.Candidate {
	for i := range cands {
		cands[i].VoteCount = votes[i]
	}
	return cands
}

// ballots builds IR ballots from preference lists, repeating each n times
func ballots(groups ...struct {
	n     int
	prefs []int
}) []models.Ballot {
	var out []models.Ballot
	for _, g := range groups {
		for range g.n {
			out = append(out, models.Ballot{ID: len(out) + 1, Rankings: append([]int(nil), g.prefs...)})
		}
	}
	return out
}

func group(n int, prefs ...int) struct {
	n     int
	prefs []int
} {
	return struct {
		n     int
		prefs []int
	}{n, prefs}
}

func sumVotes(cands []models.Candidate) int {
	total := 0
	for _, c := range cands {
		total += c.VoteCount
	}
	return total
}

func countKind(events []models.AuditEvent, kind string) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func seatedNames(res models.Result) []string {
	names := make([]string, len(res.Seated))
	for i, c := range res.Seated {
		names[i] = c.Name
	}
	return names
}

func assertConfigError(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected configuration error, got nil")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected error to match ErrConfiguration, got %v", err)
	}
	if !errors.Is(err, kind) {
		t.Errorf("Expected error to match %v, got %v", kind, err)
	}
}
