// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
	"time"
)

// VotingSystem is the rule tag carried in the first line of a ballot file
type VotingSystem string

// Voting system constants
const (
	SystemIR  VotingSystem = "IR"
	SystemOPL VotingSystem = "OPL"
	SystemMPO VotingSystem = "MPO"
)

// ParseVotingSystem normalizes a rule tag
func ParseVotingSystem(s string) (VotingSystem, error) {
	switch VotingSystem(strings.ToUpper(strings.TrimSpace(s))) {
	case SystemIR:
		return SystemIR, nil
	case SystemOPL:
		return SystemOPL, nil
	case SystemMPO:
		return SystemMPO, nil
	}
	return "", fmt.Errorf("unknown voting system %q", s)
}

// NoCandidate marks an absent preference in a ranked ballot
const NoCandidate = -1

// Domain types

type Candidate struct {
	Name           string `json:"name"`
	Party          string `json:"party"`
	BallotPosition int    `json:"ballot_position"`
	VoteCount      int    `json:"vote_count"`
}

// Ballot is a ranked IR ballot. Rankings holds candidate handles (indexes into
// the election's candidate slice) in preference order.
type Ballot struct {
	ID          int   `json:"id"`
	Rankings    []int `json:"rankings"`
	CurrentRank int   `json:"current_rank"`
	Exhausted   bool  `json:"exhausted"`
}

// Party is an OPL party; Members are sorted by descending vote count
type Party struct {
	Name       string      `json:"name"`
	TotalVotes int         `json:"total_votes"`
	Remainder  int         `json:"remainder"`
	SeatsWon   int         `json:"seats_won"`
	Members    []Candidate `json:"members"`
}

// Election is everything the loader hands to the tabulator
type Election struct {
	VotingSystem      VotingSystem `json:"voting_system"`
	SeatsAvailable    int          `json:"seats_available"`
	Candidates        []Candidate  `json:"candidates"`
	TotalValidBallots int          `json:"total_valid_ballots"`
	Ballots           []Ballot     `json:"-"` // IR only
	DeclaredBallots   int          `json:"declared_ballots"`
	InvalidBallots    []string     `json:"-"` // raw rows rejected by the loader
}

// Audit event kinds
const (
	AuditInitialState = "initial_state"
	AuditSeed         = "seed"
	AuditElimination  = "elimination"
	AuditTotals       = "totals"
	AuditTie          = "tie"
	AuditQuota        = "quota"
	AuditSeat         = "seat"
	AuditRoundSummary = "round_summary"
	AuditNoResults    = "no_results"
	AuditFinal        = "final"
)

type AuditEvent struct {
	Seq     int    `json:"seq"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result Types

// IRRound summarizes one elimination round
type IRRound struct {
	Number     int    `json:"number"`
	Eliminated string `json:"eliminated"`
	Votes      int    `json:"votes"`
	Exhausted  int    `json:"exhausted"`
}

type Result struct {
	VotingSystem   VotingSystem   `json:"voting_system"`
	SeatsAvailable int            `json:"seats_available"`
	TotalBallots   int            `json:"total_ballots"`
	NoResults      bool           `json:"no_results"`
	Winner         *Candidate     `json:"winner,omitempty"`
	Seated         []Candidate    `json:"seated"`
	ByParty        map[string]int `json:"by_party,omitempty"`
	Quota          int            `json:"quota,omitempty"`
	Candidates     []Candidate    `json:"candidates"`
	Parties        []Party        `json:"parties,omitempty"`
	Rounds         []IRRound      `json:"rounds,omitempty"`
	Exhausted      int            `json:"exhausted"`
	Seed           int64          `json:"seed"`
	Events         []AuditEvent   `json:"-"`
}

type ResultSnapshot struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Method     string    `json:"method"`
	ComputedAt time.Time `json:"computed_at"`
	Result     Result    `json:"result"`
	InputsHash string    `json:"inputs_hash"`
}

// Run is the stored record of one tabulation
type Run struct {
	ID             string       `json:"id"`
	VotingSystem   VotingSystem `json:"voting_system"`
	SeatsAvailable int          `json:"seats_available"`
	Candidates     int          `json:"candidates"`
	Ballots        int          `json:"ballots"`
	InvalidBallots int          `json:"invalid_ballots"`
	Seed           int64        `json:"seed"`
	InputsHash     string       `json:"inputs_hash"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Response types

type TabulateResponse struct {
	RunID          string   `json:"run_id"`
	Code           string   `json:"code"`
	InputsHash     string   `json:"inputs_hash"`
	InvalidBallots []string `json:"invalid_ballots"`
	Result         Result   `json:"result"`
}

type AuditResponse struct {
	RunID  string       `json:"run_id"`
	Events []AuditEvent `json:"events"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
