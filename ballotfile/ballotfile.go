// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballotfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/danielhkuo/quickly-tally/models"
)

var (
	ErrMalformedHeader     = errors.New("malformed ballot file header")
	ErrUnknownVotingSystem = errors.New("unknown voting system")
)

// Load opens path and parses it.
func Load(path string) (models.Election, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Election{}, fmt.Errorf("open ballot file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a complete ballot file from r.
func Parse(r io.Reader) (models.Election, error) {
	br := bufio.NewReader(r)
	h := &headerReader{r: br}

	tag, err := h.line()
	if err != nil {
		return models.Election{}, err
	}
	system, err := models.ParseVotingSystem(tag)
	if err != nil {
		return models.Election{}, fmt.Errorf("%w: %q", ErrUnknownVotingSystem, tag)
	}

	e := models.Election{VotingSystem: system, SeatsAvailable: 1}
	var numCandidates int

	switch system {
	case models.SystemMPO:
		if e.SeatsAvailable, err = h.int("seats"); err != nil {
			return models.Election{}, err
		}
		if numCandidates, err = h.int("candidates"); err != nil {
			return models.Election{}, err
		}
	default:
		if numCandidates, err = h.int("candidates"); err != nil {
			return models.Election{}, err
		}
	}

	line, err := h.line()
	if err != nil {
		return models.Election{}, err
	}
	if system == models.SystemMPO {
		e.Candidates, err = bracketedCandidates(line, numCandidates)
	} else {
		e.Candidates, err = parenthesizedCandidates(line, numCandidates)
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("%w: line %d: %v", ErrMalformedHeader, h.n, err)
	}

	if system == models.SystemOPL {
		if e.SeatsAvailable, err = h.int("seats"); err != nil {
			return models.Election{}, err
		}
	}
	if e.DeclaredBallots, err = h.int("ballots"); err != nil {
		return models.Election{}, err
	}

	rows := csv.NewReader(br)
	rows.FieldsPerRecord = -1
	rows.TrimLeadingSpace = true
	rows.ReuseRecord = true

	for {
		rec, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Election{}, fmt.Errorf("read ballots: %w", err)
		}
		if system == models.SystemIR {
			addRanked(&e, rec)
		} else {
			addMarked(&e, rec)
		}
	}

	rowCount := e.TotalValidBallots + len(e.InvalidBallots)
	if rowCount != e.DeclaredBallots {
		slog.Warn("ballot count in header does not match ballot rows",
			"declared", e.DeclaredBallots, "rows", rowCount)
	}
	slog.Debug("ballot file loaded",
		"system", e.VotingSystem,
		"candidates", len(e.Candidates),
		"seats", e.SeatsAvailable,
		"valid", e.TotalValidBallots,
		"invalid", len(e.InvalidBallots))

	return e, nil
}

// addRanked validates one IR row and appends it as a ballot in rank order.
func addRanked(e *models.Election, rec []string) {
	n := len(e.Candidates)
	byRank := make([]int, n)
	for i := range byRank {
		byRank[i] = models.NoCandidate
	}

	ranked := 0
	valid := true
	for col, field := range rec {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		rank, err := strconv.Atoi(field)
		if col >= n || err != nil || rank < 1 || rank > n || byRank[rank-1] != models.NoCandidate {
			valid = false
			break
		}
		byRank[rank-1] = col
		ranked++
	}
	if !valid || ranked < (n+1)/2 {
		e.InvalidBallots = append(e.InvalidBallots, strings.Join(rec, ","))
		return
	}

	// A skipped rank stays as NoCandidate and ends the ballot there
	last := len(byRank) - 1
	for byRank[last] == models.NoCandidate {
		last--
	}
	prefs := append([]int(nil), byRank[:last+1]...)
	e.Ballots = append(e.Ballots, models.Ballot{
		ID:       len(e.Ballots) + 1,
		Rankings: prefs,
	})
	e.TotalValidBallots++
}

// addMarked credits the first marked column of an OPL or MPO row.
func addMarked(e *models.Election, rec []string) {
	for col, field := range rec {
		if strings.TrimSpace(field) == "" {
			continue
		}
		if col >= len(e.Candidates) {
			break
		}
		e.Candidates[col].VoteCount++
		e.TotalValidBallots++
		return
	}
	e.InvalidBallots = append(e.InvalidBallots, strings.Join(rec, ","))
}

// parenthesizedCandidates parses "Name (P), Name (P), ...".
func parenthesizedCandidates(line string, n int) ([]models.Candidate, error) {
	parts := strings.Split(line, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d candidates, found %d", n, len(parts))
	}
	out := make([]models.Candidate, n)
	for i, p := range parts {
		name, rest, ok := strings.Cut(p, "(")
		party, _, closed := strings.Cut(rest, ")")
		name, party = strings.TrimSpace(name), strings.TrimSpace(party)
		if !ok || !closed || name == "" || party == "" {
			return nil, fmt.Errorf("candidate %d: want \"Name (Party)\", got %q", i+1, strings.TrimSpace(p))
		}
		out[i] = models.Candidate{Name: name, Party: party, BallotPosition: i}
	}
	return out, nil
}

// bracketedCandidates parses "[Name, P], [Name, P], ...".
func bracketedCandidates(line string, n int) ([]models.Candidate, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return nil, fmt.Errorf("want \"[Name, Party], ...\", got %q", line)
	}
	parts := strings.Split(line[1:len(line)-1], "]")
	out := make([]models.Candidate, 0, n)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i > 0 {
			p = strings.TrimSpace(strings.TrimPrefix(p, ","))
			p = strings.TrimPrefix(p, "[")
		}
		name, party, ok := strings.Cut(p, ",")
		name, party = strings.TrimSpace(name), strings.TrimSpace(party)
		if !ok || name == "" || party == "" {
			return nil, fmt.Errorf("candidate %d: want \"[Name, Party]\", got %q", i+1, p)
		}
		out = append(out, models.Candidate{Name: name, Party: party, BallotPosition: i})
	}
	if len(out) != n {
		return nil, fmt.Errorf("expected %d candidates, found %d", n, len(out))
	}
	return out, nil
}

type headerReader struct {
	r *bufio.Reader
	n int
}

func (h *headerReader) line() (string, error) {
	s, err := h.r.ReadString('\n')
	h.n++
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("%w: line %d: unexpected end of file", ErrMalformedHeader, h.n)
	}
	return strings.TrimSpace(s), nil
}

func (h *headerReader) int(field string) (int, error) {
	s, err := h.line()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: line %d: %s must be a non-negative integer, got %q", ErrMalformedHeader, h.n, field, s)
	}
	return v, nil
}

// WriteInvalid appends the rejected rows to path, one per line. Nothing is
// written when rows is empty.
func WriteInvalid(path string, rows []string) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open invalid ballot file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, row := range rows {
		w.WriteString(row)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write invalid ballots: %w", err)
	}
	return f.Close()
}
