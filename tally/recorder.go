// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quickly-tally/models"
)

// AuditSink durably records one line of progress text.
type AuditSink interface {
	Append(text string) error
}

// recorder keeps every audit line in memory and forwards it to the sink.
// Sink failures are logged and never abort tabulation.
type recorder struct {
	sink   AuditSink
	events []models.AuditEvent
}

func newRecorder(sink AuditSink) *recorder {
	return &recorder{sink: sink}
}

func (r *recorder) record(kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.events = append(r.events, models.AuditEvent{
		Seq:     len(r.events) + 1,
		Kind:    kind,
		Message: msg,
	})
	if r.sink == nil {
		return
	}
	if err := r.sink.Append(msg); err != nil {
		slog.Warn("audit append failed", "kind", kind, "error", err)
	}
}

// seed records the tie-break seed when the policy has one.
func (r *recorder) seed(tb TieBreaker) int64 {
	seed, ok := seedOf(tb)
	if ok {
		r.record(models.AuditSeed, "Tie-break seed: %d", seed)
	}
	return seed
}

// breakTie asks tb to choose among names and audits the decision.
// A group of one is not a tie and is not recorded.
func (r *recorder) breakTie(tb TieBreaker, subject string, names []string) int {
	if len(names) <= 1 {
		return 0
	}
	i := tb.Pick(len(names))
	if i < 0 || i >= len(names) {
		slog.Warn("tie-break index out of range", "index", i, "tied", len(names))
		i = 0
	}
	r.record(models.AuditTie, "Tie for %s between %s; %s was chosen at random.",
		subject, strings.Join(names, ", "), names[i])
	return i
}

func (r *recorder) snapshot() []models.AuditEvent {
	out := make([]models.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}

func percent(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}

func copyCandidates(in []models.Candidate) []models.Candidate {
	out := make([]models.Candidate, len(in))
	copy(out, in)
	return out
}
