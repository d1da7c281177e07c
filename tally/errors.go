// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigError.
	ErrConfiguration = errors.New("invalid election configuration")

	ErrNoCandidates  = errors.New("no candidates")
	ErrInvalidSeats  = errors.New("invalid number of seats")
	ErrUnknownSystem = errors.New("unknown voting system")
	ErrInvalidBallot = errors.New("ballot references unknown candidate")
)

// ConfigError is returned before any tabulation state is touched.
type ConfigError struct {
	Kind error
	Msg  string
}

// Error names the configuration problem and its detail.
func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Kind, e.Msg)
}

// Unwrap lets errors.Is match both ErrConfiguration and the specific kind.
func (e *ConfigError) Unwrap() []error { return []error{ErrConfiguration, e.Kind} }

func configf(kind error, format string, args ...any) error {
	return &ConfigError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func validateSeats(seats, candidates int) error {
	if candidates == 0 {
		return &ConfigError{Kind: ErrNoCandidates}
	}
	if seats <= 0 {
		return configf(ErrInvalidSeats, "seats available must be positive, got %d", seats)
	}
	if seats > candidates {
		return configf(ErrInvalidSeats, "%d seats available but only %d candidates", seats, candidates)
	}
	return nil
}
