// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink durably records one line of audit text.
type Sink interface {
	Append(text string) error
}

// FileSink appends lines to a file opened in append mode.
type FileSink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// OpenFile opens (creating if needed) path for appending.
func OpenFile(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileSink{f: f, path: path}, nil
}

// Append writes text as one line. It fails once the sink is closed.
func (s *FileSink) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("audit file %s is closed", s.path)
	}
	if _, err := io.WriteString(s.f, text+"\n"); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}

// Path returns the file being appended to.
func (s *FileSink) Path() string { return s.path }

// Close closes the file. Calling it again is a no-op.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// WriterSink appends lines to an arbitrary writer, e.g. os.Stdout.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

// Append writes text followed by a newline.
func (s *WriterSink) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.W, text+"\n")
	return err
}

type multi []Sink

// Multi returns a sink that appends to every non-nil sink in order. Every
// sink is attempted; the errors are joined.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Append(text string) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type discard struct{}

func (discard) Append(string) error { return nil }

// Discard drops every line.
var Discard Sink = discard{}
