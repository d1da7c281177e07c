// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/db"
)

// Sample ballot files, one per voting system

// SampleIR: C leads with 5 of 10 (not a majority); A is eliminated and
// transfers to B and C, so C wins 6-4.
const SampleIR = `IR
3
Alvarez (D), Baker (R), Chen (I)
11
1,2,3
1,3,2
2,1,
2,1,
2,1,
,2,1
,2,1
,2,1
,2,1
,2,1
1,,
`

// SampleOPL: quota 9/3 = 3. D has 5 (1 seat, remainder 2), R has 3 (1 seat,
// remainder 0), I has 1 (remainder 1); the last seat goes to D.
const SampleOPL = `OPL
4
Pike (D), Foster (D), Deutsch (R), Smith (I)
3
9
1,,,
1,,,
1,,,
,1,,
,1,,
,,1,
,,1,
,,1,
,,,1
`

// SampleMPO: Pike 3, Foster 2, Deutsch 2, Borg 1 for 2 seats, so Foster and
// Deutsch tie for the second seat.
const SampleMPO = `MPO
2
4
[Pike, D], [Foster, D], [Deutsch, R], [Borg, R]
8
1,,,
1,,,
1,,,
,1,,
,1,,
,,1,
,,1,
,,,1
`

// SetupTestStore opens an in-memory SQLite store with the full schema
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.DatabaseURL = ":memory:"
	cfg.InputsSalt = "test-inputs-salt"
	return cfg
}

// WriteBallotFile writes contents to a file in a fresh temp dir and returns its path
func WriteBallotFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "election.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write ballot file: %v", err)
	}
	return path
}

// RecordingSink keeps every audit line in memory
type RecordingSink struct {
	mu    sync.Mutex
	Lines []string
}

func (s *RecordingSink) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lines = append(s.Lines, text)
	return nil
}

// Contains reports whether any recorded line contains substr
func (s *RecordingSink) Contains(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.Lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// MakeRequest creates an HTTP test request. A string body is sent as-is
// (ballot files); anything else is sent as JSON.
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
		req.Header.Set("Content-Type", "text/csv")
	default:
		jsonBody, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
