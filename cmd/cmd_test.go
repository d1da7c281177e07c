// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/tally"
	"github.com/danielhkuo/quickly-tally/testutil"
)

// runCLI executes the command tree in a fresh working directory
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestTallyCommand(t *testing.T) {
	tests := []struct {
		name           string
		contents       string
		expectedOutput []string
		expectedAudit  []string
	}{
		{
			name:           "instant runoff",
			contents:       testutil.SampleIR,
			expectedOutput: []string{"IR election results:", "Chen won with 6 votes (60.00%)", "1 invalid ballot(s)"},
			expectedAudit:  []string{"Tie-break seed: 3", "Round 1: Alvarez has the fewest votes"},
		},
		{
			name:           "open party list",
			contents:       testutil.SampleOPL,
			expectedOutput: []string{"Quota: 3 votes per seat", "D: 5 votes, 2 seat(s)"},
			expectedAudit:  []string{"Quota: 9 ballots / 3 seats = 3 votes per seat.", "FINAL RESULTS"},
		},
		{
			name:           "multiple popularity only",
			contents:       testutil.SampleMPO,
			expectedOutput: []string{"1st seat: Pike (D) with 3 votes"},
			expectedAudit:  []string{"Tie for the 2nd seat between Foster, Deutsch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			path := testutil.WriteBallotFile(t, tt.contents)

			out, err := runCLI(t, "", "tally", path, "--seed", "3")
			if err != nil {
				t.Fatalf("tally failed: %v", err)
			}

			for _, want := range tt.expectedOutput {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
			auditText := readFile(t, "auditFile.txt")
			for _, want := range tt.expectedAudit {
				if !strings.Contains(auditText, want) {
					t.Errorf("Expected audit file to contain %q", want)
				}
			}
		})
	}
}

func TestTallyCommand_InvalidBallotsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := testutil.WriteBallotFile(t, testutil.SampleIR)
	invalid := filepath.Join(dir, "rejected.csv")

	if _, err := runCLI(t, "", "tally", path, "--invalid-file", invalid); err != nil {
		t.Fatalf("tally failed: %v", err)
	}

	if got := readFile(t, invalid); got != "1,,\n" {
		t.Errorf("Expected the rejected row, got %q", got)
	}
}

func TestTallyCommand_AuditFileIsAppended(t *testing.T) {
	t.Chdir(t.TempDir())
	path := testutil.WriteBallotFile(t, testutil.SampleMPO)

	for range 2 {
		if _, err := runCLI(t, "", "tally", path, "-s", "11"); err != nil {
			t.Fatalf("tally failed: %v", err)
		}
	}

	if got := strings.Count(readFile(t, "auditFile.txt"), "Tie-break seed: 11"); got != 2 {
		t.Errorf("Expected two runs in the audit file, got %d", got)
	}
}

func TestTallyCommand_PromptsForFilename(t *testing.T) {
	t.Chdir(t.TempDir())
	path := testutil.WriteBallotFile(t, testutil.SampleMPO)

	out, err := runCLI(t, path+"\n", "tally")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if !strings.HasPrefix(out, "Please Enter Filename:") {
		t.Errorf("Expected filename prompt, got %q", out)
	}
	if !strings.Contains(out, "MPO election results:") {
		t.Errorf("Expected results after prompt, got %q", out)
	}

	_, err = runCLI(t, "\n", "tally")
	if err == nil {
		t.Error("Expected an error for an empty filename")
	}
}

func TestTallyCommand_Workbook(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := testutil.WriteBallotFile(t, testutil.SampleOPL)
	xlsx := filepath.Join(dir, "results.xlsx")

	if _, err := runCLI(t, "", "tally", path, "-r", xlsx); err != nil {
		t.Fatalf("tally failed: %v", err)
	}

	f, err := excelize.OpenFile(xlsx)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Results", "Candidates", "Parties"} {
		if !slices.Contains(sheets, want) {
			t.Errorf("Expected sheet %s, got %v", want, sheets)
		}
	}
}

func TestTallyCommand_PersistsRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := testutil.WriteBallotFile(t, testutil.SampleIR)
	dbPath := filepath.Join(dir, "runs.db")

	out, err := runCLI(t, "", "tally", path, "-d", dbPath, "-s", "8")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if !strings.Contains(out, "saved (code ") {
		t.Errorf("Expected save confirmation, got:\n%s", out)
	}

	store, err := db.Open(db.TypeSQLite, dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 stored run, got %d", len(runs))
	}
	if runs[0].Seed != 8 || runs[0].InvalidBallots != 1 {
		t.Errorf("Unexpected run %+v", runs[0])
	}
}

func TestTallyCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "missing file",
			contents: "",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, os.ErrNotExist) {
					t.Errorf("Expected not-exist error, got %v", err)
				}
			},
		},
		{
			name:     "too many seats",
			contents: "MPO\n3\n2\n[A, D], [B, R]\n1\n1,\n",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, tally.ErrConfiguration) || !errors.Is(err, tally.ErrInvalidSeats) {
					t.Errorf("Expected invalid seats configuration error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := filepath.Join(dir, "missing.csv")
			if tt.contents != "" {
				path = testutil.WriteBallotFile(t, tt.contents)
			}

			_, err := runCLI(t, "", "tally", path)
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestServeCommand_RequiresDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")

	_, err := runCLI(t, "", "serve")
	if err == nil || !strings.Contains(err.Error(), "database URL required") {
		t.Errorf("Expected database URL error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "Version:    "+Version) {
		t.Errorf("Expected version line, got %q", out)
	}
}
