// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-tally/audit"
	"github.com/danielhkuo/quickly-tally/ballotfile"
	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/digest"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/report"
	"github.com/danielhkuo/quickly-tally/tally"
)

func newTallyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tally [ballot-file]",
		Short: "Count a ballot file and print the results",
		Long: `Count a ballot file and print the results.

The audit trail is appended to --audit-file and rejected IR ballots to
--invalid-file. With --report the results are also written as an XLSX
workbook; with --database-url the run is stored for the HTTP API.

When no file is given the filename is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runTally(cmd, cfg)
		},
	}
}

func runTally(cmd *cobra.Command, cfg cliparse.Config) error {
	out := cmd.OutOrStdout()

	path := cfg.BallotFile
	if path == "" {
		p, err := promptFilename(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		path = p
	}

	election, err := ballotfile.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = tally.NewSeed(); err != nil {
			return err
		}
	}

	fileSink, err := audit.OpenFile(cfg.AuditFile)
	if err != nil {
		return err
	}
	defer fileSink.Close()

	var sink audit.Sink = fileSink
	if cfg.Verbose {
		sink = audit.Multi(fileSink, &audit.WriterSink{W: cmd.ErrOrStderr()})
	}

	start := time.Now()
	result, err := tally.Tabulate(election, tally.NewRandomTieBreaker(seed), sink)
	if err != nil {
		return err
	}
	slog.Debug("tabulation complete",
		"system", result.VotingSystem,
		"seed", seed,
		"events", len(result.Events),
		"duration_ms", time.Since(start).Milliseconds())

	if err := ballotfile.WriteInvalid(cfg.InvalidFile, election.InvalidBallots); err != nil {
		return err
	}

	if err := report.WriteText(out, result); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Fprintf(out, "\nAudit trail written to %s\n", fileSink.Path())
	if n := len(election.InvalidBallots); n > 0 {
		fmt.Fprintf(out, "%d invalid ballot(s) written to %s\n", n, cfg.InvalidFile)
	}

	if cfg.ReportFile != "" {
		if err := report.WriteWorkbook(cfg.ReportFile, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Workbook written to %s\n", cfg.ReportFile)
	}

	if cfg.DatabaseURL != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("hash ballot file: %w", err)
		}
		run := models.Run{
			ID:             uuid.NewString(),
			VotingSystem:   election.VotingSystem,
			SeatsAvailable: election.SeatsAvailable,
			Candidates:     len(election.Candidates),
			Ballots:        election.TotalValidBallots,
			InvalidBallots: len(election.InvalidBallots),
			Seed:           seed,
			InputsHash:     digest.InputsHash(data, cfg.InputsSalt),
			CreatedAt:      time.Now(),
		}
		if err := saveRun(cmd, cfg, run, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Run %s saved (code %s)\n", run.ID, digest.ShortCode(run.ID, run.InputsHash))
	}
	return nil
}

func saveRun(cmd *cobra.Command, cfg cliparse.Config, run models.Run, result models.Result) error {
	store, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.SaveRun(cmd.Context(), run, result); err != nil {
		return err
	}
	return nil
}

func promptFilename(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Please Enter Filename: ")

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read filename: %w", err)
		}
		return "", errors.New("no ballot file given")
	}
	name := strings.TrimSpace(sc.Text())
	if name == "" {
		return "", errors.New("no ballot file given")
	}
	return name, nil
}
