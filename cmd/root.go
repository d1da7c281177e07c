// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-tally/cliparse"
)

// NewRootCmd builds the command tree. Every configuration flag is persistent
// so subcommands share one resolution path.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quickly-tally",
		Short: "Tabulate IR, OPL and MPO elections from a ballot file",
		Long: `quickly-tally counts an election ballot file under instant runoff (IR),
open party list (OPL) or multiple popularity only (MPO) rules, writes an
audit trail of every step, and prints the result.

Example Usage:
  quickly-tally tally ballots.csv           # Count a file and print results
  quickly-tally tally -s 42 ballots.csv     # Replay with a fixed tie-break seed
  quickly-tally serve -d runs.db            # Serve stored runs over HTTP`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cliparse.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newTallyCmd(), newServeCmd(), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for cmd and installs the logger
func loadConfig(cmd *cobra.Command) (cliparse.Config, error) {
	cfg, err := cliparse.Resolve(cmd.Flags())
	if err != nil {
		return cliparse.Config{}, err
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Verbose))
	return cfg, nil
}

// newLogger writes text to terminals and JSON everywhere else
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
