// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/quickly-tally/models"
)

const rule = "---------------------------"

// WriteText prints the result summary to w.
func WriteText(w io.Writer, res models.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n%s election results:\n%s\n", res.VotingSystem, rule)
	switch {
	case res.NoResults:
		fmt.Fprintln(bw, "No ballots. Therefore, no results.")
	case res.VotingSystem == models.SystemIR && res.Winner != nil:
		fmt.Fprintf(bw, "%s won with %s votes (%.2f%%)\n",
			res.Winner.Name, humanize.Comma(int64(res.Winner.VoteCount)), share(res.Winner.VoteCount, res.TotalBallots))
		if len(res.Rounds) > 0 {
			fmt.Fprintf(bw, "after %d elimination round(s); %s ballot(s) exhausted.\n",
				len(res.Rounds), humanize.Comma(int64(res.Exhausted)))
		}
	default:
		fmt.Fprintf(bw, "%s won %d seat(s):\n", seatedList(res.Seated), len(res.Seated))
		for i, c := range res.Seated {
			fmt.Fprintf(bw, "  %s seat: %s (%s) with %s votes\n",
				humanize.Ordinal(i+1), c.Name, c.Party, humanize.Comma(int64(c.VoteCount)))
		}
	}

	if res.VotingSystem == models.SystemOPL && !res.NoResults {
		fmt.Fprintf(bw, "\nQuota: %s votes per seat\n", humanize.Comma(int64(res.Quota)))
		for _, p := range res.Parties {
			fmt.Fprintf(bw, "%s: %s votes, %d seat(s)\n", p.Name, humanize.Comma(int64(p.TotalVotes)), p.SeatsWon)
		}
	}

	fmt.Fprintf(bw, "\nVote breakdown:\n%s\n", rule)
	for _, c := range res.Candidates {
		fmt.Fprintf(bw, "%s had %s votes, which is %.2f%% of the total votes.\n",
			c.Name, humanize.Comma(int64(c.VoteCount)), share(c.VoteCount, res.TotalBallots))
	}
	if res.Seed != 0 {
		fmt.Fprintf(bw, "\nTie-break seed: %d\n", res.Seed)
	}

	return bw.Flush()
}

func seatedList(seated []models.Candidate) string {
	names := make([]string, len(seated))
	for i, c := range seated {
		names[i] = c.Name
	}
	switch len(names) {
	case 0:
		return "Nobody"
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func share(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}

// WriteWorkbook saves res as an XLSX workbook at path.
func WriteWorkbook(path string, res models.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Results"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	summary := [][]any{
		{"Voting system", string(res.VotingSystem)},
		{"Seats available", res.SeatsAvailable},
		{"Total ballots", res.TotalBallots},
		{"Tie-break seed", res.Seed},
	}
	if res.VotingSystem == models.SystemOPL {
		summary = append(summary, []any{"Quota", res.Quota})
	}
	if res.VotingSystem == models.SystemIR {
		summary = append(summary, []any{"Exhausted ballots", res.Exhausted})
	}
	summary = append(summary, []any{}, []any{"Seat", "Name", "Party", "Votes"})
	for i, c := range res.Seated {
		summary = append(summary, []any{i + 1, c.Name, c.Party, c.VoteCount})
	}
	if err := writeRows(f, "Results", summary); err != nil {
		return err
	}

	if _, err := f.NewSheet("Candidates"); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	cands := [][]any{{"Ballot position", "Name", "Party", "Votes", "Share"}}
	for _, c := range res.Candidates {
		cands = append(cands, []any{c.BallotPosition + 1, c.Name, c.Party, c.VoteCount, share(c.VoteCount, res.TotalBallots) / 100})
	}
	if err := writeRows(f, "Candidates", cands); err != nil {
		return err
	}

	if len(res.Parties) > 0 {
		if _, err := f.NewSheet("Parties"); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		parties := [][]any{{"Party", "Votes", "Remainder", "Seats"}}
		for _, p := range res.Parties {
			parties = append(parties, []any{p.Name, p.TotalVotes, p.Remainder, p.SeatsWon})
		}
		if err := writeRows(f, "Parties", parties); err != nil {
			return err
		}
	}

	if len(res.Rounds) > 0 {
		if _, err := f.NewSheet("Rounds"); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		rounds := [][]any{{"Round", "Eliminated", "Votes", "Exhausted"}}
		for _, r := range res.Rounds {
			rounds = append(rounds, []any{r.Number, r.Eliminated, r.Votes, r.Exhausted})
		}
		if err := writeRows(f, "Rounds", rounds); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
