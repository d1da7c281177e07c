// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballotfile loads election ballot files into models.Election.

# File Format

A ballot file is line-oriented and comma-delimited. The header depends on the
voting system named on the first line:

	IR   numCandidates / Name (P), Name (P), ... / numBallots
	OPL  numCandidates / Name (P), Name (P), ... / numSeats / numBallots
	MPO  numSeats / numCandidates / [Name, P], [Name, P], ... / numBallots

Every following line is one ballot with one column per candidate, in header
order. The column index is the candidate's ballot position.

IR rows carry rank numbers (1 is the first preference). A row must rank at
least half of the candidates (rounded up) with distinct ranks in [1, n];
rows that do not are kept verbatim in Election.InvalidBallots and never reach
the tabulator. Ballot.Rankings is indexed by rank; a skipped rank inside the
ranking is left as models.NoCandidate, which exhausts the ballot if a transfer
reaches it.

OPL and MPO rows carry a single mark. The first non-empty column receives the
vote; rows without a mark are invalid.

# Usage

	e, err := ballotfile.Load("election.csv")
	if err != nil {
		return err
	}
	if err := ballotfile.WriteInvalid("invalidated.csv", e.InvalidBallots); err != nil {
		slog.Warn("could not record invalid ballots", "error", err)
	}
*/
package ballotfile
