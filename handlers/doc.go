// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Tally API.

# Handler Types

ElectionHandler carries the run store and config:

	h := handlers.NewElectionHandler(store, cfg)

# Tabulation

The request body is a ballot file in the same format the CLI reads:

	POST /elections?seed=N → Tabulate (201, returns run_id, code, result)

Without a seed the configured seed is used; if that is zero a fresh one is
drawn. The seed is returned with the result so any run can be replayed.

Status codes:

  - 400: empty body, bad seed, malformed header, unknown voting system
  - 413: ballot file larger than middleware.MaxBallotFileBytes
  - 422: seats out of range or no candidates

# Stored Runs

	GET /elections?limit=N        → ListRuns (newest first)
	GET /elections/{id}/results   → GetResults (ResultSnapshot)
	GET /elections/{id}/audit     → GetAudit (ordered audit events)

Unknown run IDs return 404.
*/
package handlers
