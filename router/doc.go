// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Tally API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, cfg)

# Endpoints

Health (503 when the store cannot be reached):

	GET /health

Tabulation (body is a ballot file):

	POST /elections?seed=N - Count, store and return the result

Stored runs:

	GET /elections                - Recent runs, newest first
	GET /elections/{id}/results   - Stored result snapshot
	GET /elections/{id}/audit     - Ordered audit events

All election routes are wrapped with middleware.WithLogging.
*/
package router
