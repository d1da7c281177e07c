// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-tally/ballotfile"
	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/digest"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/tally"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

type ElectionHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewElectionHandler(store *db.Store, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{store: store, cfg: cfg}
}

// Tabulate handles POST /elections
// The body is a ballot file; ?seed= fixes the tie-break seed for a replay
func (h *ElectionHandler) Tabulate(w http.ResponseWriter, r *http.Request) {
	seed := h.cfg.Seed
	if s := r.URL.Query().Get("seed"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		seed = v
	}
	if seed == 0 {
		var err error
		if seed, err = tally.NewSeed(); err != nil {
			slog.Error("failed to draw tie-break seed", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to draw seed")
			return
		}
	}

	data, err := middleware.ReadBody(w, r, middleware.MaxBallotFileBytes)
	if errors.Is(err, middleware.ErrBodyTooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read ballot file")
		return
	}
	if len(data) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot file is required")
		return
	}

	election, err := ballotfile.Parse(bytes.NewReader(data))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := tally.Tabulate(election, tally.NewRandomTieBreaker(seed), nil)
	if errors.Is(err, tally.ErrConfiguration) {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.Error("tabulation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Tabulation failed")
		return
	}

	run := models.Run{
		ID:             uuid.NewString(),
		VotingSystem:   election.VotingSystem,
		SeatsAvailable: election.SeatsAvailable,
		Candidates:     len(election.Candidates),
		Ballots:        election.TotalValidBallots,
		InvalidBallots: len(election.InvalidBallots),
		Seed:           seed,
		InputsHash:     digest.InputsHash(data, h.cfg.InputsSalt),
		CreatedAt:      time.Now(),
	}
	if _, err := h.store.SaveRun(r.Context(), run, result); err != nil {
		slog.Error("failed to save run", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	slog.Info("election tabulated",
		"run_id", run.ID,
		"system", run.VotingSystem,
		"ballots", run.Ballots,
		"seated", len(result.Seated),
	)

	invalid := election.InvalidBallots
	if invalid == nil {
		invalid = []string{}
	}
	middleware.JSONResponse(w, http.StatusCreated, models.TabulateResponse{
		RunID:          run.ID,
		Code:           digest.ShortCode(run.ID, run.InputsHash),
		InputsHash:     run.InputsHash,
		InvalidBallots: invalid,
		Result:         result,
	})
}

// ListRuns handles GET /elections
func (h *ElectionHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(v, maxListLimit)
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list runs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, runs)
}

// GetResults handles GET /elections/{id}/results
func (h *ElectionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "run id is required")
		return
	}

	snap, err := h.store.GetSnapshot(r.Context(), runID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		slog.Error("failed to query snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// GetAudit handles GET /elections/{id}/audit
func (h *ElectionHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "run id is required")
		return
	}

	events, err := h.store.ListAuditEvents(r.Context(), runID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		slog.Error("failed to query audit events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AuditResponse{RunID: runID, Events: events})
}
