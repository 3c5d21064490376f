// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arminh/squadledger/internal/adapters/repository"
	"github.com/arminh/squadledger/internal/app"
	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/scoring"
	"github.com/arminh/squadledger/internal/domain/transfer"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreatePool(ctx context.Context, pool model.PlayerPool) (model.PlayerPool, error)
	GetPool(ctx context.Context, id string) (model.PlayerPool, error)
	UpdatePool(ctx context.Context, poolID string, players []model.PlayerRecord, message string) (model.PlayerPool, error)
	RecalculatePool(ctx context.Context, poolID string) (app.CascadeReport, error)

	CreateLeague(ctx context.Context, league model.League) (model.League, error)
	GetLeague(ctx context.Context, id string) (model.League, error)
	LatestStandings(ctx context.Context, leagueID string) (model.Snapshot, error)
	RankStreak(ctx context.Context, leagueID, squadID string) (int, error)
	BuildSnapshot(ctx context.Context, leagueID string) (model.Snapshot, error)
	RepairLeagueRoles(ctx context.Context, leagueID string) (int, error)

	CreateSquad(ctx context.Context, leagueID, ownerID, name string, playerIDs []string) (model.Squad, error)
	GetSquad(ctx context.Context, id string) (model.Squad, error)
	ScoreSquad(ctx context.Context, squadID string) (scoring.Result, error)
	SubmitSquad(ctx context.Context, squadID string, expectedVersion int64) (model.Squad, error)
	SubstitutePlayer(ctx context.Context, squadID string, expectedVersion int64, outID, inID string, cat model.TransferCategory, autoReassignRole bool) (model.Squad, error)
	AssignRole(ctx context.Context, squadID string, expectedVersion int64, role model.Role, playerID string) (model.Squad, error)
	ReverseTransfer(ctx context.Context, squadID string, expectedVersion int64, ledgerIndex int) (model.Squad, error)
	FoldBankedPoints(ctx context.Context, squadID string, expectedVersion int64) (model.Squad, error)
	RestoreBaseline(ctx context.Context, squadID, snapshotID string, expectedVersion int64) (model.Squad, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	poolsHandler   *PoolsHandler
	leaguesHandler *LeaguesHandler
	squadsHandler  *SquadsHandler
}

// NewServer creates a new API server with all handlers. maxStandingsLimit
// caps the limit query of the standings endpoint.
func NewServer(deps Dependencies, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		poolsHandler:   NewPoolsHandler(deps),
		leaguesHandler: NewLeaguesHandler(deps, maxStandingsLimit),
		squadsHandler:  NewSquadsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/pools", MetricsMiddleware(s.poolsHandler.HandlePools, "pools"))
	mux.HandleFunc("/pools/", MetricsMiddleware(s.poolsHandler.HandlePool, "pools"))
	mux.HandleFunc("/leagues", MetricsMiddleware(s.leaguesHandler.HandleLeagues, "leagues"))
	mux.HandleFunc("/leagues/", MetricsMiddleware(s.leaguesHandler.HandleLeague, "leagues"))
	mux.HandleFunc("/squads", MetricsMiddleware(s.squadsHandler.HandleSquads, "squads"))
	mux.HandleFunc("/squads/", MetricsMiddleware(s.squadsHandler.HandleSquad, "squads"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and domain failures onto HTTP statuses
// with stable machine-readable codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var partial *app.PartialCascadeError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "version_conflict", err)
	case errors.Is(err, transfer.ErrQuotaExhausted):
		writeError(w, http.StatusConflict, "quota_exhausted", err)
	case errors.Is(err, transfer.ErrInvalidReversal):
		writeError(w, http.StatusConflict, "invalid_reversal", err)
	case errors.Is(err, app.ErrAlreadyFolded):
		writeError(w, http.StatusConflict, "already_folded", err)
	case errors.Is(err, app.ErrPlayerUnavailable):
		writeError(w, http.StatusUnprocessableEntity, "player_unavailable", err)
	case errors.Is(err, transfer.ErrPlayerNotInSquad),
		errors.Is(err, transfer.ErrPlayerAlreadyInSquad),
		errors.Is(err, transfer.ErrUnknownCategory),
		errors.Is(err, transfer.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.As(err, &partial):
		// Committed leagues keep their state; report the failed set.
		writeJSON(w, http.StatusInternalServerError, struct {
			Code          string   `json:"code"`
			Message       string   `json:"message"`
			PoolID        string   `json:"pool_id"`
			FailedLeagues []string `json:"failed_leagues"`
		}{
			Code:          "partial_cascade",
			Message:       partial.Error(),
			PoolID:        partial.PoolID,
			FailedLeagues: partial.FailedLeagues,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
