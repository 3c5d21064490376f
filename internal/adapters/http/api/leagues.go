// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/arminh/squadledger/internal/domain/model"
)

// LeaguesHandler handles league, standings and repair requests.
type LeaguesHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeaguesHandler creates a new leagues handler.
func NewLeaguesHandler(deps Dependencies, maxLimit int) *LeaguesHandler {
	return &LeaguesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

type createLeagueRequest struct {
	PoolID       string `json:"pool_id"`
	Name         string `json:"name"`
	StartingSize int    `json:"starting_size"`
}

// HandleLeagues handles POST /leagues requests.
func (h *LeaguesHandler) HandleLeagues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.PoolID) == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	league, err := h.deps.CreateLeague(r.Context(), model.League{
		PoolID:       req.PoolID,
		Name:         req.Name,
		StartingSize: req.StartingSize,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, league)
}

// HandleLeague dispatches /leagues/{id}... requests:
//
//	GET  /leagues/{id}
//	GET  /leagues/{id}/standings
//	GET  /leagues/{id}/streak?squad_id=S
//	POST /leagues/{id}/snapshots
//	POST /leagues/{id}/repairs/roles
func (h *LeaguesHandler) HandleLeague(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/leagues/")
	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		h.getLeague(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "standings" && r.Method == http.MethodGet:
		h.getStandings(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "streak" && r.Method == http.MethodGet:
		h.getStreak(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "snapshots" && r.Method == http.MethodPost:
		h.buildSnapshot(w, r, segs[0])
	case len(segs) == 3 && segs[1] == "repairs" && segs[2] == "roles" && r.Method == http.MethodPost:
		h.repairRoles(w, r, segs[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *LeaguesHandler) getLeague(w http.ResponseWriter, r *http.Request, id string) {
	league, err := h.deps.GetLeague(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, league)
}

func (h *LeaguesHandler) getStandings(w http.ResponseWriter, r *http.Request, id string) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}
	snap, err := h.deps.LatestStandings(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if limit > 0 && limit < len(snap.Entries) {
		snap.Entries = snap.Entries[:limit]
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *LeaguesHandler) getStreak(w http.ResponseWriter, r *http.Request, id string) {
	squadID := r.URL.Query().Get("squad_id")
	if squadID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	streak, err := h.deps.RankStreak(r.Context(), id, squadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"squad_id": squadID, "streak": streak})
}

func (h *LeaguesHandler) buildSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := h.deps.BuildSnapshot(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *LeaguesHandler) repairRoles(w http.ResponseWriter, r *http.Request, id string) {
	repaired, err := h.deps.RepairLeagueRoles(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}
