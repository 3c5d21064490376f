// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arminh/squadledger/internal/domain/model"
)

// SquadsHandler handles squad, transfer and squad-repair requests.
type SquadsHandler struct {
	deps Dependencies
}

// NewSquadsHandler creates a new squads handler.
func NewSquadsHandler(deps Dependencies) *SquadsHandler {
	return &SquadsHandler{deps: deps}
}

type createSquadRequest struct {
	LeagueID  string   `json:"league_id"`
	OwnerID   string   `json:"owner_id"`
	Name      string   `json:"name"`
	PlayerIDs []string `json:"player_ids"`
}

type submitSquadRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
}

type substituteRequest struct {
	ExpectedVersion  int64  `json:"expected_version"`
	Out              string `json:"out"`
	In               string `json:"in"`
	Category         string `json:"category"`
	AutoReassignRole bool   `json:"auto_reassign_role"`
}

type assignRoleRequest struct {
	ExpectedVersion int64  `json:"expected_version"`
	Role            string `json:"role"`
	PlayerID        string `json:"player_id"`
}

type reverseRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
	LedgerIndex     int   `json:"ledger_index"`
}

type restoreBaselineRequest struct {
	ExpectedVersion int64  `json:"expected_version"`
	SnapshotID      string `json:"snapshot_id"`
}

// HandleSquads handles POST /squads requests.
func (h *SquadsHandler) HandleSquads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createSquadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.LeagueID) == "" || strings.TrimSpace(req.Name) == "" || len(req.PlayerIDs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	squad, err := h.deps.CreateSquad(r.Context(), req.LeagueID, req.OwnerID, req.Name, req.PlayerIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, squad)
}

// HandleSquad dispatches /squads/{id}... requests:
//
//	GET  /squads/{id}
//	GET  /squads/{id}/score
//	POST /squads/{id}/submit
//	POST /squads/{id}/transfers
//	POST /squads/{id}/roles
//	POST /squads/{id}/reversals
//	POST /squads/{id}/repairs/fold-banked
//	POST /squads/{id}/repairs/baseline
func (h *SquadsHandler) HandleSquad(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/squads/")
	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		h.getSquad(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "score" && r.Method == http.MethodGet:
		h.scoreSquad(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "submit" && r.Method == http.MethodPost:
		h.submitSquad(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "transfers" && r.Method == http.MethodPost:
		h.substitute(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "roles" && r.Method == http.MethodPost:
		h.assignRole(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "reversals" && r.Method == http.MethodPost:
		h.reverse(w, r, segs[0])
	case len(segs) == 3 && segs[1] == "repairs" && segs[2] == "fold-banked" && r.Method == http.MethodPost:
		h.foldBanked(w, r, segs[0])
	case len(segs) == 3 && segs[1] == "repairs" && segs[2] == "baseline" && r.Method == http.MethodPost:
		h.restoreBaseline(w, r, segs[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *SquadsHandler) getSquad(w http.ResponseWriter, r *http.Request, id string) {
	squad, err := h.deps.GetSquad(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

func (h *SquadsHandler) scoreSquad(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.deps.ScoreSquad(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SquadsHandler) submitSquad(w http.ResponseWriter, r *http.Request, id string) {
	var req submitSquadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	squad, err := h.deps.SubmitSquad(r.Context(), id, req.ExpectedVersion)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

func (h *SquadsHandler) substitute(w http.ResponseWriter, r *http.Request, id string) {
	var req substituteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Out == "" || req.In == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	squad, err := h.deps.SubstitutePlayer(r.Context(), id, req.ExpectedVersion,
		req.Out, req.In, model.TransferCategory(req.Category), req.AutoReassignRole)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

func (h *SquadsHandler) assignRole(w http.ResponseWriter, r *http.Request, id string) {
	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	squad, err := h.deps.AssignRole(r.Context(), id, req.ExpectedVersion, model.Role(req.Role), req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

func (h *SquadsHandler) reverse(w http.ResponseWriter, r *http.Request, id string) {
	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	squad, err := h.deps.ReverseTransfer(r.Context(), id, req.ExpectedVersion, req.LedgerIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

func (h *SquadsHandler) foldBanked(w http.ResponseWriter, r *http.Request, id string) {
	var req submitSquadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	squad, err := h.deps.FoldBankedPoints(r.Context(), id, req.ExpectedVersion)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}

func (h *SquadsHandler) restoreBaseline(w http.ResponseWriter, r *http.Request, id string) {
	var req restoreBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.SnapshotID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	squad, err := h.deps.RestoreBaseline(r.Context(), id, req.SnapshotID, req.ExpectedVersion)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, squad)
}
