// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arminh/squadledger/internal/domain/model"
)

// PoolsHandler handles player pool requests.
type PoolsHandler struct {
	deps Dependencies
}

// NewPoolsHandler creates a new pools handler.
func NewPoolsHandler(deps Dependencies) *PoolsHandler {
	return &PoolsHandler{deps: deps}
}

type createPoolRequest struct {
	Name    string               `json:"name"`
	Players []model.PlayerRecord `json:"players"`
}

type updatePoolRequest struct {
	Players []model.PlayerRecord `json:"players"`
	Message string               `json:"message"`
}

// HandlePools handles POST /pools requests.
func (h *PoolsHandler) HandlePools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	pool, err := h.deps.CreatePool(r.Context(), model.PlayerPool{Name: req.Name, Players: req.Players})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pool)
}

// HandlePool dispatches /pools/{id} and /pools/{id}/recalculate requests.
func (h *PoolsHandler) HandlePool(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/pools/")
	switch {
	case len(segs) == 1 && r.Method == http.MethodGet:
		h.getPool(w, r, segs[0])
	case len(segs) == 1 && r.Method == http.MethodPut:
		h.updatePool(w, r, segs[0])
	case len(segs) == 2 && segs[1] == "recalculate" && r.Method == http.MethodPost:
		h.recalculatePool(w, r, segs[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *PoolsHandler) getPool(w http.ResponseWriter, r *http.Request, id string) {
	pool, err := h.deps.GetPool(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (h *PoolsHandler) updatePool(w http.ResponseWriter, r *http.Request, id string) {
	var req updatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pool, err := h.deps.UpdatePool(r.Context(), id, req.Players, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (h *PoolsHandler) recalculatePool(w http.ResponseWriter, r *http.Request, id string) {
	report, err := h.deps.RecalculatePool(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// pathSegments splits the request path after prefix into non-empty segments.
func pathSegments(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
