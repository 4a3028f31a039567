package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobpilot-engine/internal/store"
)

type ListingsHandler struct {
	DB *sql.DB
}

// List serves stored listings, best scores first. Query params:
// min_score (float, default 0) and limit.
func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	minScore, _ := strconv.ParseFloat(r.URL.Query().Get("min_score"), 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := store.ListListings(r.Context(), h.DB, minScore, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"listings": rows})
}

type ApplicationsHandler struct {
	DB *sql.DB
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	apps, err := store.ListApplications(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	summary, err := store.StatusSummary(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"applications": apps, "summary": summary})
}

type statusUpdateReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /applications/{id}/status for manual
// corrections (withdrawn, interview booked by phone, ...).
func (h ApplicationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/applications/")
	idStr, ok := strings.CutSuffix(rest, "/status")
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown path")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid application id")
		return
	}

	var req statusUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if !store.ValidStatus(req.Status) {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "unknown status "+req.Status)
		return
	}

	err = store.UpdateApplicationStatus(r.Context(), h.DB, id, req.Status)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "application not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ActivityHandler struct {
	DB *sql.DB
}

func (h ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := store.RecentActivity(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"activity": rows})
}
