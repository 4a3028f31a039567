package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"jobpilot-engine/internal/dispatch"
	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/letter"
	"jobpilot-engine/internal/store"
)

type ApplyHandler struct {
	DB         *sql.DB
	Dispatcher *dispatch.Dispatcher
	Letters    letter.Generator
	Profile    func() domain.CandidateProfile
	Log        *zap.Logger
}

type applyRequest struct {
	ListingKey string `json:"listing_key"`
}

// Apply submits one application on demand, outside any workflow run.
// The same quota and duplicate checks apply.
func (h ApplyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	key := strings.TrimSpace(req.ListingKey)
	if key == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "listing_key is required")
		return
	}

	sl, err := store.GetListingByIdentity(r.Context(), h.DB, key)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "listing not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	profile := h.Profile()
	text, err := h.Letters.Generate(r.Context(), profile, sl.Listing)
	if err != nil {
		h.Log.Warn("letter generation failed", zap.String("listing", key), zap.Error(err))
	}

	results := h.Dispatcher.Run(r.Context(), []domain.ApplicationTask{{
		ListingID: key,
		ProfileID: profile.ID,
		Listing:   sl.Listing,
		Letter:    text,
	}})
	writeJSON(w, results[0])
}
