package httpapi

import (
	"encoding/json"
	"net/http"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/extract"
	"jobpilot-engine/internal/match"
)

type MatchHandler struct {
	Matcher *match.Matcher
	Profile func() domain.CandidateProfile
}

type scoreRequest struct {
	Listings []domain.Listing `json:"listings"`
}

// Score runs the matcher over caller-supplied listings without touching
// the pipeline. Invalid listings are scored as zero with the reason in
// the result, not dropped, so indices line up with the request.
func (h MatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if len(req.Listings) == 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "listings must not be empty")
		return
	}

	profile := h.Profile()
	profileFS := extract.Profile(profile)

	results := make([]domain.MatchResult, 0, len(req.Listings))
	for _, l := range req.Listings {
		if !l.Valid() {
			results = append(results, domain.MatchResult{
				Listing:   l,
				Breakdown: map[string]float64{},
			})
			continue
		}
		listingFS := extract.Listing(l)
		results = append(results, h.Matcher.ScoreListing(profile, profileFS, l, listingFS))
	}
	writeJSON(w, map[string]any{"matches": results})
}
