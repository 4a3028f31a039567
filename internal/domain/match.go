package domain

// PartialMatch records a required skill satisfied indirectly through a
// related or overlapping candidate skill.
type PartialMatch struct {
	Required   string  `json:"required"`
	Matched    string  `json:"matched"`
	Confidence float64 `json:"confidence"`
}

// MatchResult explains how a listing scored against a profile. Score is
// the skill formula (exact*1.0 + partial*0.5)/max(required,1) clamped
// to [0,1]; Breakdown carries auxiliary component scores so callers can
// explain the number, not just consume it.
type MatchResult struct {
	Listing        Listing            `json:"listing"`
	Score          float64            `json:"score"`
	ExactMatches   []string           `json:"exact_matches"`
	PartialMatches []PartialMatch     `json:"partial_matches"`
	MissingSkills  []string           `json:"missing_skills"`
	Breakdown      map[string]float64 `json:"breakdown"`
}
