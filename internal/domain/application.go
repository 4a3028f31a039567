package domain

// ApplyMethod names the submission strategy chosen for a task.
type ApplyMethod string

const (
	MethodPortal ApplyMethod = "portal"
	MethodEmail  ApplyMethod = "email"
	MethodForm   ApplyMethod = "form"
	MethodManual ApplyMethod = "manual"
)

// ApplicationTask is one submission request. Consumed exactly once by
// the dispatcher.
type ApplicationTask struct {
	ListingID string  `json:"listing_id"`
	ProfileID string  `json:"profile_id"`
	Listing   Listing `json:"listing"`
	Letter    string  `json:"letter,omitempty"` // opaque cover text, optional
}

// ApplicationResult is the per-task outcome. A failed task never aborts
// the batch; skipped duplicates are not counted as failures.
type ApplicationResult struct {
	Task    ApplicationTask `json:"task"`
	Success bool            `json:"success"`
	Skipped bool            `json:"skipped"`
	Method  ApplyMethod     `json:"method"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}
