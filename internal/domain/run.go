package domain

import "time"

// RunStatus is the orchestrator state machine:
// Idle -> Running -> Completed|Failed -> Idle.
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Query is a normalized search request for the listing source.
type Query struct {
	Keywords   string `json:"keywords"`
	Location   string `json:"location"`
	MaxResults int    `json:"max_results"`
}

// PhaseResult captures one workflow phase outcome. Failures are data,
// not panics; the run decides which later phases to skip.
type PhaseResult struct {
	Success bool      `json:"success"`
	Skipped bool      `json:"skipped"`
	Error   string    `json:"error,omitempty"`
	Count   int       `json:"count"`
	At      time.Time `json:"at"`
}

// RunSummary aggregates counts across phases.
type RunSummary struct {
	JobsFound         int    `json:"jobs_found"`
	UniqueJobs        int    `json:"unique_jobs"`
	JobsScored        int    `json:"jobs_scored"`
	HighScoringJobs   int    `json:"high_scoring_jobs"`
	ApplicationsSent  int    `json:"applications_sent"`
	ApplicationsTried int    `json:"applications_tried"`
	TrackedApps       int    `json:"tracked_applications"`
	Success           bool   `json:"success"`
	Reason            string `json:"reason,omitempty"`
}

// WorkflowRun is one execution of the pipeline. Owned exclusively by the
// orchestrator; at most one is Running at any instant.
type WorkflowRun struct {
	ID        string                 `json:"id"`
	Status    RunStatus              `json:"status"`
	Query     Query                  `json:"query"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   time.Time              `json:"ended_at,omitzero"`
	Phases    map[string]PhaseResult `json:"phases"`
	Summary   RunSummary             `json:"summary"`
}
