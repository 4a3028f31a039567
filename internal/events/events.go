package events

import (
	"encoding/json"
	"time"
)

// Event types published over the hub.
const (
	TypeRunStarted      = "run.started"
	TypeRunPhase        = "run.phase"
	TypeRunCompleted    = "run.completed"
	TypeRunFailed       = "run.failed"
	TypeApplicationSent = "application.sent"
	TypeFollowUpSent    = "followup.sent"
	TypeAutoMode        = "auto.mode"
	TypeConfigUpdated   = "config.updated"
)

type Event struct {
	Type  string          `json:"type"`
	At    time.Time       `json:"at"`
	RunID string          `json:"run_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Make serializes one event for the hub. Marshal errors are dropped;
// events are advisory.
func Make(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:  typ,
		At:    time.Now().UTC(),
		RunID: runID,
		Data:  raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
