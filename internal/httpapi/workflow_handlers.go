package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"jobpilot-engine/internal/domain"
	"jobpilot-engine/internal/workflow"
)

type WorkflowHandler struct {
	Orch *workflow.Orchestrator
}

// Run triggers a pipeline run. Accepts an optional query body; empty
// fields fall back to the configured search defaults. Responds 202 with
// the run id, or 409 when a run is already executing.
func (h WorkflowHandler) Run(w http.ResponseWriter, r *http.Request) {
	var q domain.Query
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
			return
		}
	}

	id, err := h.Orch.StartRun(q)
	if err != nil {
		if errors.Is(err, workflow.ErrBusy) {
			WriteError(w, r, http.StatusConflict, "busy", "a workflow run is already executing")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"run_id": id})
}

func (h WorkflowHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Orch.Status(r.Context()))
}

func (h WorkflowHandler) StartAuto(w http.ResponseWriter, r *http.Request) {
	if err := h.Orch.StartAuto(); err != nil {
		WriteError(w, r, http.StatusConflict, "auto_running", err.Error())
		return
	}
	writeJSON(w, map[string]any{"auto_enabled": true})
}

func (h WorkflowHandler) StopAuto(w http.ResponseWriter, r *http.Request) {
	if err := h.Orch.StopAuto(); err != nil {
		WriteError(w, r, http.StatusConflict, "auto_not_running", err.Error())
		return
	}
	writeJSON(w, map[string]any{"auto_enabled": false})
}

func (h WorkflowHandler) Health(w http.ResponseWriter, r *http.Request) {
	s := h.Orch.Status(r.Context())
	status := http.StatusOK
	if s.Health == workflow.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, map[string]any{
		"health":       s.Health,
		"running":      s.Running,
		"auto_enabled": s.AutoEnabled,
	})
}
