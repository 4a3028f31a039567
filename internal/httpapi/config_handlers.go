package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/events"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	Hub         *events.Hub
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	writeJSON(w, cur)
}

// Put replaces the whole config. Unknown fields and validation failures
// reject the request; nothing is saved partially.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: trailing data")
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := h.save(normalized); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, h.CfgVal.Load().(config.Config))
}

// PatchOptions updates the runtime workflow options from a key/value
// payload. One unrecognized key rejects the whole update.
func (h ConfigHandler) PatchOptions(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	if len(updates) == 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "no updates given")
		return
	}

	cur := h.CfgVal.Load().(config.Config)
	opts, err := config.ApplyUpdates(cur.Workflow, updates)
	if err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			WriteError(w, r, http.StatusBadRequest, "unknown_key", err.Error())
			return
		}
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	next := cur
	next.Workflow = opts
	normalized, vr := config.NormalizeAndValidate(next)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := h.save(normalized); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, h.CfgVal.Load().(config.Config).Workflow)
}

func (h ConfigHandler) save(cfg config.Config) error {
	if err := config.SaveAtomic(h.UserCfgPath, cfg); err != nil {
		return err
	}
	saved, err := h.LoadCfg()
	if err != nil {
		return err
	}
	h.CfgVal.Store(saved)
	if h.Hub != nil {
		h.Hub.Publish(events.Make("", events.TypeConfigUpdated, nil))
	}
	return nil
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	_, vr := config.NormalizeAndValidate(cur)
	writeJSON(w, vr)
}
