package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobpilot-engine/internal/config"
	"jobpilot-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	h.setSecret(w, r, secrets.IMAPAccount)
}

func (h SecretsHandler) SetSMTPPassword(w http.ResponseWriter, r *http.Request) {
	h.setSecret(w, r, secrets.SMTPAccount)
}

func (h SecretsHandler) setSecret(w http.ResponseWriter, r *http.Request, account func(config.Config) string) {
	var req setPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.Set(account(cfg), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
