package api

import (
	"net/http"

	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
)

// POST /api/v1/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	account, err := h.svc.Accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.Login(w, r, account.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// POST /api/v1/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	account, err := h.svc.Accounts.Authenticate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.Login(w, r, account.ID); err != nil {
		writeError(w, err)
		return
	}
	logger.New().WithUser(account.ID).Info("signed in")
	writeJSON(w, http.StatusOK, account)
}

// POST /api/v1/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
