package handler

import (
	"net/http"
	"strings"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), strings.TrimSpace(payload.RefreshToken))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), strings.TrimSpace(payload.RefreshToken)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}
