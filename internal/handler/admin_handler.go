package handler

import (
	"net/http"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type AdminHandler struct {
	service *service.AdminService
}

func NewAdminHandler(service *service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	admin, err := h.service.Me(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, admin, nil)
}

func (h *AdminHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.UpdateProfileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	admin, err := h.service.UpdateProfile(r.Context(), id, payload.FullName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, admin, nil)
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	admins, err := h.service.List(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, admins, nil)
}

func (h *AdminHandler) Provision(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.ProvisionAdminRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	admin, err := h.service.Provision(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, admin, nil)
}

func (h *AdminHandler) ForceSignOut(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	adminID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ForceSignOut(r.Context(), id, adminID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"signed_out": true}, nil)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	adminID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, adminID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
