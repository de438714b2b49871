package handler

import (
	"net/http"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type LockHandler struct {
	service *service.LockService
}

func NewLockHandler(service *service.LockService) *LockHandler {
	return &LockHandler{service: service}
}

func (h *LockHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := h.service.Status(r.Context(), id, folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, status, nil)
}

// Unlock re-checks the caller's password and returns a time-boxed token.
func (h *LockHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UnlockFolderRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.Unlock(r.Context(), id, folderID, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, token, nil)
}

// Verify answers 200 for a usable token and 403 INVALID_UNLOCK_TOKEN otherwise.
func (h *LockHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.VerifyUnlockRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Verify(r.Context(), id, folderID, payload.Token); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"folder_id": folderID, "valid": true}, nil)
}
