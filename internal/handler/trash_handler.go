package handler

import (
	"net/http"

	"school-admin/internal/service"
)

type TrashHandler struct {
	service *service.TrashService
}

func NewTrashHandler(service *service.TrashService) *TrashHandler {
	return &TrashHandler{service: service}
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	dimensionID, err := queryInt64(r, "dimensionId")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.service.ListTopLevel(r.Context(), id, dimensionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *TrashHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.service.ListGroup(r.Context(), id, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	itemID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := h.service.Restore(r.Context(), id, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"restored": n}, nil)
}
