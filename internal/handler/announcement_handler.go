package handler

import (
	"net/http"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type AnnouncementHandler struct {
	service *service.AnnouncementService
}

func NewAnnouncementHandler(service *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListAdmin(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *AnnouncementHandler) Active(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListActive(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.CreateAnnouncementRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.service.Create(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, a, nil)
}

func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	announcementID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateAnnouncementRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.service.Update(r.Context(), id, announcementID, model.AnnouncementPatch{
		Title:       payload.Title,
		Content:     payload.Content,
		Visibility:  payload.Visibility,
		ExpiresAt:   payload.ExpiresAt,
		ClearExpiry: payload.ClearExpiry,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, a, nil)
}

func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	announcementID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, announcementID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

func (h *AnnouncementHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	announcementID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Dismiss(r.Context(), id, announcementID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"dismissed": true}, nil)
}
