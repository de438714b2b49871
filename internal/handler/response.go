package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"school-admin/internal/middleware"
	"school-admin/internal/model"
	"school-admin/pkg/apierror"
)

const unlockTokenHeader = "X-Unlock-Token"

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first sentinel in the chain wins.
var errorMappings = []errorMapping{
	{model.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{model.ErrProfileNotFound, http.StatusNotFound, "PROFILE_NOT_FOUND", "Admin profile not found"},
	{model.ErrFolderLocked, http.StatusForbidden, "FOLDER_LOCKED", "Folder is locked by an unresolved task"},
	{model.ErrInvalidUnlockToken, http.StatusForbidden, "INVALID_UNLOCK_TOKEN", "Unlock token is invalid or expired"},
	{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
	{model.ErrAdminNotFound, http.StatusNotFound, "NOT_FOUND", "Admin not found"},
	{model.ErrDimensionNotFound, http.StatusNotFound, "NOT_FOUND", "Dimension not found"},
	{model.ErrFolderNotFound, http.StatusNotFound, "NOT_FOUND", "Folder not found"},
	{model.ErrFileNotFound, http.StatusNotFound, "NOT_FOUND", "File not found"},
	{model.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND", "Task not found"},
	{model.ErrAssignmentNotFound, http.StatusNotFound, "NOT_FOUND", "Assignment not found"},
	{model.ErrAnnouncementNotFound, http.StatusNotFound, "NOT_FOUND", "Announcement not found"},
	{model.ErrTrashItemNotFound, http.StatusNotFound, "NOT_FOUND", "Trash item not found"},
	{model.ErrTokenNotFound, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token"},
	{model.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", "Task status does not allow this action"},
	{model.ErrConflict, http.StatusConflict, "CONFLICT", "Resource already exists or is in use"},
	{model.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", "Invalid input"},
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func classify(err error) (int, *model.APIError) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus, &model.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			body := &model.APIError{Code: m.code, Message: m.message}
			if detail := detailOf(err, m.target); detail != "" {
				body.Details = detail
			}
			return m.status, body
		}
	}

	// Internal tool: the backend message is passed through for operators.
	slog.Error("unhandled error in writeError", "error", err.Error())
	return http.StatusInternalServerError, &model.APIError{
		Code:    "PERSISTENCE_ERROR",
		Message: "Unexpected backend error",
		Details: err.Error(),
	}
}

// detailOf returns the context wrapped around a sentinel, e.g.
// "invalid input: title is required" yields "title is required".
func detailOf(err error, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	if msg == sentinel.Error() {
		return ""
	}
	return msg
}

// decodeJSON reads and validates a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return apierror.New("INVALID_INPUT", "request validation failed", validationDetails(err), http.StatusBadRequest)
	}
	return nil
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ",")
}

// caller returns the identity installed by the auth middleware, writing a
// 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return model.Identity{}, false
	}
	return identity, true
}

func unlockToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(unlockTokenHeader))
}

// unlockTokens splits a comma separated X-Unlock-Token header, one token per
// locked folder.
func unlockTokens(r *http.Request) []string {
	var out []string
	for _, part := range strings.Split(r.Header.Get(unlockTokenHeader), ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func pathUUID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if _, err := uuid.Parse(raw); err != nil {
		return "", apierror.New("BAD_REQUEST", name+" must be a UUID", name, http.StatusBadRequest)
	}
	return raw, nil
}

// queryUUID returns "" when the parameter is absent.
func queryUUID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", apierror.New("BAD_REQUEST", name+" must be a UUID", name, http.StatusBadRequest)
	}
	return raw, nil
}

func requiredQueryUUID(r *http.Request, name string) (string, error) {
	v, err := queryUUID(r, name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", apierror.BadRequest(name+" is required", name)
	}
	return v, nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, apierror.New("BAD_REQUEST", name+" must be a positive integer", name, http.StatusBadRequest)
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, apierror.New("BAD_REQUEST", name+" must be a positive integer", name, http.StatusBadRequest)
	}
	return &v, nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
