package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"school-admin/internal/model"
)

type identityResolver interface {
	Resolve(ctx context.Context, accessToken string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	resolver identityResolver
}

func NewAuthMiddleware(resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth resolves the bearer token into an Identity. A valid token whose
// admin row is gone yields PROFILE_NOT_FOUND instead of UNAUTHORIZED.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		identity, err := m.resolver.Resolve(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, model.ErrProfileNotFound):
			writeErrorEnvelope(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "admin profile not found")
			return
		case errors.Is(err, model.ErrUnauthenticated):
			writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		default:
			writeErrorEnvelope(w, http.StatusInternalServerError, "PERSISTENCE_ERROR", "could not resolve identity")
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles rejects callers whose tier is not listed. Handlers still run
// the full policy check; this only keeps whole route groups closed.
func (m *AuthMiddleware) RequireRoles(allowed ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowed {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, exists := roleSet[identity.Role]; !exists {
				writeErrorEnvelope(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// a websocket handshake, so upgrades may pass access_token in the query.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" && strings.HasPrefix(strings.ToLower(header), "bearer ") {
		token := strings.TrimSpace(header[7:])
		return token, token != ""
	}
	if header == "" && websocket.IsWebSocketUpgrade(r) {
		token := r.URL.Query().Get("access_token")
		return token, token != ""
	}
	return "", false
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

