package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// unlockTokenHeader carries the folder unlock token on gated routes.
const unlockTokenHeader = "X-Unlock-Token"

func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", unlockTokenHeader},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	return handler.Handler
}
