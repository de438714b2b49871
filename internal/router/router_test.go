package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"school-admin/internal/config"
	"school-admin/internal/event"
	"school-admin/internal/metrics"
	"school-admin/internal/middleware"
	"school-admin/internal/model"
	"school-admin/internal/websocket"
)

type rejectAll struct{}

func (rejectAll) Resolve(context.Context, string) (model.Identity, error) {
	return model.Identity{}, model.ErrUnauthenticated
}

func testConfig() *config.Config {
	return &config.Config{
		CORSOrigins:      []string{"*"},
		RequestTimeout:   time.Second,
		RateLimitRPM:     0,
		AuthRateLimitRPM: 0,
	}
}

func TestRouter(t *testing.T) {
	tests := []struct {
		name       string
		metrics    *metrics.Metrics
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "protected route", method: http.MethodGet, path: "/api/v1/me", wantStatus: http.StatusUnauthorized},
		{name: "task revisions require auth", method: http.MethodGet, path: "/api/v1/tasks/0f8b6c3e-1d2a-4e5f-9a7b-3c4d5e6f7a8b/revisions", wantStatus: http.StatusUnauthorized},
		{name: "feed requires auth", method: http.MethodGet, path: "/api/v1/ws", wantStatus: http.StatusUnauthorized},
		{name: "metrics exposed", metrics: metrics.New(), method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "metrics disabled", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := websocket.NewHandler(websocket.NewHub(event.NewBus(1), nil), nil)
			h := New(testConfig(), middleware.NewAuthMiddleware(rejectAll{}), tt.metrics, Handlers{Feed: feed})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
