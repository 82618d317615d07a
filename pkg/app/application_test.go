package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentals/pkg/auth"
	"rentals/pkg/config"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type stubParser struct{}

func (stubParser) Parse(token string) (*auth.Actor, error) {
	if token == "good" {
		return &auth.Actor{ID: "u1", Role: model.RoleUser}, nil
	}
	return nil, errors.New("bad token")
}

type routes func(*httprouter.Router)

func (r routes) RegisterRoutes(router *httprouter.Router) { r(router) }

func newTestApplication() *Application {
	cfg := &config.Config{
		Port:              "0",
		Log:               logger.Discard(),
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		CORSOrigins:       []string{"https://app.example.com"},
	}

	health := routes(func(router *httprouter.Router) {
		router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusOK)
		})
	})
	api := routes(func(router *httprouter.Router) {
		router.GET("/api/v1/whoami", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			if actor := auth.ActorFrom(r.Context()); actor != nil {
				_, _ = w.Write([]byte(actor.ID))
				return
			}
			_, _ = w.Write([]byte("anonymous"))
		})
	})

	a := NewApplication(cfg)
	a.SetApp(stubParser{}, health, api)
	return a
}

func TestApplication_Routing(t *testing.T) {
	a := newTestApplication()
	defer a.idempotencyStore.Stop()
	defer a.rateLimiter.Stop()

	tests := []struct {
		name       string
		path       string
		auth       string
		expectCode int
		expectBody string
	}{
		{name: "health skips auth", path: "/health", auth: "Bearer nope", expectCode: http.StatusOK},
		{name: "anonymous", path: "/api/v1/whoami", expectCode: http.StatusOK, expectBody: "anonymous"},
		{name: "authenticated", path: "/api/v1/whoami", auth: "Bearer good", expectCode: http.StatusOK, expectBody: "u1"},
		{name: "invalid token", path: "/api/v1/whoami", auth: "Bearer nope", expectCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			a.Handler().ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
			if tt.expectBody != "" && w.Body.String() != tt.expectBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.expectBody)
			}
		})
	}
}

func TestApplication_CORSPreflight(t *testing.T) {
	a := newTestApplication()
	defer a.idempotencyStore.Stop()
	defer a.rateLimiter.Stop()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/whoami", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
