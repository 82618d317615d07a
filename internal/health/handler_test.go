package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentals/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func TestHealth(t *testing.T) {
	router := httprouter.New()
	(&HealthHandler{log: logger.Discard()}).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestReady(t *testing.T) {
	down := func(context.Context) error { return errors.New("down") }
	up := func(context.Context) error { return nil }

	tests := []struct {
		name       string
		database   pingFunc
		cache      pingFunc
		expectCode int
		expect     HealthResponse
	}{
		{
			name:       "mongo only",
			database:   up,
			expectCode: http.StatusOK,
			expect:     HealthResponse{Status: "ready", Database: "ok"},
		},
		{
			name:       "mongo down",
			database:   down,
			expectCode: http.StatusServiceUnavailable,
			expect:     HealthResponse{Status: "unavailable", Database: "error"},
		},
		{
			name:       "cache down stays ready",
			database:   up,
			cache:      down,
			expectCode: http.StatusOK,
			expect:     HealthResponse{Status: "ready", Database: "ok", Cache: "degraded"},
		},
		{
			name:       "all up",
			database:   up,
			cache:      up,
			expectCode: http.StatusOK,
			expect:     HealthResponse{Status: "ready", Database: "ok", Cache: "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			h := &HealthHandler{pingDatabase: tt.database, pingCache: tt.cache, log: logger.Discard()}
			h.RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
			var got HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.expect {
				t.Errorf("got %+v, want %+v", got, tt.expect)
			}
		})
	}
}
