package health

import (
	"context"
	"net/http"
	"time"

	httputil "rentals/pkg/http"
	"rentals/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

type pingFunc func(ctx context.Context) error

type HealthHandler struct {
	pingDatabase pingFunc
	pingCache    pingFunc
	log          *logger.Logger
}

// NewHealthHandler checks Mongo for readiness. Redis is reported when
// configured but never fails readiness, since searches fall back to Mongo.
func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	h := &HealthHandler{
		pingDatabase: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		log:          log,
	}
	if redisClient != nil {
		h.pingCache = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return h
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, "Health", http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Database: "ok"}
	status := http.StatusOK

	if err := h.pingDatabase(ctx); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		resp.Status, resp.Database = "unavailable", "error"
		status = http.StatusServiceUnavailable
	}

	if h.pingCache != nil {
		resp.Cache = "ok"
		if err := h.pingCache(ctx); err != nil {
			h.log.Warn("Cache health check failed", "error", err)
			resp.Cache = "degraded"
		}
	}

	h.write(w, "Ready", status, resp)
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

func (h *HealthHandler) write(w http.ResponseWriter, handler string, status int, resp HealthResponse) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}
