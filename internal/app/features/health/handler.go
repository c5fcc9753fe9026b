package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is an optional dependency whose reachability is reported but does
// not fail the check. The notification broker satisfies it.
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Redis  Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. redis may be nil.
func NewHandler(client *mongo.Client, redis Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Redis:  redis,
		Log:    logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "redis":"connected|disabled|unreachable" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Redis:    h.redisState(ctx),
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		apperr.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) redisState(ctx context.Context) string {
	if h.Redis == nil || !h.Redis.Enabled() {
		return "disabled"
	}
	if err := h.Redis.Ping(ctx); err != nil {
		h.Log.Warn("health-check: redis ping failed", zap.Error(err))
		return "unreachable"
	}
	return "connected"
}
