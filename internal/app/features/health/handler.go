// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler serves liveness and readiness probes.
type Handler struct {
	Client Pinger
	Log    *zap.Logger
}

func NewHandler(client Pinger, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger}
}

type check struct {
	Status    string `json:"status"` // up | down
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type report struct {
	Status string           `json:"status"` // ok | unavailable
	Checks map[string]check `json:"checks,omitempty"`
}

// ServeReady handles GET /health: 200 when MongoDB answers a primary ping
// within timeouts.Ping(), otherwise 503.
//
//	{ "status":"ok", "checks":{ "mongo":{ "status":"up", "latency_ms":2 } } }
func (h *Handler) ServeReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	start := time.Now()
	err := h.Client.Ping(ctx, readpref.Primary())
	mongo := check{Status: "up", LatencyMS: time.Since(start).Milliseconds()}

	status, code := "ok", http.StatusOK
	if err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		mongo.Status, mongo.Error = "down", err.Error()
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	uierrors.WriteJSON(w, code, report{Status: status, Checks: map[string]check{"mongo": mongo}})
}

// ServeLive handles GET /health/live. It touches nothing external.
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	uierrors.WriteJSON(w, http.StatusOK, report{Status: "ok"})
}
