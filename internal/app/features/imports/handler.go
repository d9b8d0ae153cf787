// internal/app/features/imports/handler.go
package imports

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"github.com/dalemusser/orgsync/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultLimit is how many runs GET /imports returns without ?limit.
const DefaultLimit = 20

// History is the read side of the import-run store.
type History interface {
	Recent(ctx context.Context, limit int) ([]models.ImportRun, error)
	Get(ctx context.Context, runID string) (*models.ImportRun, error)
}

// Handler serves roster import history.
type Handler struct {
	Runs   History
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(runs History, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Runs: runs, ErrLog: errLog, Log: logger}
}

// ServeList handles GET /imports?limit=N, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			uierrors.RenderBadRequest(w, r, "limit must be a positive number.")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	runs, err := h.Runs.Recent(ctx, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list import runs", err, "A database error occurred.")
		return
	}
	if runs == nil {
		runs = []models.ImportRun{}
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// ServeRun handles GET /imports/{runID}.
func (h *Handler) ServeRun(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	run, err := h.Runs.Get(ctx, chi.URLParam(r, "runID"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "Import run not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load import run", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, run)
}
