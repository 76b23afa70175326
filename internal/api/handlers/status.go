package handlers

import (
	"net/http"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// StatusHandler serves health and operational status endpoints
type StatusHandler struct {
	db     *database.DB
	store  contracts.SnapshotStore
	logger *logger.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *database.DB, store contracts.SnapshotStore, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		store:  store,
		logger: log,
	}
}

// Health returns basic liveness.
// GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "kquant-api",
	})
}

// Status reports the snapshot freshness and the database health.
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbHealth, err := h.db.HealthCheck(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Database health check failed")
	}

	status := map[string]interface{}{
		"success":  err == nil,
		"database": dbHealth,
	}

	snap, snapErr := h.store.Current(ctx)
	if snapErr != nil {
		h.logger.WithError(snapErr).Error("Failed to load current snapshot")
		status["snapshot"] = nil
	} else if snap == nil {
		status["snapshot"] = nil
	} else {
		status["snapshot"] = map[string]interface{}{
			"date":       snap.Date.Format("2006-01-02"),
			"securities": len(snap.Rows),
		}
	}

	code := http.StatusOK
	if err != nil {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}
