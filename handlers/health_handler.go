package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/upb/identity-core/utils"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

// HealthResponse is the body returned by the liveness and readiness probes
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz. Liveness only says the process is up.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz. Readiness additionally requires the
// database, since every operation here resolves against it.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{}
	status := "healthy"
	httpStatus := http.StatusOK

	for name, check := range h.readinessChecks() {
		if err := check(ctx); err != nil {
			h.logger.Warn("readiness check failed",
				zap.String("check", name),
				zap.Error(err),
			)
			checks[name] = "unhealthy"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// readinessChecks names the dependencies readiness gates on
func (h *HealthHandler) readinessChecks() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"database": h.checkDatabase,
	}
}

// checkDatabase pings the pool and runs a trivial query so a wedged
// connection fails readiness, not just a closed one.
func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var one int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
