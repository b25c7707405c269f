package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/repositories"
)

// AlertHandler serves active alerts.
type AlertHandler struct {
	alerts repositories.AlertRepository
	logger *zap.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alerts repositories.AlertRepository, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

// RegisterRoutes registers the alert handler's routes on the given mux.
func (h *AlertHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/alerts", h.List)
}

// List handles GET /api/alerts. Only unexpired alerts are returned;
// expired rows linger until the next run's housekeeping but are filtered
// here regardless.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list alerts")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"alerts": alerts}); err != nil {
		h.logger.Error("Failed to encode alerts", zap.Error(err))
	}
}
