package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// AnalysisRunner is the orchestrator surface the handler needs.
type AnalysisRunner interface {
	Run(ctx context.Context, accountIDs []uuid.UUID) (*models.RunSummary, error)
}

// AnalysisHandler triggers analysis runs.
type AnalysisHandler struct {
	runner AnalysisRunner
	logger *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(runner AnalysisRunner, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{runner: runner, logger: logger}
}

// RegisterRoutes registers the analysis handler's routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/analysis/run", h.Run)
}

// runRequest optionally narrows a run to specific accounts.
type runRequest struct {
	AccountIDs []uuid.UUID `json:"account_ids"`
}

// Run handles POST /api/analysis/run. The request body is optional; an
// empty body sweeps the whole portfolio. The call is synchronous: the
// scheduler that triggers it owns the timeout.
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	summary, err := h.runner.Run(r.Context(), req.AccountIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrRunInProgress) {
			_ = ErrorResponse(w, http.StatusConflict, "run_in_progress", "an analysis run is already in progress")
			return
		}
		h.logger.Error("analysis run failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "run_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode run summary", zap.Error(err))
	}
}
