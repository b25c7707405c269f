package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/repositories"
)

// SnapshotHandler serves account score history.
type SnapshotHandler struct {
	accounts  repositories.AccountRepository
	snapshots repositories.SnapshotRepository
	logger    *zap.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(accounts repositories.AccountRepository, snapshots repositories.SnapshotRepository, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{accounts: accounts, snapshots: snapshots, logger: logger}
}

// RegisterRoutes registers the snapshot handler's routes on the given mux.
func (h *SnapshotHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/accounts/{id}/snapshots", h.List)
}

// List handles GET /api/accounts/{id}/snapshots?limit=N, newest first.
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_account_id", "account id must be a UUID")
		return
	}

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
	}

	if _, err := h.accounts.Get(r.Context(), accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "account_not_found", "no such account")
			return
		}
		h.logger.Error("failed to load account", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load account")
		return
	}

	snapshots, err := h.snapshots.ListByAccount(r.Context(), accountID, limit)
	if err != nil {
		h.logger.Error("failed to list snapshots", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list snapshots")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"snapshots": snapshots}); err != nil {
		h.logger.Error("Failed to encode snapshots", zap.Error(err))
	}
}
