package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/repositories"
)

// ThemeHandler serves the theme reference enumeration.
type ThemeHandler struct {
	themes repositories.ThemeRepository
	logger *zap.Logger
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(themes repositories.ThemeRepository, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{themes: themes, logger: logger}
}

// RegisterRoutes registers the theme handler's routes on the given mux.
func (h *ThemeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/themes", h.List)
}

// List handles GET /api/themes.
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list themes", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list themes")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"themes": themes}); err != nil {
		h.logger.Error("Failed to encode themes", zap.Error(err))
	}
}
