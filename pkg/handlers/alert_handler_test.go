package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/models"
)

type fakeAlertRepo struct {
	alerts []*models.Alert
	err    error
}

func (f *fakeAlertRepo) Create(ctx context.Context, alert *models.Alert) error { return nil }

func (f *fakeAlertRepo) ListActive(ctx context.Context) ([]*models.Alert, error) {
	return f.alerts, f.err
}

func (f *fakeAlertRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func TestAlertList(t *testing.T) {
	repo := &fakeAlertRepo{alerts: []*models.Alert{{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		AlertType: models.AlertHighFriction,
		Severity:  models.AlertSeverityCritical,
		Title:     "High friction: Acme Storage",
	}}}
	mux := http.NewServeMux()
	NewAlertHandler(repo, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.AlertHighFriction)
}

func TestAlertList_StoreError(t *testing.T) {
	mux := http.NewServeMux()
	NewAlertHandler(&fakeAlertRepo{err: errors.New("boom")}, zap.NewNop()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
