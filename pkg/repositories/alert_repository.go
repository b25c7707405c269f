package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// AlertRepository provides data access for friction alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	ListActive(ctx context.Context) ([]*models.Alert, error)
	// DeleteExpired purges all alerts whose expiry has passed. Run as
	// housekeeping at the start of every analysis pass; returns the number
	// of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type alertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *database.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	evidence, err := json.Marshal(alert.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO alerts (id, account_id, alert_type, severity, title, message,
			evidence, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID, alert.AccountID, alert.AlertType, alert.Severity,
		alert.Title, alert.Message, evidence, alert.ExpiresAt, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

func (r *alertRepository) ListActive(ctx context.Context) ([]*models.Alert, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, alert_type, severity, title, message, evidence,
		       expires_at, created_at
		FROM alerts
		WHERE expires_at > now()
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert := &models.Alert{}
		var evidence []byte
		if err := rows.Scan(
			&alert.ID, &alert.AccountID, &alert.AlertType, &alert.Severity,
			&alert.Title, &alert.Message, &evidence, &alert.ExpiresAt,
			&alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if err := json.Unmarshal(evidence, &alert.Evidence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}
