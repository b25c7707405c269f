package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// CredentialRepository provides data access for integration credentials.
// Tokens are stored encrypted; this layer never sees plaintext.
type CredentialRepository interface {
	GetByProvider(ctx context.Context, provider string) (*models.IntegrationCredential, error)
	Store(ctx context.Context, cred *models.IntegrationCredential) error
	TouchRefreshed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type credentialRepository struct {
	db *database.DB
}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository(db *database.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByProvider(ctx context.Context, provider string) (*models.IntegrationCredential, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, provider, instance_url, encrypted_refresh_token,
		       last_refreshed_at, created_at, updated_at
		FROM integration_credentials
		WHERE provider = $1`, provider)

	cred := &models.IntegrationCredential{}
	err := row.Scan(
		&cred.ID, &cred.Provider, &cred.InstanceURL, &cred.EncryptedRefreshToken,
		&cred.LastRefreshedAt, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

// Store upserts the credential for a provider (one row per provider).
func (r *credentialRepository) Store(ctx context.Context, cred *models.IntegrationCredential) error {
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO integration_credentials (id, provider, instance_url,
			encrypted_refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (provider) DO UPDATE
		SET instance_url = EXCLUDED.instance_url,
		    encrypted_refresh_token = EXCLUDED.encrypted_refresh_token,
		    updated_at = EXCLUDED.updated_at`,
		cred.ID, cred.Provider, cred.InstanceURL, cred.EncryptedRefreshToken, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) TouchRefreshed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE integration_credentials
		SET last_refreshed_at = $2, updated_at = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to record token refresh: %w", err)
	}
	return nil
}
