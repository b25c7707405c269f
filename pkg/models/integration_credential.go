package models

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationCredential holds the CRM OAuth material for one connected
// integration. The refresh token is encrypted with AES-256-GCM before it
// reaches the row; plaintext never touches the database.
// Stored in integration_credentials table.
type IntegrationCredential struct {
	ID                    uuid.UUID  `json:"id"`
	Provider              string     `json:"provider"` // e.g. "salesforce"
	InstanceURL           string     `json:"instance_url"`
	EncryptedRefreshToken string     `json:"-"`
	LastRefreshedAt       *time.Time `json:"last_refreshed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
