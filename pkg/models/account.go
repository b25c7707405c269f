package models

import (
	"time"

	"github.com/google/uuid"
)

// Account lifecycle statuses as synced from the CRM.
// Accounts are created by a separate sync process; this pipeline only
// reads them and checks status before scoring.
const (
	AccountStatusActive    = "active"
	AccountStatusCancelled = "cancelled"
	AccountStatusChurned   = "churned"
)

// Account represents one customer account in the portfolio.
// Stored in accounts table.
type Account struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"` // CRM account identifier
	Name       string    `json:"name"`
	Revenue    float64   `json:"revenue"` // Annual revenue figure from CRM
	Vertical   string    `json:"vertical"`
	Product    string    `json:"product"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsScorable reports whether the account should be processed by an
// analysis run. Cancelled and churned accounts are skipped.
func (a *Account) IsScorable() bool {
	return a.Status != AccountStatusCancelled && a.Status != AccountStatusChurned
}
