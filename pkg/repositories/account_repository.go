package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// AccountRepository provides read access to portfolio accounts.
// Accounts are created by a separate CRM sync; the pipeline never writes
// them.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Account, error)
	ListForAnalysis(ctx context.Context) ([]*models.Account, error)
}

type accountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *database.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, external_id, name, revenue, vertical, product, status, created_at, updated_at`

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *accountRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE external_id = $1`, externalID)
	return scanAccount(row)
}

// ListForAnalysis returns every account in the portfolio, highest revenue
// first so the run cap spends its budget on the largest accounts.
func (r *accountRepository) ListForAnalysis(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY revenue DESC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(
			&account.ID, &account.ExternalID, &account.Name, &account.Revenue,
			&account.Vertical, &account.Product, &account.Status,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.ExternalID, &account.Name, &account.Revenue,
		&account.Vertical, &account.Product, &account.Status,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
