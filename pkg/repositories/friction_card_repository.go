package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// FrictionCardRepository provides data access for friction cards.
type FrictionCardRepository interface {
	Create(ctx context.Context, card *models.FrictionCard) error
	// ListFrictionByAccount returns the account's is_friction=true cards,
	// the input set of the scoring engine.
	ListFrictionByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.FrictionCard, error)
	CountFrictionByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

type frictionCardRepository struct {
	db *database.DB
}

// NewFrictionCardRepository creates a new friction card repository.
func NewFrictionCardRepository(db *database.DB) FrictionCardRepository {
	return &frictionCardRepository{db: db}
}

func (r *frictionCardRepository) Create(ctx context.Context, card *models.FrictionCard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO friction_cards (id, account_id, raw_input_id, summary, theme_key,
			severity, sentiment, root_cause, is_friction, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		card.ID, card.AccountID, card.RawInputID, card.Summary, card.ThemeKey,
		card.Severity, card.Sentiment, card.RootCause, card.IsFriction,
		card.Confidence, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create friction card: %w", err)
	}

	return nil
}

func (r *frictionCardRepository) ListFrictionByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.FrictionCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, raw_input_id, summary, theme_key, severity,
		       sentiment, root_cause, is_friction, confidence, created_at
		FROM friction_cards
		WHERE account_id = $1 AND is_friction
		ORDER BY created_at DESC`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friction cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.FrictionCard
	for rows.Next() {
		card := &models.FrictionCard{}
		if err := rows.Scan(
			&card.ID, &card.AccountID, &card.RawInputID, &card.Summary,
			&card.ThemeKey, &card.Severity, &card.Sentiment, &card.RootCause,
			&card.IsFriction, &card.Confidence, &card.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan friction card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friction cards: %w", err)
	}

	return cards, nil
}

func (r *frictionCardRepository) CountFrictionByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM friction_cards
		WHERE account_id = $1 AND is_friction`,
		accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count friction cards: %w", err)
	}
	return count, nil
}
