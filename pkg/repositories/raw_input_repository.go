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

// RawInputRepository provides data access for ingested support records.
type RawInputRepository interface {
	Create(ctx context.Context, input *models.RawInput) error
	// ExistingSourceIDs returns the set of source record identifiers already
	// ingested for the account and source tag. This backs the deduplicator.
	ExistingSourceIDs(ctx context.Context, accountID uuid.UUID, source string) (map[string]bool, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID) error
}

type rawInputRepository struct {
	db *database.DB
}

// NewRawInputRepository creates a new raw input repository.
func NewRawInputRepository(db *database.DB) RawInputRepository {
	return &rawInputRepository{db: db}
}

// Create inserts a raw input. The (account_id, source, source_record_id)
// unique constraint makes a duplicate insert a conflict error rather than a
// silent double-count; callers are expected to have deduplicated first.
func (r *rawInputRepository) Create(ctx context.Context, input *models.RawInput) error {
	if input.ID == uuid.Nil {
		input.ID = uuid.New()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	metadata, err := json.Marshal(input.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO raw_inputs (id, account_id, source, source_record_id, text, metadata, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		input.ID, input.AccountID, input.Source, input.SourceRecordID,
		input.Text, metadata, input.Processed, input.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create raw input: %w", err)
	}

	return nil
}

func (r *rawInputRepository) ExistingSourceIDs(ctx context.Context, accountID uuid.UUID, source string) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `
		SELECT source_record_id
		FROM raw_inputs
		WHERE account_id = $1 AND source = $2`,
		accountID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing source ids: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan source id: %w", err)
		}
		existing[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source ids: %w", err)
	}

	return existing, nil
}

// MarkProcessed flips processed=true for the given inputs. Called for every
// record that was submitted to the classifier, whether or not a card came
// back, so a permanently malformed record is not retried forever.
func (r *rawInputRepository) MarkProcessed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx, `UPDATE raw_inputs SET processed = TRUE WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark raw inputs processed: %w", err)
	}

	return nil
}
