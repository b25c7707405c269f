package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// SnapshotRepository provides data access for account snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.AccountSnapshot) error
	// GetForDate returns the snapshot for the given calendar day, or
	// apperrors.ErrNotFound when none exists. Backs the skip-if-scored-today
	// pre-check.
	GetForDate(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.AccountSnapshot, error)
	// GetLatestBefore returns the most recent snapshot strictly before the
	// given day, the prior observation used for trend computation.
	GetLatestBefore(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.AccountSnapshot, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.AccountSnapshot, error)
}

type snapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *database.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

const snapshotColumns = `id, account_id, snapshot_date, ofi_score, card_count,
	high_severity_count, case_volume, top_themes, score_breakdown,
	trend_delta, trend_direction, created_at`

// Create inserts a snapshot. A second insert for the same (account, day)
// violates the unique constraint and maps to apperrors.ErrSnapshotExists,
// which is how a concurrent double-run loses the race safely.
func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.AccountSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}

	topThemes, err := json.Marshal(snapshot.TopThemes)
	if err != nil {
		return fmt.Errorf("failed to marshal top themes: %w", err)
	}
	breakdown, err := json.Marshal(snapshot.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal score breakdown: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO account_snapshots (id, account_id, snapshot_date, ofi_score,
			card_count, high_severity_count, case_volume, top_themes,
			score_breakdown, trend_delta, trend_direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		snapshot.ID, snapshot.AccountID, snapshot.SnapshotDate, snapshot.OFIScore,
		snapshot.CardCount, snapshot.HighSeverityCount, snapshot.CaseVolume,
		topThemes, breakdown, snapshot.TrendDelta, snapshot.TrendDirection,
		snapshot.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrSnapshotExists
		}
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

func (r *snapshotRepository) GetForDate(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.AccountSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM account_snapshots
		WHERE account_id = $1 AND snapshot_date = $2`,
		accountID, date)
	return scanSnapshotRow(row)
}

func (r *snapshotRepository) GetLatestBefore(ctx context.Context, accountID uuid.UUID, date time.Time) (*models.AccountSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM account_snapshots
		WHERE account_id = $1 AND snapshot_date < $2
		ORDER BY snapshot_date DESC
		LIMIT 1`,
		accountID, date)
	return scanSnapshotRow(row)
}

func (r *snapshotRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.AccountSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM account_snapshots
		WHERE account_id = $1
		ORDER BY snapshot_date DESC
		LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.AccountSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshotRow(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

func scanSnapshotRow(row pgx.Row) (*models.AccountSnapshot, error) {
	snapshot := &models.AccountSnapshot{}
	var topThemes, breakdown []byte

	err := row.Scan(
		&snapshot.ID, &snapshot.AccountID, &snapshot.SnapshotDate,
		&snapshot.OFIScore, &snapshot.CardCount, &snapshot.HighSeverityCount,
		&snapshot.CaseVolume, &topThemes, &breakdown,
		&snapshot.TrendDelta, &snapshot.TrendDirection, &snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := json.Unmarshal(topThemes, &snapshot.TopThemes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal top themes: %w", err)
	}
	if err := json.Unmarshal(breakdown, &snapshot.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score breakdown: %w", err)
	}

	return snapshot, nil
}
