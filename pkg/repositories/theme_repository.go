package repositories

import (
	"context"
	"fmt"

	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/models"
)

// ThemeRepository provides access to the theme reference enumeration.
type ThemeRepository interface {
	List(ctx context.Context) ([]*models.Theme, error)
	// Upsert syncs one theme from the seed file. Label changes propagate;
	// keys are never deleted at runtime.
	Upsert(ctx context.Context, theme *models.Theme) error
}

type themeRepository struct {
	db *database.DB
}

// NewThemeRepository creates a new theme repository.
func NewThemeRepository(db *database.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) List(ctx context.Context) ([]*models.Theme, error) {
	rows, err := r.db.Query(ctx, `SELECT key, label, created_at FROM themes ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var themes []*models.Theme
	for rows.Next() {
		theme := &models.Theme{}
		if err := rows.Scan(&theme.Key, &theme.Label, &theme.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, theme)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating themes: %w", err)
	}

	return themes, nil
}

func (r *themeRepository) Upsert(ctx context.Context, theme *models.Theme) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO themes (key, label)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET label = EXCLUDED.label`,
		theme.Key, theme.Label,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert theme: %w", err)
	}
	return nil
}
