package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mariostorable/friction-engine/pkg/models"
	"github.com/mariostorable/friction-engine/pkg/repositories"
)

// themeSeedFile is the shape of themes.yaml.
type themeSeedFile struct {
	Themes []models.Theme `yaml:"themes"`
}

// LoadThemeSeed reads the theme enumeration from the seed file.
func LoadThemeSeed(path string) ([]models.Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme seed file: %w", err)
	}

	var seed themeSeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse theme seed file: %w", err)
	}
	if len(seed.Themes) == 0 {
		return nil, fmt.Errorf("theme seed file %s defines no themes", path)
	}

	for _, theme := range seed.Themes {
		if theme.Key == "" || theme.Label == "" {
			return nil, fmt.Errorf("theme seed file %s: every theme needs key and label", path)
		}
	}
	return seed.Themes, nil
}

// SyncThemes upserts the seed themes at startup. Themes the classifier
// recognizes but the seed omits are reported, since cards referencing them
// would violate the foreign key.
func SyncThemes(ctx context.Context, repo repositories.ThemeRepository, path string, logger *zap.Logger) error {
	themes, err := LoadThemeSeed(path)
	if err != nil {
		return err
	}

	seeded := make(map[string]bool, len(themes))
	for _, theme := range themes {
		if err := repo.Upsert(ctx, &theme); err != nil {
			return fmt.Errorf("sync theme %s: %w", theme.Key, err)
		}
		seeded[theme.Key] = true
	}

	for _, key := range []string{
		models.ThemeBillingConfusion, models.ThemeIntegrationFailure,
		models.ThemeProductGap, models.ThemeOnboardingStruggle,
		models.ThemePerformance, models.ThemeSupportExperience,
		models.ThemeDataQuality, models.ThemeOther,
	} {
		if !seeded[key] {
			return fmt.Errorf("theme seed file %s missing classifier theme %q", path, key)
		}
	}

	logger.Info("synced theme enumeration", zap.Int("count", len(themes)))
	return nil
}
