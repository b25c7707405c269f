package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/models"
)

const fullSeed = `themes:
  - key: billing_confusion
    label: Billing Confusion
  - key: integration_failure
    label: Integration Failure
  - key: product_gap
    label: Product Gap
  - key: onboarding_struggle
    label: Onboarding Struggle
  - key: performance
    label: Performance
  - key: support_experience
    label: Support Experience
  - key: data_quality
    label: Data Quality
  - key: other
    label: Other
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeThemeRepo struct {
	upserted []*models.Theme
}

func (f *fakeThemeRepo) List(ctx context.Context) ([]*models.Theme, error) {
	return f.upserted, nil
}

func (f *fakeThemeRepo) Upsert(ctx context.Context, theme *models.Theme) error {
	f.upserted = append(f.upserted, theme)
	return nil
}

func TestLoadThemeSeed(t *testing.T) {
	themes, err := LoadThemeSeed(writeSeed(t, fullSeed))
	require.NoError(t, err)
	assert.Len(t, themes, 8)
	assert.Equal(t, "billing_confusion", themes[0].Key)
	assert.Equal(t, "Billing Confusion", themes[0].Label)
}

func TestLoadThemeSeed_Invalid(t *testing.T) {
	_, err := LoadThemeSeed(writeSeed(t, "themes: []\n"))
	assert.Error(t, err)

	_, err = LoadThemeSeed(writeSeed(t, "themes:\n  - key: x\n"))
	assert.Error(t, err, "label is required")

	_, err = LoadThemeSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSyncThemes(t *testing.T) {
	repo := &fakeThemeRepo{}
	err := SyncThemes(context.Background(), repo, writeSeed(t, fullSeed), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, repo.upserted, 8)
}

func TestSyncThemes_MissingClassifierTheme(t *testing.T) {
	partial := `themes:
  - key: billing_confusion
    label: Billing Confusion
`
	repo := &fakeThemeRepo{}
	err := SyncThemes(context.Background(), repo, writeSeed(t, partial), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing classifier theme")
}
