package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/models"
	"github.com/mariostorable/friction-engine/pkg/testhelpers"
)

// insertAccount seeds one portfolio account directly; accounts are owned
// by the CRM sync, so there is no write path through the repositories.
func insertAccount(t *testing.T, db *testhelpers.TestDB, name string) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:         uuid.New(),
		ExternalID: "001" + uuid.NewString()[:8],
		Name:       name,
		Revenue:    100000,
		Status:     models.AccountStatusActive,
	}
	_, err := db.DB.Exec(context.Background(), `
		INSERT INTO accounts (id, external_id, name, revenue, vertical, product, status)
		VALUES ($1, $2, $3, $4, 'storage', 'edge', $5)`,
		account.ID, account.ExternalID, account.Name, account.Revenue, account.Status)
	require.NoError(t, err)
	return account
}

func TestRawInputRepository_DedupRoundTrip(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	account := insertAccount(t, db, "Dedup Co")
	repo := NewRawInputRepository(db.DB)

	input := &models.RawInput{
		AccountID:      account.ID,
		Source:         models.SourceCase,
		SourceRecordID: "500AAA",
		Text:           "Gate offline at site 3",
		Metadata:       map[string]any{"case_number": "1001"},
	}
	require.NoError(t, repo.Create(ctx, input))

	existing, err := repo.ExistingSourceIDs(ctx, account.ID, models.SourceCase)
	require.NoError(t, err)
	assert.True(t, existing["500AAA"])
	assert.False(t, existing["500BBB"])

	// The unique triple rejects a double ingest.
	dup := &models.RawInput{
		AccountID:      account.ID,
		Source:         models.SourceCase,
		SourceRecordID: "500AAA",
		Text:           "same case again",
	}
	assert.Error(t, repo.Create(ctx, dup))

	require.NoError(t, repo.MarkProcessed(ctx, []uuid.UUID{input.ID}))
	var processed bool
	require.NoError(t, db.DB.QueryRow(ctx,
		`SELECT processed FROM raw_inputs WHERE id = $1`, input.ID).Scan(&processed))
	assert.True(t, processed)
}

func TestFrictionCardRepository_ListsOnlyFriction(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	account := insertAccount(t, db, "Card Co")
	inputs := NewRawInputRepository(db.DB)
	cards := NewFrictionCardRepository(db.DB)

	makeCard := func(recordID string, isFriction bool, severity int) {
		input := &models.RawInput{
			AccountID:      account.ID,
			Source:         models.SourceCase,
			SourceRecordID: recordID,
			Text:           "text",
		}
		require.NoError(t, inputs.Create(ctx, input))
		require.NoError(t, cards.Create(ctx, &models.FrictionCard{
			AccountID:  account.ID,
			RawInputID: input.ID,
			Summary:    "summary",
			ThemeKey:   models.ThemeOther,
			Severity:   severity,
			Sentiment:  models.SentimentNegative,
			IsFriction: isFriction,
			Confidence: 0.8,
		}))
	}
	makeCard("C1", true, 4)
	makeCard("C2", false, 2)
	makeCard("C3", true, 5)

	listed, err := cards.ListFrictionByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	for _, card := range listed {
		assert.True(t, card.IsFriction)
	}

	count, err := cards.CountFrictionByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSnapshotRepository_OnePerDay(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	account := insertAccount(t, db, "Snapshot Co")
	repo := NewSnapshotRepository(db.DB)

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	delta := 12

	require.NoError(t, repo.Create(ctx, &models.AccountSnapshot{
		AccountID:      account.ID,
		SnapshotDate:   yesterday,
		OFIScore:       50,
		TopThemes:      []models.ThemeAggregate{},
		TrendDirection: models.TrendStable,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccountSnapshot{
		AccountID:         account.ID,
		SnapshotDate:      today,
		OFIScore:          62,
		CardCount:         3,
		HighSeverityCount: 2,
		CaseVolume:        10,
		TopThemes: []models.ThemeAggregate{
			{ThemeKey: models.ThemeIntegrationFailure, Count: 2, AvgSeverity: 4.5},
		},
		Breakdown:      models.ScoreBreakdown{WeightedScore: 33, BaseScore: 30.66, DensityMultiplier: 2.0, HighSeverityBoost: 4, CardCount: 3, FrictionDensity: 30},
		TrendDelta:     &delta,
		TrendDirection: models.TrendWorsening,
	}))

	// Second write for the same day loses to the unique constraint.
	err := repo.Create(ctx, &models.AccountSnapshot{
		AccountID:      account.ID,
		SnapshotDate:   today,
		OFIScore:       99,
		TopThemes:      []models.ThemeAggregate{},
		TrendDirection: models.TrendStable,
	})
	assert.ErrorIs(t, err, apperrors.ErrSnapshotExists)

	got, err := repo.GetForDate(ctx, account.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 62, got.OFIScore)
	require.NotNil(t, got.TrendDelta)
	assert.Equal(t, 12, *got.TrendDelta)
	require.Len(t, got.TopThemes, 1)
	assert.Equal(t, models.ThemeIntegrationFailure, got.TopThemes[0].ThemeKey)
	assert.Equal(t, 33, got.Breakdown.WeightedScore)

	prior, err := repo.GetLatestBefore(ctx, account.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 50, prior.OFIScore)
	assert.Nil(t, prior.TrendDelta)

	_, err = repo.GetForDate(ctx, account.ID, today.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	history, err := repo.ListByAccount(ctx, account.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 62, history[0].OFIScore, "newest first")
}

func TestAlertRepository_TTL(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	account := insertAccount(t, db, "Alert Co")
	repo := NewAlertRepository(db.DB)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.Alert{
		AccountID: account.ID,
		AlertType: models.AlertHighFriction,
		Severity:  models.AlertSeverityCritical,
		Title:     "High friction: Alert Co",
		Message:   "score above threshold",
		Evidence:  map[string]any{"ofi_score": 80},
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &models.Alert{
		AccountID: account.ID,
		AlertType: models.AlertTrendingWorse,
		Severity:  models.AlertSeverityWarning,
		Title:     "stale",
		Message:   "expired last week",
		ExpiresAt: now.Add(-time.Hour),
	}))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	for _, alert := range active {
		assert.NotEqual(t, "stale", alert.Title)
	}

	purged, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	var remaining int
	require.NoError(t, db.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE account_id = $1`, account.ID).Scan(&remaining))
	assert.Equal(t, 1, remaining)
}

func TestThemeRepository_UpsertIdempotent(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	repo := NewThemeRepository(db.DB)

	require.NoError(t, repo.Upsert(ctx, &models.Theme{Key: models.ThemeOther, Label: "Other"}))
	require.NoError(t, repo.Upsert(ctx, &models.Theme{Key: models.ThemeOther, Label: "Everything Else"}))

	themes, err := repo.List(ctx)
	require.NoError(t, err)

	var label string
	for _, theme := range themes {
		if theme.Key == models.ThemeOther {
			label = theme.Label
		}
	}
	assert.Equal(t, "Everything Else", label)
}

func TestCredentialRepository_RoundTrip(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()
	repo := NewCredentialRepository(db.DB)

	_, err := repo.GetByProvider(ctx, "nonexistent")
	assert.ErrorIs(t, err, apperrors.ErrNoCredentials)

	cred := &models.IntegrationCredential{
		Provider:              "salesforce",
		InstanceURL:           "https://example.my.salesforce.com",
		EncryptedRefreshToken: "ciphertext-v1",
	}
	require.NoError(t, repo.Store(ctx, cred))

	// Upsert replaces the token for the same provider.
	require.NoError(t, repo.Store(ctx, &models.IntegrationCredential{
		Provider:              "salesforce",
		InstanceURL:           "https://example.my.salesforce.com",
		EncryptedRefreshToken: "ciphertext-v2",
	}))

	got, err := repo.GetByProvider(ctx, "salesforce")
	require.NoError(t, err)
	assert.Equal(t, "ciphertext-v2", got.EncryptedRefreshToken)
	assert.Nil(t, got.LastRefreshedAt)

	at := time.Now().Truncate(time.Second)
	require.NoError(t, repo.TouchRefreshed(ctx, got.ID, at))

	got, err = repo.GetByProvider(ctx, "salesforce")
	require.NoError(t, err)
	require.NotNil(t, got.LastRefreshedAt)
}
