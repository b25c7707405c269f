package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
	"github.com/mariostorable/friction-engine/pkg/classifier"
	"github.com/mariostorable/friction-engine/pkg/config"
	"github.com/mariostorable/friction-engine/pkg/crm"
	"github.com/mariostorable/friction-engine/pkg/logging"
	"github.com/mariostorable/friction-engine/pkg/models"
	"github.com/mariostorable/friction-engine/pkg/repositories"
	"github.com/mariostorable/friction-engine/pkg/scoring"
)

// Judge is the classification surface the orchestrator needs.
type Judge interface {
	Classify(ctx context.Context, text string) (*classifier.Judgment, error)
}

// Deps bundles everything the orchestrator talks to.
type Deps struct {
	Accounts   repositories.AccountRepository
	RawInputs  repositories.RawInputRepository
	Cards      repositories.FrictionCardRepository
	Snapshots  repositories.SnapshotRepository
	Alerts     repositories.AlertRepository
	Cases      crm.CaseStore
	Classifier Judge
	Lock       *RunLock
}

// Orchestrator runs the analysis pass: one sequential sweep over the
// portfolio, one account at a time. Sequential is the point — the external
// classification service is the bottleneck and the inter-call delay plus
// the run cap are how the run stays inside its time and rate budgets.
type Orchestrator struct {
	deps   Deps
	cfg    config.PipelineConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(deps Deps, cfg config.PipelineConfig, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		cfg:    cfg,
		logger: logger.Named("orchestrator"),
		now:    time.Now,
	}
}

// Run executes one analysis pass. With accountIDs empty the whole
// portfolio is swept in revenue order; otherwise only the named accounts
// are considered, and an unknown ID is silently ignored.
//
// No individual account failure aborts the run: every account lands on
// exactly one terminal outcome in the summary. The run stops early only
// when the per-run account cap is exhausted.
func (o *Orchestrator) Run(ctx context.Context, accountIDs []uuid.UUID) (*models.RunSummary, error) {
	release, err := o.deps.Lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := o.now()
	if purged, err := o.deps.Alerts.DeleteExpired(ctx, start); err != nil {
		return nil, fmt.Errorf("alert housekeeping: %w", err)
	} else if purged > 0 {
		o.logger.Info("purged expired alerts", zap.Int64("count", purged))
	}

	accounts, err := o.resolveAccounts(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	today := dateOf(start)
	summary := &models.RunSummary{Results: []models.AccountResult{}}
	processed := 0

	for _, account := range accounts {
		if result, skip := o.preCheck(ctx, account, today); skip {
			summary.Record(result)
			continue
		}

		if processed >= o.cfg.RunAccountCap {
			o.logger.Warn("run account cap reached, stopping run",
				zap.Int("cap", o.cfg.RunAccountCap),
				zap.Int("accounts_remaining", len(accounts)-len(summary.Results)))
			break
		}
		processed++

		result := o.analyzeAccount(ctx, account, today)
		summary.Record(result)

		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
	}

	summary.Success = true
	o.logger.Info("analysis run complete",
		zap.Int("analyzed", summary.Analyzed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("no_cases", summary.NoCases),
		zap.Int("failed", summary.Failed),
		zap.Int("snapshot_errors", summary.Errors),
		zap.Duration("elapsed", o.now().Sub(start)))
	return summary, nil
}

// resolveAccounts loads the run's account list. Unknown explicit IDs are
// dropped without an outcome; they were never part of the portfolio.
func (o *Orchestrator) resolveAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]*models.Account, error) {
	if len(accountIDs) == 0 {
		accounts, err := o.deps.Accounts.ListForAnalysis(ctx)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		return accounts, nil
	}

	accounts := make([]*models.Account, 0, len(accountIDs))
	for _, id := range accountIDs {
		account, err := o.deps.Accounts.Get(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				o.logger.Debug("requested account not found", zap.String("account_id", id.String()))
				continue
			}
			return nil, fmt.Errorf("load account %s: %w", id, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// preCheck evaluates the skip conditions that do not consume run budget:
// unscorable status and already-scored-today.
func (o *Orchestrator) preCheck(ctx context.Context, account *models.Account, today time.Time) (models.AccountResult, bool) {
	if !account.IsScorable() {
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusSkipped,
			Reason:      fmt.Sprintf("account status is %s", account.Status),
		}, true
	}

	existing, err := o.deps.Snapshots.GetForDate(ctx, account.ID, today)
	if err == nil {
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusSkipped,
			OFIScore:    existing.OFIScore,
			Reason:      "already scored today",
		}, true
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusSnapshotError,
			Reason:      err.Error(),
		}, true
	}

	return models.AccountResult{}, false
}

// analyzeAccount runs the fetch → dedup → classify → score → trend/alert
// sequence for one account and maps every failure onto a terminal outcome.
func (o *Orchestrator) analyzeAccount(ctx context.Context, account *models.Account, today time.Time) models.AccountResult {
	logger := o.logger.With(
		zap.String("account_id", account.ID.String()),
		zap.String("account_name", account.Name))

	since := o.now().AddDate(0, 0, -o.cfg.CaseWindowDays)
	records, err := o.deps.Cases.FetchCases(ctx, account.ExternalID, since, o.cfg.CaseFetchLimit)
	if err != nil {
		// The error may wrap an OAuth exchange; scrub it before it reaches
		// the log or the run summary.
		reason := logging.SanitizeError(err)
		logger.Warn("case fetch failed", zap.String("reason", reason))
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusFailed,
			Reason:      "case fetch: " + reason,
		}
	}
	caseVolume := len(records)

	existingIDs, err := o.deps.RawInputs.ExistingSourceIDs(ctx, account.ID, models.SourceCase)
	if err != nil {
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusFailed,
			Reason:      fmt.Sprintf("dedup lookup: %v", err),
		}
	}
	fresh := FilterNew(records, existingIDs)

	newCards := 0
	if len(fresh) > 0 {
		newCards, err = o.classifyBatch(ctx, account, fresh, logger)
		if err != nil {
			return models.AccountResult{
				AccountID:   account.ID,
				AccountName: account.Name,
				Status:      models.RunStatusFailed,
				Reason:      err.Error(),
			}
		}
	}

	cards, err := o.deps.Cards.ListFrictionByAccount(ctx, account.ID)
	if err != nil {
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusFailed,
			Reason:      fmt.Sprintf("load friction cards: %v", err),
		}
	}

	result := scoring.Compute(derefCards(cards), caseVolume)
	status := models.RunStatusSuccess
	if len(fresh) == 0 && len(cards) == 0 {
		// Quiet account with no history: persist the zero observation so
		// trends and the UI still see a point for today.
		status = models.RunStatusNoCases
	}

	if err := o.persistObservation(ctx, account, today, result, logger); err != nil {
		if errors.Is(err, apperrors.ErrSnapshotExists) {
			// Lost a same-day race to a concurrent run; their snapshot stands.
			return models.AccountResult{
				AccountID:   account.ID,
				AccountName: account.Name,
				Status:      models.RunStatusSkipped,
				OFIScore:    result.OFIScore,
				Reason:      "snapshot already written for today",
			}
		}
		logger.Error("snapshot persistence failed", zap.Error(err))
		return models.AccountResult{
			AccountID:   account.ID,
			AccountName: account.Name,
			Status:      models.RunStatusSnapshotError,
			OFIScore:    result.OFIScore,
			Reason:      err.Error(),
		}
	}

	logger.Info("account analyzed",
		zap.Int("ofi_score", result.OFIScore),
		zap.Int("new_cards", newCards),
		zap.Int("case_volume", caseVolume))
	return models.AccountResult{
		AccountID:   account.ID,
		AccountName: account.Name,
		Status:      status,
		OFIScore:    result.OFIScore,
		NewCards:    newCards,
	}
}

// classifyBatch ingests and classifies the new records, returning how many
// friction cards were created. A record whose classification fails is
// logged and left without a card; it is still marked processed so a
// permanently bad record is not re-submitted every run. Only a dead
// context aborts the batch.
func (o *Orchestrator) classifyBatch(ctx context.Context, account *models.Account, fresh []crm.CaseRecord, logger *zap.Logger) (int, error) {
	submitted := make([]uuid.UUID, 0, len(fresh))
	newCards := 0

	defer func() {
		if len(submitted) == 0 {
			return
		}
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := o.deps.RawInputs.MarkProcessed(markCtx, submitted); err != nil {
			logger.Error("failed to mark raw inputs processed", zap.Error(err))
		}
	}()

	for i, rec := range fresh {
		if i > 0 {
			if err := sleepCtx(ctx, o.cfg.ClassifyDelay); err != nil {
				return newCards, fmt.Errorf("classification batch interrupted: %w", err)
			}
		}

		input := toRawInput(account.ID, rec)
		if err := o.deps.RawInputs.Create(ctx, input); err != nil {
			return newCards, fmt.Errorf("ingest case %s: %w", rec.ID, err)
		}

		judgment, err := o.deps.Classifier.Classify(ctx, input.Text)
		submitted = append(submitted, input.ID)
		if err != nil {
			if ctx.Err() != nil {
				return newCards, fmt.Errorf("classification batch interrupted: %w", ctx.Err())
			}
			logger.Warn("classification failed, skipping record",
				zap.String("source_record_id", rec.ID),
				zap.Error(err))
			continue
		}

		card := &models.FrictionCard{
			AccountID:  account.ID,
			RawInputID: input.ID,
			Summary:    judgment.Summary,
			ThemeKey:   judgment.ThemeKey,
			Severity:   judgment.Severity,
			Sentiment:  judgment.Sentiment,
			RootCause:  judgment.RootCause,
			IsFriction: judgment.IsFriction,
			Confidence: judgment.Confidence,
		}
		if err := o.deps.Cards.Create(ctx, card); err != nil {
			return newCards, fmt.Errorf("persist friction card for case %s: %w", rec.ID, err)
		}
		if card.IsFriction {
			newCards++
		}
	}

	return newCards, nil
}

// persistObservation writes the snapshot for today and raises alerts.
func (o *Orchestrator) persistObservation(ctx context.Context, account *models.Account, today time.Time, result scoring.Result, logger *zap.Logger) error {
	prior, err := o.deps.Snapshots.GetLatestBefore(ctx, account.ID, today)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("load prior snapshot: %w", err)
		}
		prior = nil
	}

	delta, direction := scoring.Trend(result.OFIScore, prior)

	snapshot := &models.AccountSnapshot{
		AccountID:         account.ID,
		SnapshotDate:      today,
		OFIScore:          result.OFIScore,
		CardCount:         result.CardCount,
		HighSeverityCount: result.HighSeverityCount,
		CaseVolume:        result.CaseVolume,
		TopThemes:         result.TopThemes,
		Breakdown:         result.Breakdown,
		TrendDelta:        delta,
		TrendDirection:    direction,
	}
	if err := o.deps.Snapshots.Create(ctx, snapshot); err != nil {
		return err
	}

	for _, alert := range scoring.BuildAlerts(account, result, delta, direction, o.cfg.AlertTTL, o.now()) {
		if err := o.deps.Alerts.Create(ctx, alert); err != nil {
			// The snapshot is already durable; a lost alert is re-derivable
			// on the next qualifying run.
			logger.Error("failed to persist alert",
				zap.String("alert_type", alert.AlertType),
				zap.Error(err))
		}
	}
	return nil
}

func derefCards(cards []*models.FrictionCard) []models.FrictionCard {
	out := make([]models.FrictionCard, 0, len(cards))
	for _, card := range cards {
		out = append(out, *card)
	}
	return out
}

// dateOf truncates a timestamp to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
