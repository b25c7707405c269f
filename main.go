package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/classifier"
	"github.com/mariostorable/friction-engine/pkg/config"
	"github.com/mariostorable/friction-engine/pkg/crm"
	"github.com/mariostorable/friction-engine/pkg/crypto"
	"github.com/mariostorable/friction-engine/pkg/database"
	"github.com/mariostorable/friction-engine/pkg/handlers"
	"github.com/mariostorable/friction-engine/pkg/llm"
	"github.com/mariostorable/friction-engine/pkg/logging"
	"github.com/mariostorable/friction-engine/pkg/middleware"
	"github.com/mariostorable/friction-engine/pkg/pipeline"
	"github.com/mariostorable/friction-engine/pkg/repositories"
	"github.com/mariostorable/friction-engine/pkg/retry"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("classifier_provider", cfg.Classifier.Provider),
		zap.String("classifier_model", cfg.Classifier.Model))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// golang-migrate needs a database/sql handle.
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	accountRepo := repositories.NewAccountRepository(db)
	rawInputRepo := repositories.NewRawInputRepository(db)
	cardRepo := repositories.NewFrictionCardRepository(db)
	snapshotRepo := repositories.NewSnapshotRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	themeRepo := repositories.NewThemeRepository(db)
	credentialRepo := repositories.NewCredentialRepository(db)

	if err := pipeline.SyncThemes(ctx, themeRepo, cfg.ThemesPath, logger); err != nil {
		logger.Fatal("Failed to sync themes", zap.Error(err))
	}

	encryptor, err := crypto.NewCredentialEncryptor(cfg.CredentialsKey)
	if err != nil {
		logger.Fatal("Failed to create credential encryptor", zap.Error(err))
	}

	llmClient, err := llm.NewFromConfig(&cfg.Classifier, logger)
	if err != nil {
		logger.Fatal("Failed to create classification client", zap.Error(err))
	}

	caseClassifier := classifier.New(llmClient, classifier.Config{
		TruncationLimit: cfg.Pipeline.TextTruncationLimit,
		Retry: &retry.Config{
			MaxRetries:   cfg.Pipeline.RetryMaxAttempts - 1,
			InitialDelay: cfg.Pipeline.RetryInitialDelay,
			MaxDelay:     cfg.Pipeline.RetryMaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
	}, logger)

	tokens := crm.NewOAuthTokenProvider(&cfg.CRM, credentialRepo, encryptor, logger)
	caseStore := crm.NewClient(tokens, cfg.CRM.APIVersion, logger)

	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Accounts:   accountRepo,
		RawInputs:  rawInputRepo,
		Cards:      cardRepo,
		Snapshots:  snapshotRepo,
		Alerts:     alertRepo,
		Cases:      caseStore,
		Classifier: caseClassifier,
		Lock:       pipeline.NewRunLock(redisClient, logger),
	}, cfg.Pipeline, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAnalysisHandler(orchestrator, logger).RegisterRoutes(mux)
	handlers.NewSnapshotHandler(accountRepo, snapshotRepo, logger).RegisterRoutes(mux)
	handlers.NewAlertHandler(alertRepo, logger).RegisterRoutes(mux)
	handlers.NewThemeHandler(themeRepo, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting friction-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
