package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hmoralesp/tarea-api/internal/config"
	"github.com/hmoralesp/tarea-api/internal/ingestion"
	"github.com/hmoralesp/tarea-api/internal/platform/aiclient"
	"github.com/hmoralesp/tarea-api/internal/platform/postgres"
	"github.com/hmoralesp/tarea-api/internal/service/auth"
	"github.com/hmoralesp/tarea-api/internal/store"
)

// application holds the wired dependencies for the running server.
type application struct {
	config         *config.Config
	logger         *slog.Logger
	db             *sql.DB
	userStore      store.UserStore
	taskStore      store.TaskStore
	jwtService     auth.JWTService
	passwordHasher *auth.BcryptHasher
	ingestor       *ingestion.Service
}

// newApplication builds the dependency graph: database connection, stores,
// auth services, AI client, and the ingestion orchestrator.
func newApplication(cfg *config.Config) (*application, error) {
	logger := slog.Default()

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewUserStore(db, logger)
	taskStore := postgres.NewTaskStore(db, logger)

	client := aiclient.New(cfg.AI, logger)
	ingestor := ingestion.NewService(client, taskStore, cfg.AI.DefaultQuestion, logger)

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userStore:      userStore,
		taskStore:      taskStore,
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(),
		ingestor:       ingestor,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
