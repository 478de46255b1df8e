package main

import (
	"context"
	"time"

	"github.com/kalpovskii/todo-api/internal/app/repositories"
	"github.com/kalpovskii/todo-api/internal/config"
	"github.com/kalpovskii/todo-api/internal/log"
)

// Prepares the configured storage (indexes, tables) and exits.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Setup(cfg.Env, cfg.LogLevel)

	ctx := context.Background()

	store, err := repositories.Open(ctx, cfg.StorageURI, repositories.Options{
		Database: cfg.Database,
		Timeout:  cfg.StorageTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to storage")
	}

	schemaCtx, cancel := context.WithTimeout(ctx, cfg.StorageTimeout)
	err = store.EnsureSchema(schemaCtx)
	cancel()

	closeCtx, closeCancel := context.WithTimeout(ctx, 5*time.Second)
	defer closeCancel()
	if cerr := store.Close(closeCtx); cerr != nil {
		log.Warn().Err(cerr).Msg("failed to close storage")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare storage")
	}
	log.Info().Msg("storage ready")
}
