package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kalpovskii/todo-api/internal/app/repositories"
	"github.com/kalpovskii/todo-api/internal/app/server"
	"github.com/kalpovskii/todo-api/internal/app/services"
	"github.com/kalpovskii/todo-api/internal/config"
	"github.com/kalpovskii/todo-api/internal/kafka"
	"github.com/kalpovskii/todo-api/internal/log"
)

//	@title			TODO CRUD API
//	@version		1.0.0
//	@description	A simple CRUD API for managing todos
//	@host			localhost:3000
//	@BasePath		/
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Setup(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repositories.Open(ctx, cfg.StorageURI, repositories.Options{
		Database: cfg.Database,
		Timeout:  cfg.StorageTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	defer closeStore(store)
	log.Info().Msg("storage connected")

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare storage")
	}

	var cache repositories.TodoCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, cache disabled")
		} else {
			cache = repositories.NewRedisTodoCache(rdb)
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache enabled")
		}
		cancel()
	}

	var events services.EventPublisher
	if cfg.KafkaBroker != "" {
		producer := kafka.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
		log.Info().Str("broker", cfg.KafkaBroker).Str("topic", cfg.KafkaTopic).Msg("publishing todo events")
	}

	service := services.NewTodoService(store, cache, events)

	srv := server.New(server.Config{
		Addr:        cfg.Addr(),
		DocsHost:    cfg.DocsHost,
		Development: cfg.IsDevelopment(),
	}, service)

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		closeStore(store)
		log.Fatal().Msg("failed to start server")
	}
	log.Info().Msg("bye")
}

func closeStore(store repositories.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to close storage")
	}
}
