package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"

	"github.com/kalpovskii/todo-api/internal/config"
	todokafka "github.com/kalpovskii/todo-api/internal/kafka"
	"github.com/kalpovskii/todo-api/internal/log"
)

// Consumes todo change events and writes one log line per event.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Setup(cfg.Env, cfg.LogLevel)

	if cfg.KafkaBroker == "" || cfg.KafkaTopic == "" {
		log.Fatal().Msg("KAFKA_BROKER or KAFKA_TOPIC is not configured")
	}

	if cfg.KafkaLogFile != "" {
		file, err := os.OpenFile(cfg.KafkaLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open log file")
		}
		defer file.Close()
		log.SetOutput(file)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   cfg.KafkaTopic,
		GroupID: "todo-event-logger",
	})
	defer r.Close()

	log.Info().Str("topic", cfg.KafkaTopic).Msg("kafka logger started")

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info().Msg("kafka logger stopped")
				return
			}
			log.Error().Err(err).Msg("error reading message")
			continue
		}

		event, err := todokafka.DecodeMessage(m)
		if err != nil {
			log.Warn().Err(err).Int64("offset", m.Offset).Msg("skipping malformed event")
			continue
		}

		log.Info().
			Str("action", string(event.Action)).
			Str("id", event.ID).
			Time("at", event.At).
			Int("partition", m.Partition).
			Int64("offset", m.Offset).
			Msg("todo event")
	}
}
