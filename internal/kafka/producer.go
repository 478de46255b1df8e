package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kalpovskii/todo-api/internal/app/models"
	"github.com/kalpovskii/todo-api/internal/log"
)

// Producer publishes todo change events. Writes are async; delivery errors
// are logged by the completion callback.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(broker, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			Async:                  true,
			AllowAutoTopicCreation: true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.Error().Err(err).Int("messages", len(messages)).Msg("failed to write kafka messages")
				}
			},
		},
	}
}

func (p *Producer) Publish(ctx context.Context, event models.TodoEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewMessage keys the message by todo id so events for one todo stay on one
// partition.
func NewMessage(event models.TodoEvent) (kafka.Message, error) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode todo event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
		Time:  event.At,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
		},
	}, nil
}

// DecodeMessage is the inverse of NewMessage.
func DecodeMessage(m kafka.Message) (models.TodoEvent, error) {
	var event models.TodoEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return models.TodoEvent{}, fmt.Errorf("decode todo event: %w", err)
	}
	return event, nil
}
