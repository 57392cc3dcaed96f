package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TaskCreated = "task_created"
	TaskUpdated = "task_updated"
	TaskToggled = "task_toggled"
	TaskDeleted = "task_deleted"
)

type Event struct {
	Action  string    `json:"action"`
	OwnerID string    `json:"owner_id"`
	TaskID  int64     `json:"task_id"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// KafkaProducer пишет события мутаций в топик. Ошибки логируются и
// никогда не влияют на ответ клиенту.
type KafkaProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaProducer(broker, topic string, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *KafkaProducer) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OwnerID),
		Value: payload,
		Time:  e.At,
	})
	if err != nil {
		p.logger.Error("failed to publish task event",
			zap.String("action", e.Action),
			zap.Error(err),
		)
	}
	return err
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
