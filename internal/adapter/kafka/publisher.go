// Package kafka publishes sea level alert events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/misua/quake-monitor-web/internal/domain"
)

// Publisher produces alert events to the configured alert topic.
// It implements sealevel.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one alert event. Messages are keyed
// by station so per-station ordering is preserved.
func (p *Publisher) PublishAlert(ctx context.Context, alert domain.SeaLevelAlert) error {
	msg, err := serializeToMessage(alert)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SeaLevelAlert into a Kafka message.
func serializeToMessage(alert domain.SeaLevelAlert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sea level alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(alert.Status)},
			{Key: "observed_at", Value: []byte(alert.ObservedAt.Format(time.RFC3339))},
		},
	}, nil
}
