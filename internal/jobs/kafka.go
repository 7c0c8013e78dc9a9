package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// kafkaDispatcher implements Dispatcher on top of a Kafka producer. One
// writer serves all topics; the topic rides on each message.
type kafkaDispatcher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaDispatcher creates a Kafka-backed job dispatcher from a
// comma-separated broker list.
func NewKafkaDispatcher(brokersCSV string, writeTimeout time.Duration, logger zerolog.Logger) Dispatcher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	logger = logger.With().Str("component", "job-dispatcher").Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
	}

	logger.Info().Strs("brokers", brokers).Msg("kafka job dispatcher initialised")

	return &kafkaDispatcher{
		writer: writer,
		logger: logger,
	}
}

// Enqueue publishes payload as JSON to topic.
func (d *kafkaDispatcher) Enqueue(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish job to %s: %w", topic, err)
	}

	d.logger.Debug().Str("topic", topic).Str("key", key).Msg("job enqueued")
	return nil
}

// Close flushes and closes the underlying writer.
func (d *kafkaDispatcher) Close() error {
	return d.writer.Close()
}
