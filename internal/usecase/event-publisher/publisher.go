package eventpublisher

import (
	"context"
	"encoding/json"

	eventv1 "github.com/exchangelabs/trading-core/internal/domain/event/v1"
	"github.com/exchangelabs/trading-core/pkg/config"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher emits the events of each processed command to the match topic
// for downstream consumers (quotation, audit).
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a Kafka publisher for command events.
func NewPublisher(cfg config.EventKafkaConfig, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishCommandEvents publishes the bundled events of one command.
func (p *Publisher) PublishCommandEvents(ctx context.Context, events *eventv1.CommandEvents) error {
	value, err := json.Marshal(events)
	if err != nil {
		p.logger.Error(err, logger.Field{Key: "sequenceID", Value: events.SequenceID})
		return errors.NewTracer("failed to marshal command events").Wrap(err)
	}

	msg := kafka.Message{Value: value}
	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "error", Value: err.Error()},
			logger.Field{Key: "sequenceID", Value: events.SequenceID},
		)
		return errors.NewTracer("failed to publish command events").Wrap(err)
	}
	return nil
}

// Close flushes and closes the Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
