package commandreader

import (
	"context"
	"encoding/json"

	commandv1 "github.com/exchangelabs/trading-core/internal/domain/command/v1"
	"github.com/exchangelabs/trading-core/pkg/config"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader consumes the sequenced command stream from Kafka. The sequencer
// writes to a single partition, so Kafka offset order is sequence order.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Interface
}

// NewReader creates a Kafka reader over the command topic. It returns an
// implementation of the CommandReader interface.
func NewReader(cfg config.CommandKafkaConfig, log logger.Interface) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset positions the reader at the given stream offset.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadCommand reads one message from the command topic and parses it as a
// SequencedCommand.
func (r *Reader) ReadCommand(ctx context.Context) (kafka.Message, *commandv1.SequencedCommand, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadCommand")
		return kafka.Message{}, nil, err
	}

	var cmd commandv1.SequencedCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		r.logError(err, "UnmarshalCommand")
		return kafka.Message{}, nil, err
	}

	r.logger.Debug("ReadCommand",
		logger.Field{Key: "sequenceID", Value: cmd.SequenceID},
		logger.Field{Key: "type", Value: cmd.Type},
		logger.Field{Key: "offset", Value: msg.Offset},
	)

	return msg, &cmd, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
