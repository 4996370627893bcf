package sequencerv1

import (
	"context"

	commandv1 "github.com/exchangelabs/trading-core/internal/domain/command/v1"
	"github.com/segmentio/kafka-go"
)

// CommandReader defines the interface for consuming the sequenced command
// stream. The transport guarantees delivery in sequence order; the engine
// still verifies continuity.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=sequencerv1_mock
type CommandReader interface {
	// ReadCommand reads one message and returns it with the parsed command.
	ReadCommand(ctx context.Context) (kafka.Message, *commandv1.SequencedCommand, error)
	// SetOffset positions the reader at the given stream offset.
	SetOffset(offset int64) error
	// Close closes the reader.
	Close() error
}
