package publisherv1

import (
	"context"

	eventv1 "github.com/exchangelabs/trading-core/internal/domain/event/v1"
)

// EventPublisher defines the interface for emitting the events produced by
// one processed command to downstream consumers.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=publisherv1_mock
type EventPublisher interface {
	PublishCommandEvents(ctx context.Context, events *eventv1.CommandEvents) error
	Close() error
}
