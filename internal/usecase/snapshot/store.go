package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	snapshotv1 "github.com/exchangelabs/trading-core/internal/domain/snapshot/v1"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/exchangelabs/trading-core/pkg/redis"
)

// Store persists engine snapshots in Redis, keyed by trading pair.
type Store struct {
	pair        string
	logger      logger.Interface
	redisclient redis.Client
}

// NewSnapshotStore creates a snapshot store over the given Redis client.
func NewSnapshotStore(redisclient redis.Client, pair string, log logger.Interface) *Store {
	return &Store{
		pair:        pair,
		redisclient: redisclient,
		logger:      log,
	}
}

func (s *Store) key() string {
	return fmt.Sprintf("snapshot:%s", s.pair)
}

// Store serializes the snapshot and writes it to Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.key(), buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	s.logger.InfoContext(ctx, "snapshot stored",
		logger.Field{Key: "pair", Value: s.pair},
		logger.Field{Key: "lastSequenceID", Value: snapshot.LastSequenceID},
		logger.Field{Key: "orders", Value: len(snapshot.Orders)},
	)
	return nil
}

// LoadStore reads the latest snapshot from Redis. A missing snapshot is not
// an error; the engine then replays from the start of the stream.
func (s *Store) LoadStore(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.key())
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "no snapshot found", logger.Field{Key: "pair", Value: s.pair})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: s.pair})
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}
