package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	commandv1 "github.com/exchangelabs/trading-core/internal/domain/command/v1"
	eventv1 "github.com/exchangelabs/trading-core/internal/domain/event/v1"
	matchv1 "github.com/exchangelabs/trading-core/internal/domain/match/v1"
	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	publisherv1 "github.com/exchangelabs/trading-core/internal/domain/publisher/v1"
	sequencerv1 "github.com/exchangelabs/trading-core/internal/domain/sequencer/v1"
	snapshotv1 "github.com/exchangelabs/trading-core/internal/domain/snapshot/v1"
	"github.com/exchangelabs/trading-core/internal/usecase/assets"
	"github.com/exchangelabs/trading-core/internal/usecase/clearing"
	"github.com/exchangelabs/trading-core/internal/usecase/matching"
	"github.com/exchangelabs/trading-core/internal/usecase/registry"
	"github.com/exchangelabs/trading-core/pkg/config"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/shopspring/decimal"
)

// Engine consumes the sequenced command stream and drives the order
// registry, match engine and clearing engine. Every command is applied
// inside one critical section, so readers never observe a half-applied
// match. Event publication and snapshots run off the hot path.
type Engine struct {
	mu sync.RWMutex

	ledger        *assets.Ledger
	orderRegistry *registry.OrderRegistry
	matcher       *matching.MatchEngine
	clearer       *clearing.ClearingEngine

	reader    sequencerv1.CommandReader
	snapshots snapshotv1.Store
	publisher publisherv1.EventPublisher

	logger logger.Interface
	cfg    *config.Config
	opts   *Options

	lastSequenceID int64
	offset         int64

	// read and written by both the run loop and the snapshot goroutine
	lastSnapshotSeq atomic.Int64

	events chan *eventv1.CommandEvents
	wg     sync.WaitGroup
}

// NewEngine wires the engine core to its collaborators.
func NewEngine(ledger *assets.Ledger, orderRegistry *registry.OrderRegistry,
	matcher *matching.MatchEngine, clearer *clearing.ClearingEngine,
	reader sequencerv1.CommandReader, snapshots snapshotv1.Store,
	publisher publisherv1.EventPublisher, log logger.Interface,
	cfg *config.Config, opts *Options) *Engine {

	if opts == nil {
		opts = DefaultEngineOptions()
	}
	return &Engine{
		ledger:        ledger,
		orderRegistry: orderRegistry,
		matcher:       matcher,
		clearer:       clearer,
		reader:        reader,
		snapshots:     snapshots,
		publisher:     publisher,
		logger:        log,
		cfg:           cfg,
		opts:          opts,
		offset:        -1,
		events:        make(chan *eventv1.CommandEvents, opts.EventBufferSize),
	}
}

// Run restores the latest snapshot, then consumes and applies commands
// until the context is canceled or an integrity fault aborts processing.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.restore(ctx); err != nil {
		return err
	}

	e.wg.Add(1)
	go e.publishLoop(ctx)

	if e.opts.SnapshotInterval > 0 {
		e.wg.Add(1)
		go e.snapshotLoop(ctx)
	}

	defer func() {
		close(e.events)
		e.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, cmd, err := e.reader.ReadCommand(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		cmdCtx := logger.ContextWithSequenceID(ctx, cmd.SequenceID)
		events, err := e.Process(cmdCtx, cmd, msg.Offset)
		if err != nil {
			if errors.IntegrityFault(err) {
				e.logger.ErrorContext(cmdCtx, err, logger.Field{Key: "sequenceID", Value: cmd.SequenceID})
				return err
			}
			e.logger.WarnContext(cmdCtx, "command rejected",
				logger.Field{Key: "sequenceID", Value: cmd.SequenceID},
				logger.Field{Key: "reason", Value: err.Error()},
			)
		}
		if events != nil {
			e.events <- events
		}

		if e.opts.SnapshotSequenceGap > 0 && cmd.SequenceID-e.lastSnapshotSeq.Load() >= e.opts.SnapshotSequenceGap {
			e.takeSnapshot(ctx)
		}
	}
}

// Process applies one sequenced command and returns the events it emitted.
// A business rejection returns both a rejected-status event and the
// rejection error; an integrity fault returns only the error.
func (e *Engine) Process(ctx context.Context, cmd *commandv1.SequencedCommand, offset int64) (*eventv1.CommandEvents, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSequence(cmd.SequenceID); err != nil {
		return nil, err
	}
	if err := cmd.Validate(e.cfg.Market.MaxScale); err != nil {
		e.lastSequenceID = cmd.SequenceID
		e.offset = offset
		return nil, err
	}

	var (
		events *eventv1.CommandEvents
		err    error
	)
	switch cmd.Type {
	case commandv1.TypePlaceOrder:
		events, err = e.processPlaceOrder(ctx, cmd)
	case commandv1.TypeCancelOrder:
		events, err = e.processCancelOrder(ctx, cmd)
	case commandv1.TypeTransfer:
		e.processTransfer(ctx, cmd)
	}
	if err != nil && errors.IntegrityFault(err) {
		return nil, err
	}

	e.lastSequenceID = cmd.SequenceID
	e.offset = offset
	return events, err
}

func (e *Engine) checkSequence(sequenceID int64) error {
	if sequenceID <= 0 {
		return errors.NewErrorDetails(
			fmt.Sprintf("sequence id must be positive, got %d", sequenceID),
			string(errors.ErrSequenceGap),
			"sequenceID",
		)
	}
	// the first observed command establishes the baseline; after that the
	// stream must be gap-free
	if e.lastSequenceID > 0 && sequenceID != e.lastSequenceID+1 {
		return errors.NewErrorDetails(
			fmt.Sprintf("sequence gap or duplicate: expected %d, got %d", e.lastSequenceID+1, sequenceID),
			string(errors.ErrSequenceGap),
			"sequenceID",
		)
	}
	return nil
}

func (e *Engine) processPlaceOrder(ctx context.Context, cmd *commandv1.SequencedCommand) (*eventv1.CommandEvents, error) {
	p := cmd.PlaceOrder
	direction, err := orderv1.ParseDirection(p.Direction)
	if err != nil {
		return nil, err
	}
	orderType := orderv1.Type(p.OrderType)
	if orderType != orderv1.TypeLimit && orderType != orderv1.TypeMarket {
		orderType = orderv1.TypeLimit
	}

	taker, err := e.orderRegistry.CreateOrder(ctx, cmd.SequenceID, cmd.Timestamp,
		p.OrderID, p.UserID, direction, orderType, p.Price, p.Quantity)
	if err != nil {
		return e.rejectedEvents(cmd, p.OrderID, p.UserID, p.Quantity), err
	}

	result := e.matcher.Match(cmd.Timestamp, taker)
	if err := e.clearer.ClearMatchResult(ctx, result); err != nil {
		return nil, err
	}

	// a market remainder never rests; release its reservation so no funds
	// stay frozen behind a discarded order
	if !taker.IsFullyFilled() && taker.Type == orderv1.TypeMarket {
		if err := e.clearer.ClearCancelOrder(ctx, taker); err != nil {
			return nil, err
		}
	}

	return e.matchEvents(cmd, result), nil
}

func (e *Engine) processCancelOrder(ctx context.Context, cmd *commandv1.SequencedCommand) (*eventv1.CommandEvents, error) {
	c := cmd.Cancel
	order := e.orderRegistry.GetOrder(c.OrderID)
	if order == nil || (c.UserID > 0 && order.UserID != c.UserID) {
		return e.rejectedEvents(cmd, c.OrderID, c.UserID, decimal.Zero),
			errors.NewErrorDetails(
				fmt.Sprintf("order not found: %d", c.OrderID),
				string(errors.ErrOrderNotFound),
				"orderID",
			)
	}

	e.matcher.Cancel(order)
	if err := e.clearer.ClearCancelOrder(ctx, order); err != nil {
		return nil, err
	}

	return &eventv1.CommandEvents{
		SequenceID: cmd.SequenceID,
		Timestamp:  cmd.Timestamp,
		Orders: []eventv1.OrderEvent{{
			OrderID:          order.ID,
			UserID:           order.UserID,
			Status:           eventv1.OrderStatusCanceled,
			UnfilledQuantity: order.UnfilledQuantity,
		}},
	}, nil
}

// processTransfer credits the target user from the system account. The
// system account is the settlement bridge's book entry and is not balance
// tracked here; validation already pinned the source to it.
func (e *Engine) processTransfer(ctx context.Context, cmd *commandv1.SequencedCommand) {
	tr := cmd.Transfer
	e.ledger.Deposit(ctx, tr.ToUserID, assetv1.Asset(tr.Asset), tr.Amount)
	e.logger.InfoContext(ctx, "funding transfer applied",
		logger.Field{Key: "toUserID", Value: tr.ToUserID},
		logger.Field{Key: "asset", Value: tr.Asset},
		logger.Field{Key: "amount", Value: tr.Amount},
	)
}

func (e *Engine) rejectedEvents(cmd *commandv1.SequencedCommand, orderID, userID int64, unfilled decimal.Decimal) *eventv1.CommandEvents {
	return &eventv1.CommandEvents{
		SequenceID: cmd.SequenceID,
		Timestamp:  cmd.Timestamp,
		Orders: []eventv1.OrderEvent{{
			OrderID:          orderID,
			UserID:           userID,
			Status:           eventv1.OrderStatusRejected,
			UnfilledQuantity: unfilled,
		}},
	}
}

func (e *Engine) matchEvents(cmd *commandv1.SequencedCommand, result *matchv1.MatchResult) *eventv1.CommandEvents {
	events := &eventv1.CommandEvents{
		SequenceID: cmd.SequenceID,
		Timestamp:  cmd.Timestamp,
	}

	taker := result.TakerOrder
	for _, detail := range result.MatchDetails {
		events.Matches = append(events.Matches, eventv1.MatchEvent{
			Price:        detail.Price,
			Quantity:     detail.Quantity,
			TakerOrderID: detail.TakerOrder.ID,
			MakerOrderID: detail.MakerOrder.ID,
			TakerUserID:  detail.TakerOrder.UserID,
			MakerUserID:  detail.MakerOrder.UserID,
		})
		maker := detail.MakerOrder
		status := eventv1.OrderStatusPartiallyFilled
		if maker.IsFullyFilled() {
			status = eventv1.OrderStatusFilled
		}
		events.Orders = append(events.Orders, eventv1.OrderEvent{
			OrderID:          maker.ID,
			UserID:           maker.UserID,
			Status:           status,
			UnfilledQuantity: maker.UnfilledQuantity,
		})
	}

	// an unfilled market remainder was already discarded, so the taker's
	// terminal state is canceled even when some fills happened
	takerStatus := eventv1.OrderStatusResting
	switch {
	case taker.IsFullyFilled():
		takerStatus = eventv1.OrderStatusFilled
	case taker.Type == orderv1.TypeMarket:
		takerStatus = eventv1.OrderStatusCanceled
	case len(result.MatchDetails) > 0:
		takerStatus = eventv1.OrderStatusPartiallyFilled
	}
	events.Orders = append(events.Orders, eventv1.OrderEvent{
		OrderID:          taker.ID,
		UserID:           taker.UserID,
		Status:           takerStatus,
		UnfilledQuantity: taker.UnfilledQuantity,
	})

	return events
}

func (e *Engine) publishLoop(ctx context.Context) {
	defer e.wg.Done()
	for events := range e.events {
		// publish errors are logged by the publisher; the stream itself is
		// recoverable by replaying the command log
		_ = e.publisher.PublishCommandEvents(context.WithoutCancel(ctx), events)
	}
}

func (e *Engine) snapshotLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.takeSnapshot(ctx)
		}
	}
}

func (e *Engine) takeSnapshot(ctx context.Context) {
	snapshot := e.Snapshot(ctx)
	if snapshot.LastSequenceID == e.lastSnapshotSeq.Load() {
		return
	}
	if err := e.snapshots.Store(context.WithoutCancel(ctx), snapshot); err != nil {
		e.logger.Error(err, logger.Field{Key: "lastSequenceID", Value: snapshot.LastSequenceID})
		return
	}
	e.lastSnapshotSeq.Store(snapshot.LastSequenceID)
}

// Snapshot captures the engine state after the last fully applied command.
func (e *Engine) Snapshot(ctx context.Context) *snapshotv1.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	orders := e.orderRegistry.ActiveOrders()
	snapshot := &snapshotv1.Snapshot{
		LastSequenceID: e.lastSequenceID,
		Offset:         e.offset,
		TakenAt:        time.Now().UnixMilli(),
		Orders:         make([]snapshotv1.OrderSnapshot, 0, len(orders)),
	}
	for _, order := range orders {
		snapshot.Orders = append(snapshot.Orders, snapshotv1.OrderSnapshot{
			ID:               order.ID,
			SequenceID:       order.SequenceID,
			UserID:           order.UserID,
			Direction:        order.Direction.String(),
			OrderType:        string(order.Type),
			Price:            order.Price,
			Quantity:         order.Quantity,
			UnfilledQuantity: order.UnfilledQuantity,
			CreatedAt:        order.CreatedAt,
			UpdatedAt:        order.UpdatedAt,
		})
	}
	for _, b := range e.ledger.Balances(ctx) {
		snapshot.Balances = append(snapshot.Balances, snapshotv1.BalanceSnapshot{
			UserID:    b.UserID,
			Asset:     string(b.Asset),
			Available: b.Available,
			Frozen:    b.Frozen,
		})
	}
	return snapshot
}

func (e *Engine) restore(ctx context.Context) error {
	snapshot, err := e.snapshots.LoadStore(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}
	if err := e.RestoreSnapshot(ctx, snapshot); err != nil {
		return err
	}
	if err := e.reader.SetOffset(snapshot.Offset + 1); err != nil {
		return err
	}
	e.logger.Info("restored from snapshot",
		logger.Field{Key: "lastSequenceID", Value: snapshot.LastSequenceID},
		logger.Field{Key: "offset", Value: snapshot.Offset},
		logger.Field{Key: "orders", Value: len(snapshot.Orders)},
	)
	return nil
}

// RestoreSnapshot replaces the engine state with the snapshot's contents.
func (e *Engine) RestoreSnapshot(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.Reset()
	e.orderRegistry.Reset()
	e.matcher.Reset()

	for _, b := range snapshot.Balances {
		e.ledger.Restore(b.UserID, assetv1.Asset(b.Asset), b.Available, b.Frozen)
	}
	for _, o := range snapshot.Orders {
		direction, err := orderv1.ParseDirection(o.Direction)
		if err != nil {
			return err
		}
		order := &orderv1.Order{
			ID:               o.ID,
			SequenceID:       o.SequenceID,
			UserID:           o.UserID,
			Direction:        direction,
			Type:             orderv1.Type(o.OrderType),
			Price:            o.Price,
			Quantity:         o.Quantity,
			UnfilledQuantity: o.UnfilledQuantity,
			CreatedAt:        o.CreatedAt,
			UpdatedAt:        o.UpdatedAt,
		}
		e.orderRegistry.Restore(order)
		e.matcher.Insert(order)
	}

	e.lastSequenceID = snapshot.LastSequenceID
	e.offset = snapshot.Offset
	e.lastSnapshotSeq.Store(snapshot.LastSequenceID)
	return nil
}

// Dump renders the active orders and ledger balances for inspection.
func (e *Engine) Dump(ctx context.Context) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(e.orderRegistry.Dump(ctx))
	sb.WriteString("\n---------- balances ----------\n")
	for _, b := range e.ledger.Balances(ctx) {
		sb.WriteString(fmt.Sprintf("  user %d %s available: %s frozen: %s\n",
			b.UserID, b.Asset, b.Available, b.Frozen))
	}
	sb.WriteString("---------- // balances ----------")
	return sb.String()
}

// LastSequenceID returns the id of the last applied command.
func (e *Engine) LastSequenceID() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSequenceID
}
