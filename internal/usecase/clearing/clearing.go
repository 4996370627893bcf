package clearing

import (
	"context"
	"fmt"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	matchv1 "github.com/exchangelabs/trading-core/internal/domain/match/v1"
	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/exchangelabs/trading-core/internal/usecase/registry"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/exchangelabs/trading-core/pkg/logger"
)

// ClearingEngine applies the financial consequences of a match result or a
// cancellation and evicts finished orders from the registry. A buy taker
// that matched below its own limit gets the over-reserved quote refunded;
// a sell taker reserved exactly its quantity, so no refund can arise.
type ClearingEngine struct {
	ledger        assetv1.Ledger
	orderRegistry *registry.OrderRegistry
	baseAsset     assetv1.Asset
	quoteAsset    assetv1.Asset
	logger        logger.Interface
}

// NewClearingEngine wires the clearing engine to its ledger and registry.
func NewClearingEngine(ledger assetv1.Ledger, orderRegistry *registry.OrderRegistry,
	baseAsset, quoteAsset assetv1.Asset, log logger.Interface) *ClearingEngine {
	return &ClearingEngine{
		ledger:        ledger,
		orderRegistry: orderRegistry,
		baseAsset:     baseAsset,
		quoteAsset:    quoteAsset,
		logger:        log,
	}
}

// ClearMatchResult settles every fill of the result in match order.
func (c *ClearingEngine) ClearMatchResult(ctx context.Context, result *matchv1.MatchResult) error {
	taker := result.TakerOrder
	switch taker.Direction {
	case orderv1.DirectionBuy:
		for _, detail := range result.MatchDetails {
			c.logDetail(ctx, &detail)
			maker := detail.MakerOrder
			matched := detail.Quantity
			if taker.Price.GreaterThan(maker.Price) {
				// taker reserved at its own limit but filled at the lower
				// maker price; return the difference
				refund := taker.Price.Sub(maker.Price).Mul(matched)
				if err := c.ledger.Unfreeze(ctx, taker.UserID, c.quoteAsset, refund); err != nil {
					return err
				}
			}
			if err := c.ledger.Transfer(ctx, assetv1.FrozenToAvailable, taker.UserID, maker.UserID, c.quoteAsset, maker.Price.Mul(matched)); err != nil {
				return err
			}
			if err := c.ledger.Transfer(ctx, assetv1.FrozenToAvailable, maker.UserID, taker.UserID, c.baseAsset, matched); err != nil {
				return err
			}
			if maker.IsFullyFilled() {
				if err := c.orderRegistry.RemoveOrder(maker.ID); err != nil {
					return err
				}
			}
		}
	case orderv1.DirectionSell:
		for _, detail := range result.MatchDetails {
			c.logDetail(ctx, &detail)
			maker := detail.MakerOrder
			matched := detail.Quantity
			if err := c.ledger.Transfer(ctx, assetv1.FrozenToAvailable, taker.UserID, maker.UserID, c.baseAsset, matched); err != nil {
				return err
			}
			if err := c.ledger.Transfer(ctx, assetv1.FrozenToAvailable, maker.UserID, taker.UserID, c.quoteAsset, maker.Price.Mul(matched)); err != nil {
				return err
			}
			if maker.IsFullyFilled() {
				if err := c.orderRegistry.RemoveOrder(maker.ID); err != nil {
					return err
				}
			}
		}
	default:
		return errors.NewErrorDetails(
			fmt.Sprintf("invalid direction: %d", taker.Direction),
			string(errors.ErrInvalidDirection),
			"direction",
		)
	}

	if taker.IsFullyFilled() {
		return c.orderRegistry.RemoveOrder(taker.ID)
	}
	return nil
}

// ClearCancelOrder unfreezes the order's unfilled reservation and removes
// it from the registry.
func (c *ClearingEngine) ClearCancelOrder(ctx context.Context, order *orderv1.Order) error {
	switch order.Direction {
	case orderv1.DirectionBuy:
		if err := c.ledger.Unfreeze(ctx, order.UserID, c.quoteAsset, order.Price.Mul(order.UnfilledQuantity)); err != nil {
			return err
		}
	case orderv1.DirectionSell:
		if err := c.ledger.Unfreeze(ctx, order.UserID, c.baseAsset, order.UnfilledQuantity); err != nil {
			return err
		}
	default:
		return errors.NewErrorDetails(
			fmt.Sprintf("invalid direction: %d", order.Direction),
			string(errors.ErrInvalidDirection),
			"direction",
		)
	}
	return c.orderRegistry.RemoveOrder(order.ID)
}

func (c *ClearingEngine) logDetail(ctx context.Context, detail *matchv1.MatchDetail) {
	c.logger.DebugContext(ctx, "clear matched detail",
		logger.Field{Key: "price", Value: detail.Price},
		logger.Field{Key: "quantity", Value: detail.Quantity},
		logger.Field{Key: "takerOrderID", Value: detail.TakerOrder.ID},
		logger.Field{Key: "makerOrderID", Value: detail.MakerOrder.ID},
		logger.Field{Key: "takerUserID", Value: detail.TakerOrder.UserID},
		logger.Field{Key: "makerUserID", Value: detail.MakerOrder.UserID},
	)
}
