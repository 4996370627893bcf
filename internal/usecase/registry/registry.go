package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// OrderRegistry is the single source of truth for currently open orders,
// indexed by order id and by owning user. Mutations happen only on the
// engine's sequential processing path.
type OrderRegistry struct {
	ledger     assetv1.Ledger
	baseAsset  assetv1.Asset
	quoteAsset assetv1.Asset
	logger     logger.Interface

	activeOrders map[int64]*orderv1.Order
	userOrders   map[int64]map[int64]*orderv1.Order
}

// NewOrderRegistry creates an empty registry over the given ledger.
func NewOrderRegistry(ledger assetv1.Ledger, baseAsset, quoteAsset assetv1.Asset, log logger.Interface) *OrderRegistry {
	return &OrderRegistry{
		ledger:       ledger,
		baseAsset:    baseAsset,
		quoteAsset:   quoteAsset,
		logger:       log,
		activeOrders: make(map[int64]*orderv1.Order),
		userOrders:   make(map[int64]map[int64]*orderv1.Order),
	}
}

// CreateOrder reserves funds and registers a new order. A buy order freezes
// price*quantity of the quote asset, a sell order freezes quantity of the
// base asset. On a failed reservation nothing is created.
func (r *OrderRegistry) CreateOrder(ctx context.Context, sequenceID, ts, orderID, userID int64,
	direction orderv1.Direction, orderType orderv1.Type, price, quantity decimal.Decimal) (*orderv1.Order, error) {

	switch direction {
	case orderv1.DirectionBuy:
		if !r.ledger.TryFreeze(ctx, userID, r.quoteAsset, price.Mul(quantity)) {
			return nil, r.insufficientFunds(userID, r.quoteAsset)
		}
	case orderv1.DirectionSell:
		if !r.ledger.TryFreeze(ctx, userID, r.baseAsset, quantity) {
			return nil, r.insufficientFunds(userID, r.baseAsset)
		}
	default:
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("invalid direction: %d", direction),
			string(errors.ErrInvalidDirection),
			"direction",
		)
	}

	order := &orderv1.Order{
		ID:               orderID,
		SequenceID:       sequenceID,
		UserID:           userID,
		Direction:        direction,
		Type:             orderType,
		Price:            price,
		Quantity:         quantity,
		UnfilledQuantity: quantity,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}

	r.insert(order)
	return order, nil
}

func (r *OrderRegistry) insert(order *orderv1.Order) {
	r.activeOrders[order.ID] = order
	uOrders, ok := r.userOrders[order.UserID]
	if !ok {
		uOrders = make(map[int64]*orderv1.Order)
		r.userOrders[order.UserID] = uOrders
	}
	uOrders[order.ID] = order
}

func (r *OrderRegistry) insufficientFunds(userID int64, asset assetv1.Asset) error {
	return errors.NewErrorDetails(
		fmt.Sprintf("insufficient %s balance for user %d", asset, userID),
		string(errors.ErrInsufficientFunds),
		"balance",
	)
}

// GetOrder returns the active order with the given id, or nil.
func (r *OrderRegistry) GetOrder(orderID int64) *orderv1.Order {
	return r.activeOrders[orderID]
}

// GetUserOrders returns the user's active orders keyed by order id, or nil.
func (r *OrderRegistry) GetUserOrders(userID int64) map[int64]*orderv1.Order {
	return r.userOrders[userID]
}

// RemoveOrder deletes the order from both indexes. A missing entry in
// either index is an integrity fault, not a business outcome.
func (r *OrderRegistry) RemoveOrder(orderID int64) error {
	removed, ok := r.activeOrders[orderID]
	if !ok {
		return errors.NewErrorDetails(
			fmt.Sprintf("order not found by orderId in active orders: %d", orderID),
			string(errors.ErrOrderNotFound),
			"orderID",
		)
	}
	delete(r.activeOrders, orderID)

	uOrders, ok := r.userOrders[removed.UserID]
	if !ok {
		return errors.NewErrorDetails(
			fmt.Sprintf("user orders not found by userId: %d", removed.UserID),
			string(errors.ErrOrderIndexCorrupted),
			"userID",
		)
	}
	if _, ok := uOrders[orderID]; !ok {
		return errors.NewErrorDetails(
			fmt.Sprintf("order not found by orderId in user orders: %d", orderID),
			string(errors.ErrOrderIndexCorrupted),
			"orderID",
		)
	}
	delete(uOrders, orderID)
	if len(uOrders) == 0 {
		delete(r.userOrders, removed.UserID)
	}
	return nil
}

// Len returns the number of active orders.
func (r *OrderRegistry) Len() int {
	return len(r.activeOrders)
}

// ActiveOrders returns all active orders sorted by direction, then price
// ascending, then sequence id ascending. The order is deterministic so the
// slice can feed snapshots as well as the operational dump.
func (r *OrderRegistry) ActiveOrders() []*orderv1.Order {
	orders := make([]*orderv1.Order, 0, len(r.activeOrders))
	for _, order := range r.activeOrders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		if !a.Price.Equal(b.Price) {
			return a.Price.LessThan(b.Price)
		}
		return a.SequenceID < b.SequenceID
	})
	return orders
}

// Dump renders all active orders as a table. Operational aid only, not part
// of the matching contract.
func (r *OrderRegistry) Dump(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString("---------- orders ----------\n")

	table := tablewriter.NewWriter(&sb)
	table.SetHeader([]string{"ID", "Direction", "Price", "Unfilled", "Quantity", "SequenceID", "UserID"})
	table.SetBorder(false)
	for _, order := range r.ActiveOrders() {
		table.Append([]string{
			fmt.Sprintf("%d", order.ID),
			order.Direction.String(),
			order.Price.String(),
			order.UnfilledQuantity.String(),
			order.Quantity.String(),
			fmt.Sprintf("%d", order.SequenceID),
			fmt.Sprintf("%d", order.UserID),
		})
	}
	table.Render()

	sb.WriteString("---------- // orders ----------")
	return sb.String()
}

// Restore re-inserts an order recovered from a snapshot without touching
// the ledger; the snapshot already carries the frozen balances.
func (r *OrderRegistry) Restore(order *orderv1.Order) {
	r.insert(order)
}

// Reset drops every active order. Used when restoring from a snapshot.
func (r *OrderRegistry) Reset() {
	r.activeOrders = make(map[int64]*orderv1.Order)
	r.userOrders = make(map[int64]map[int64]*orderv1.Order)
}
