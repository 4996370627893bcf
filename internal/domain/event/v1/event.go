package eventv1

import "github.com/shopspring/decimal"

// OrderStatus is the terminal state of an order touched by one command.
type OrderStatus string

const (
	// OrderStatusFilled means the order matched completely and left the registry.
	OrderStatusFilled OrderStatus = "filled"
	// OrderStatusPartiallyFilled means the order matched but a remainder is still resting.
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	// OrderStatusResting means the order matched nothing and rests in the book.
	OrderStatusResting OrderStatus = "resting"
	// OrderStatusCanceled means the order was canceled and its remainder unfrozen.
	OrderStatusCanceled OrderStatus = "canceled"
	// OrderStatusRejected means the command was rejected with no state change.
	OrderStatusRejected OrderStatus = "rejected"
)

// MatchEvent is one executed fill, in match order.
type MatchEvent struct {
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	TakerOrderID int64           `json:"takerOrderID"`
	MakerOrderID int64           `json:"makerOrderID"`
	TakerUserID  int64           `json:"takerUserID"`
	MakerUserID  int64           `json:"makerUserID"`
}

// OrderEvent reports the terminal state of one touched order.
type OrderEvent struct {
	OrderID          int64           `json:"orderID"`
	UserID           int64           `json:"userID"`
	Status           OrderStatus     `json:"status"`
	UnfilledQuantity decimal.Decimal `json:"unfilledQuantity"`
}

// CommandEvents bundles everything one processed command emitted. Consumers
// (quotation, audit) receive it asynchronously off the hot path.
type CommandEvents struct {
	SequenceID int64        `json:"sequenceID"`
	Timestamp  int64        `json:"timestamp"`
	Matches    []MatchEvent `json:"matches,omitempty"`
	Orders     []OrderEvent `json:"orders,omitempty"`
}
