package orderv1

import (
	"fmt"

	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/shopspring/decimal"
)

// Direction represents the side of an order.
type Direction int

const (
	// DirectionBuy represents a buy (bid) order.
	DirectionBuy Direction = iota
	// DirectionSell represents a sell (ask) order.
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "BUY"
	case DirectionSell:
		return "SELL"
	}
	return "UNKNOWN"
}

// Opposite returns the other side of the book.
func (d Direction) Opposite() Direction {
	if d == DirectionBuy {
		return DirectionSell
	}
	return DirectionBuy
}

// ParseDirection parses the wire representation of a direction. Anything
// other than the two known values is a corrupted command.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "BUY":
		return DirectionBuy, nil
	case "SELL":
		return DirectionSell, nil
	}
	return 0, errors.NewErrorDetails(
		fmt.Sprintf("invalid direction: %q", s),
		string(errors.ErrInvalidDirection),
		"direction",
	)
}

// Type represents the type of order.
type Type string

const (
	// TypeLimit represents a limit order; an unfilled remainder rests in the book.
	TypeLimit Type = "limit"
	// TypeMarket represents a market order; an unfilled remainder is discarded.
	TypeMarket Type = "market"
)

// Order is a mutable entity owned exclusively by the order registry while
// active. Price and Quantity never change after creation; UnfilledQuantity
// only decreases.
type Order struct {
	ID               int64
	SequenceID       int64
	UserID           int64
	Direction        Direction
	Type             Type
	Price            decimal.Decimal
	Quantity         decimal.Decimal
	UnfilledQuantity decimal.Decimal
	CreatedAt        int64
	UpdatedAt        int64
}

// Fill decrements the unfilled quantity by matched and stamps the update time.
func (o *Order) Fill(matched decimal.Decimal, ts int64) {
	o.UnfilledQuantity = o.UnfilledQuantity.Sub(matched)
	o.UpdatedAt = ts
}

// IsFullyFilled reports whether nothing remains to match.
func (o *Order) IsFullyFilled() bool {
	return o.UnfilledQuantity.IsZero()
}

func (o *Order) String() string {
	return fmt.Sprintf("%d %s price: %s unfilled: %s quantity: %s sequenceId: %d userId: %d",
		o.ID, o.Direction, o.Price, o.UnfilledQuantity, o.Quantity, o.SequenceID, o.UserID)
}
