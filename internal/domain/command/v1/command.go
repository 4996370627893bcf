package commandv1

import (
	"fmt"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/shopspring/decimal"
)

// Type discriminates the sequenced command payloads.
type Type string

const (
	// TypePlaceOrder creates and matches a new order.
	TypePlaceOrder Type = "place_order"
	// TypeCancelOrder cancels an active order.
	TypeCancelOrder Type = "cancel_order"
	// TypeTransfer credits a user's available balance from the settlement
	// bridge's system account.
	TypeTransfer Type = "transfer"
)

// PlaceOrderPayload carries a new order request. Direction and OrderType use
// their wire spellings ("BUY"/"SELL", "limit"/"market").
type PlaceOrderPayload struct {
	OrderID   int64           `json:"orderID"`
	UserID    int64           `json:"userID"`
	Direction string          `json:"direction"`
	OrderType string          `json:"orderType"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CancelOrderPayload identifies the order to cancel.
type CancelOrderPayload struct {
	OrderID int64 `json:"orderID"`
	UserID  int64 `json:"userID"`
}

// TransferPayload funds a user from the reserved system account. User to
// user transfers do not travel on the command stream.
type TransferPayload struct {
	FromUserID int64           `json:"fromUserID"`
	ToUserID   int64           `json:"toUserID"`
	Asset      string          `json:"asset"`
	Amount     decimal.Decimal `json:"amount"`
}

// SequencedCommand is one entry of the globally ordered command stream. The
// sequencer guarantees SequenceID is strictly increasing with no gaps.
type SequencedCommand struct {
	SequenceID int64               `json:"sequenceID"`
	Timestamp  int64               `json:"timestamp"`
	Type       Type                `json:"type"`
	PlaceOrder *PlaceOrderPayload  `json:"placeOrder,omitempty"`
	Cancel     *CancelOrderPayload `json:"cancel,omitempty"`
	Transfer   *TransferPayload    `json:"transfer,omitempty"`
}

// Validate rejects malformed commands before they reach the engine core.
func (c *SequencedCommand) Validate(maxScale int32) error {
	switch c.Type {
	case TypePlaceOrder:
		p := c.PlaceOrder
		if p == nil {
			return invalid("place_order payload missing")
		}
		if p.OrderID <= 0 || p.UserID <= 0 {
			return invalid("orderID and userID must be positive")
		}
		// a buy always reserves quote at its price, so even a market buy
		// needs a positive cap price; a market sell reserves base quantity
		// and carries no price
		if !p.Price.IsPositive() {
			if p.OrderType != "market" || p.Direction != "SELL" {
				return invalid("price must be positive")
			}
		}
		if p.Price.IsNegative() {
			return invalid("price must not be negative")
		}
		if !p.Quantity.IsPositive() {
			return invalid("quantity must be positive")
		}
		if p.Price.Exponent() < -maxScale || p.Quantity.Exponent() < -maxScale {
			return invalid(fmt.Sprintf("price and quantity must have at most %d fractional digits", maxScale))
		}
	case TypeCancelOrder:
		if c.Cancel == nil {
			return invalid("cancel_order payload missing")
		}
		if c.Cancel.OrderID <= 0 {
			return invalid("orderID must be positive")
		}
	case TypeTransfer:
		tr := c.Transfer
		if tr == nil {
			return invalid("transfer payload missing")
		}
		if tr.FromUserID != assetv1.SystemUserID {
			return invalid(fmt.Sprintf("transfers must originate from the system account, got user %d", tr.FromUserID))
		}
		if tr.ToUserID <= 0 || tr.ToUserID == assetv1.SystemUserID {
			return invalid("toUserID must be a regular user")
		}
		if tr.Asset == "" {
			return invalid("asset must not be empty")
		}
		if !tr.Amount.IsPositive() {
			return invalid("amount must be positive")
		}
		if tr.Amount.Exponent() < -maxScale {
			return invalid(fmt.Sprintf("amount must have at most %d fractional digits", maxScale))
		}
	default:
		return invalid(fmt.Sprintf("unknown command type: %q", c.Type))
	}
	return nil
}

func invalid(message string) error {
	return errors.NewErrorDetails(message, string(errors.ErrInvalidCommand), "command")
}
