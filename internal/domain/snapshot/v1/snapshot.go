package snapshotv1

import (
	"github.com/shopspring/decimal"
)

// OrderSnapshot is the serialized form of one active order.
type OrderSnapshot struct {
	ID               int64           `json:"id"`
	SequenceID       int64           `json:"sequenceID"`
	UserID           int64           `json:"userID"`
	Direction        string          `json:"direction"`
	OrderType        string          `json:"orderType"`
	Price            decimal.Decimal `json:"price"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnfilledQuantity decimal.Decimal `json:"unfilledQuantity"`
	CreatedAt        int64           `json:"createdAt"`
	UpdatedAt        int64           `json:"updatedAt"`
}

// BalanceSnapshot is the serialized form of one (user, asset) balance.
type BalanceSnapshot struct {
	UserID    int64           `json:"userID"`
	Asset     string          `json:"asset"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

// Snapshot captures the whole engine state after a fully processed command.
// Replaying the stream from Offset over a restored snapshot reproduces the
// live state bit for bit.
type Snapshot struct {
	LastSequenceID int64             `json:"lastSequenceID"`
	Offset         int64             `json:"offset"`
	TakenAt        int64             `json:"takenAt"`
	Orders         []OrderSnapshot   `json:"orders"`
	Balances       []BalanceSnapshot `json:"balances"`
}
