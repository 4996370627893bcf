package assetv1

import (
	"context"

	"github.com/shopspring/decimal"
)

// Asset identifies a tradable asset, e.g. "BTC" or "USD".
type Asset string

// SystemUserID is the reserved account of the external settlement bridge.
// Funding transfers on the sequenced stream must originate from it.
const SystemUserID int64 = 1

// TransferKind describes which sub-balances a ledger transfer moves between.
type TransferKind int

const (
	// AvailableToAvailable moves funds between available balances, e.g. deposits.
	AvailableToAvailable TransferKind = iota
	// AvailableToFrozen moves funds from available to frozen, e.g. placing an order.
	AvailableToFrozen
	// FrozenToAvailable moves funds from frozen to available, e.g. settlement or cancel.
	FrozenToAvailable
)

func (k TransferKind) String() string {
	switch k {
	case AvailableToAvailable:
		return "available_to_available"
	case AvailableToFrozen:
		return "available_to_frozen"
	case FrozenToAvailable:
		return "frozen_to_available"
	}
	return "unknown"
}

// Balance is a read-only view of one (user, asset) pair in the ledger.
type Balance struct {
	UserID    int64           `json:"userID"`
	Asset     Asset           `json:"asset"`
	Available decimal.Decimal `json:"available"`
	Frozen    decimal.Decimal `json:"frozen"`
}

// Ledger is the asset ledger contract consumed by the order registry and the
// clearing engine. Implementations keep available+frozen conserved across
// every operation.
//
//go:generate mockgen -source asset.go -destination=mock/asset_mock.go -package=assetv1_mock
type Ledger interface {
	// TryFreeze moves amount from available to frozen iff available covers
	// it. Returns false and changes nothing otherwise.
	TryFreeze(ctx context.Context, userID int64, asset Asset, amount decimal.Decimal) bool
	// Unfreeze moves amount from frozen back to available. An amount
	// exceeding the frozen balance is an integrity fault.
	Unfreeze(ctx context.Context, userID int64, asset Asset, amount decimal.Decimal) error
	// Transfer moves amount between the sub-balances of two users per kind.
	// An insufficient source sub-balance is an integrity fault.
	Transfer(ctx context.Context, kind TransferKind, fromUserID, toUserID int64, asset Asset, amount decimal.Decimal) error
	// Balances returns a deterministic, sorted view of all non-zero balances.
	Balances(ctx context.Context) []Balance
}
