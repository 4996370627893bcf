package assets

import (
	"context"
	"fmt"
	"sort"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	"github.com/exchangelabs/trading-core/pkg/errors"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/shopspring/decimal"
)

type balance struct {
	available decimal.Decimal
	frozen    decimal.Decimal
}

// Ledger is the in-memory asset ledger. Mutations happen only on the
// engine's sequential processing path; concurrent readers go through the
// engine's read lock, never through this type directly.
type Ledger struct {
	balances map[int64]map[assetv1.Asset]*balance
	logger   logger.Interface
}

// NewLedger creates an empty ledger.
func NewLedger(log logger.Interface) *Ledger {
	return &Ledger{
		balances: make(map[int64]map[assetv1.Asset]*balance),
		logger:   log,
	}
}

func (l *Ledger) balanceOf(userID int64, asset assetv1.Asset) *balance {
	userBalances, ok := l.balances[userID]
	if !ok {
		userBalances = make(map[assetv1.Asset]*balance)
		l.balances[userID] = userBalances
	}
	b, ok := userBalances[asset]
	if !ok {
		b = &balance{available: decimal.Zero, frozen: decimal.Zero}
		userBalances[asset] = b
	}
	return b
}

// Deposit credits amount to the user's available balance. Funding arrives
// from the external settlement system, outside the sequenced command stream.
func (l *Ledger) Deposit(ctx context.Context, userID int64, asset assetv1.Asset, amount decimal.Decimal) {
	b := l.balanceOf(userID, asset)
	b.available = b.available.Add(amount)
}

// TryFreeze moves amount from available to frozen iff available covers it.
func (l *Ledger) TryFreeze(ctx context.Context, userID int64, asset assetv1.Asset, amount decimal.Decimal) bool {
	b := l.balanceOf(userID, asset)
	if b.available.LessThan(amount) {
		return false
	}
	b.available = b.available.Sub(amount)
	b.frozen = b.frozen.Add(amount)
	l.logger.DebugContext(ctx, "freeze",
		logger.Field{Key: "userID", Value: userID},
		logger.Field{Key: "asset", Value: asset},
		logger.Field{Key: "amount", Value: amount},
	)
	return true
}

// Unfreeze moves amount from frozen back to available.
func (l *Ledger) Unfreeze(ctx context.Context, userID int64, asset assetv1.Asset, amount decimal.Decimal) error {
	b := l.balanceOf(userID, asset)
	if b.frozen.LessThan(amount) {
		return errors.NewErrorDetails(
			fmt.Sprintf("unfreeze %s exceeds frozen %s for user %d asset %s", amount, b.frozen, userID, asset),
			string(errors.ErrUnfreezeExceedsFrozen),
			"frozen",
		)
	}
	b.frozen = b.frozen.Sub(amount)
	b.available = b.available.Add(amount)
	l.logger.DebugContext(ctx, "unfreeze",
		logger.Field{Key: "userID", Value: userID},
		logger.Field{Key: "asset", Value: asset},
		logger.Field{Key: "amount", Value: amount},
	)
	return nil
}

// Transfer moves amount between the sub-balances of two users per kind.
func (l *Ledger) Transfer(ctx context.Context, kind assetv1.TransferKind, fromUserID, toUserID int64, asset assetv1.Asset, amount decimal.Decimal) error {
	from := l.balanceOf(fromUserID, asset)
	to := l.balanceOf(toUserID, asset)

	switch kind {
	case assetv1.AvailableToAvailable:
		if from.available.LessThan(amount) {
			return l.insufficient(kind, fromUserID, asset, from.available, amount)
		}
		from.available = from.available.Sub(amount)
		to.available = to.available.Add(amount)
	case assetv1.AvailableToFrozen:
		if from.available.LessThan(amount) {
			return l.insufficient(kind, fromUserID, asset, from.available, amount)
		}
		from.available = from.available.Sub(amount)
		to.frozen = to.frozen.Add(amount)
	case assetv1.FrozenToAvailable:
		if from.frozen.LessThan(amount) {
			return l.insufficient(kind, fromUserID, asset, from.frozen, amount)
		}
		from.frozen = from.frozen.Sub(amount)
		to.available = to.available.Add(amount)
	default:
		return errors.NewErrorDetails(
			fmt.Sprintf("invalid transfer kind: %d", kind),
			string(errors.ErrInvalidTransferKind),
			"kind",
		)
	}

	l.logger.DebugContext(ctx, "transfer",
		logger.Field{Key: "kind", Value: kind.String()},
		logger.Field{Key: "fromUserID", Value: fromUserID},
		logger.Field{Key: "toUserID", Value: toUserID},
		logger.Field{Key: "asset", Value: asset},
		logger.Field{Key: "amount", Value: amount},
	)
	return nil
}

func (l *Ledger) insufficient(kind assetv1.TransferKind, userID int64, asset assetv1.Asset, have, want decimal.Decimal) error {
	return errors.NewErrorDetails(
		fmt.Sprintf("%s transfer of %s exceeds %s for user %d asset %s", kind, want, have, userID, asset),
		string(errors.ErrTransferSourceInsufficient),
		"amount",
	)
}

// Available returns the user's available balance for the asset.
func (l *Ledger) Available(userID int64, asset assetv1.Asset) decimal.Decimal {
	if userBalances, ok := l.balances[userID]; ok {
		if b, ok := userBalances[asset]; ok {
			return b.available
		}
	}
	return decimal.Zero
}

// Frozen returns the user's frozen balance for the asset.
func (l *Ledger) Frozen(userID int64, asset assetv1.Asset) decimal.Decimal {
	if userBalances, ok := l.balances[userID]; ok {
		if b, ok := userBalances[asset]; ok {
			return b.frozen
		}
	}
	return decimal.Zero
}

// Balances returns all non-zero balances sorted by user id then asset.
func (l *Ledger) Balances(ctx context.Context) []assetv1.Balance {
	var out []assetv1.Balance
	for userID, userBalances := range l.balances {
		for asset, b := range userBalances {
			if b.available.IsZero() && b.frozen.IsZero() {
				continue
			}
			out = append(out, assetv1.Balance{
				UserID:    userID,
				Asset:     asset,
				Available: b.available,
				Frozen:    b.frozen,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Asset < out[j].Asset
	})
	return out
}

// Restore overwrites one (user, asset) balance from a snapshot.
func (l *Ledger) Restore(userID int64, asset assetv1.Asset, available, frozen decimal.Decimal) {
	b := l.balanceOf(userID, asset)
	b.available = available
	b.frozen = frozen
}

// Reset drops every balance. Used when restoring from a snapshot.
func (l *Ledger) Reset() {
	l.balances = make(map[int64]map[assetv1.Asset]*balance)
}
