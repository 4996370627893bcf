package clearing

import (
	"context"
	"testing"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/exchangelabs/trading-core/internal/usecase/assets"
	"github.com/exchangelabs/trading-core/internal/usecase/matching"
	"github.com/exchangelabs/trading-core/internal/usecase/registry"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	btc = assetv1.Asset("BTC")
	usd = assetv1.Asset("USD")
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type clearingFixture struct {
	ledger   *assets.Ledger
	registry *registry.OrderRegistry
	matcher  *matching.MatchEngine
	clearer  *ClearingEngine
}

func newFixture(t *testing.T) *clearingFixture {
	log, err := logger.NewLogger()
	require.NoError(t, err)
	ledger := assets.NewLedger(log)
	reg := registry.NewOrderRegistry(ledger, btc, usd, log)
	return &clearingFixture{
		ledger:   ledger,
		registry: reg,
		matcher:  matching.NewMatchEngine(),
		clearer:  NewClearingEngine(ledger, reg, btc, usd, log),
	}
}

// place runs the full create/match/clear path for one order.
func (f *clearingFixture) place(t *testing.T, ctx context.Context, seq, orderID, userID int64,
	direction orderv1.Direction, typ orderv1.Type, price, quantity string) *orderv1.Order {
	t.Helper()
	order, err := f.registry.CreateOrder(ctx, seq, seq, orderID, userID, direction, typ, d(price), d(quantity))
	require.NoError(t, err)
	result := f.matcher.Match(seq, order)
	require.NoError(t, f.clearer.ClearMatchResult(ctx, result))
	return order
}

// A buy taker that fills below its own limit gets the over-reserved quote
// back: exactly (taker.price - maker.price) * quantity.
func TestClearing_BuyTakerRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Deposit(ctx, 1, btc, d("1"))
	f.ledger.Deposit(ctx, 2, usd, d("100"))

	f.place(t, ctx, 1, 10, 1, orderv1.DirectionSell, orderv1.TypeLimit, "90", "1")
	f.place(t, ctx, 2, 20, 2, orderv1.DirectionBuy, orderv1.TypeLimit, "100", "1")

	// seller: 1 BTC gone, 90 USD received
	assert.True(t, f.ledger.Available(1, btc).IsZero())
	assert.True(t, f.ledger.Frozen(1, btc).IsZero())
	assert.True(t, f.ledger.Available(1, usd).Equal(d("90")))

	// buyer: paid 90 of the 100 frozen, refunded 10, received 1 BTC
	assert.True(t, f.ledger.Available(2, usd).Equal(d("10")))
	assert.True(t, f.ledger.Frozen(2, usd).IsZero())
	assert.True(t, f.ledger.Available(2, btc).Equal(d("1")))

	// both orders evicted
	assert.Equal(t, 0, f.registry.Len())
}

func TestClearing_SellTakerNoRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Deposit(ctx, 1, usd, d("100"))
	f.ledger.Deposit(ctx, 2, btc, d("1"))

	f.place(t, ctx, 1, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, "100", "1")
	f.place(t, ctx, 2, 20, 2, orderv1.DirectionSell, orderv1.TypeLimit, "90", "1")

	// the fill executes at the resting bid's price
	assert.True(t, f.ledger.Available(2, usd).Equal(d("100")))
	assert.True(t, f.ledger.Available(2, btc).IsZero())
	assert.True(t, f.ledger.Frozen(2, btc).IsZero())
	assert.True(t, f.ledger.Available(1, btc).Equal(d("1")))
	assert.True(t, f.ledger.Frozen(1, usd).IsZero())
	assert.Equal(t, 0, f.registry.Len())
}

func TestClearing_PartialFillKeepsMaker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Deposit(ctx, 1, btc, d("2"))
	f.ledger.Deposit(ctx, 2, usd, d("50"))

	maker := f.place(t, ctx, 1, 10, 1, orderv1.DirectionSell, orderv1.TypeLimit, "50", "2")
	f.place(t, ctx, 2, 20, 2, orderv1.DirectionBuy, orderv1.TypeLimit, "50", "1")

	// maker half filled and still registered with 1 BTC frozen
	assert.True(t, maker.UnfilledQuantity.Equal(d("1")))
	assert.Equal(t, maker, f.registry.GetOrder(10))
	assert.True(t, f.ledger.Frozen(1, btc).Equal(d("1")))
	assert.True(t, f.ledger.Available(1, usd).Equal(d("50")))
}

func TestClearing_CancelBuyOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Deposit(ctx, 1, usd, d("100"))

	order := f.place(t, ctx, 1, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, "50", "0.5")
	require.True(t, f.ledger.Frozen(1, usd).Equal(d("25")))

	require.True(t, f.matcher.Cancel(order))
	require.NoError(t, f.clearer.ClearCancelOrder(ctx, order))

	// exactly price*unfilled returned
	assert.True(t, f.ledger.Available(1, usd).Equal(d("100")))
	assert.True(t, f.ledger.Frozen(1, usd).IsZero())
	assert.Equal(t, 0, f.registry.Len())
}

func TestClearing_CancelSellOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Deposit(ctx, 1, btc, d("2"))

	order := f.place(t, ctx, 1, 10, 1, orderv1.DirectionSell, orderv1.TypeLimit, "50", "2")

	require.True(t, f.matcher.Cancel(order))
	require.NoError(t, f.clearer.ClearCancelOrder(ctx, order))

	assert.True(t, f.ledger.Available(1, btc).Equal(d("2")))
	assert.True(t, f.ledger.Frozen(1, btc).IsZero())
}

// Cancel after a partial fill unfreezes only the unfilled remainder.
func TestClearing_CancelPartiallyFilled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Deposit(ctx, 1, usd, d("100"))
	f.ledger.Deposit(ctx, 2, btc, d("1"))

	order := f.place(t, ctx, 1, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, "50", "2")
	f.place(t, ctx, 2, 20, 2, orderv1.DirectionSell, orderv1.TypeLimit, "50", "1")

	require.True(t, order.UnfilledQuantity.Equal(d("1")))
	require.True(t, f.ledger.Frozen(1, usd).Equal(d("50")))

	require.True(t, f.matcher.Cancel(order))
	require.NoError(t, f.clearer.ClearCancelOrder(ctx, order))

	assert.True(t, f.ledger.Frozen(1, usd).IsZero())
	assert.True(t, f.ledger.Available(1, usd).Equal(d("50")))
	assert.True(t, f.ledger.Available(1, btc).Equal(d("1")))
}
