package registry

import (
	"context"
	"strings"
	"testing"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/exchangelabs/trading-core/internal/usecase/assets"
	pkgerrors "github.com/exchangelabs/trading-core/pkg/errors"
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

func newTestRegistry(t *testing.T) (*OrderRegistry, *assets.Ledger) {
	log, err := logger.NewLogger()
	require.NoError(t, err)
	ledger := assets.NewLedger(log)
	return NewOrderRegistry(ledger, btc, usd, log), ledger
}

func TestOrderRegistry_CreateBuyOrder(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 1, usd, d("100"))

	order, err := r.CreateOrder(ctx, 1, 1000, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1.5"))
	require.NoError(t, err)
	require.NotNil(t, order)

	// buy reserves price*quantity of the quote asset
	assert.True(t, ledger.Available(1, usd).Equal(d("25")))
	assert.True(t, ledger.Frozen(1, usd).Equal(d("75")))
	assert.True(t, order.UnfilledQuantity.Equal(d("1.5")))
	assert.Equal(t, order, r.GetOrder(10))
	assert.Equal(t, order, r.GetUserOrders(1)[10])
}

func TestOrderRegistry_CreateSellOrder(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 2, btc, d("3"))

	order, err := r.CreateOrder(ctx, 2, 1000, 11, 2, orderv1.DirectionSell, orderv1.TypeLimit, d("60"), d("2"))
	require.NoError(t, err)
	require.NotNil(t, order)

	// sell reserves quantity of the base asset
	assert.True(t, ledger.Available(2, btc).Equal(d("1")))
	assert.True(t, ledger.Frozen(2, btc).Equal(d("2")))
}

func TestOrderRegistry_CreateOrderInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 1, usd, d("10"))

	order, err := r.CreateOrder(ctx, 1, 1000, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1"))
	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, pkgerrors.ErrorCodeEquals(err, pkgerrors.ErrInsufficientFunds))
	assert.False(t, pkgerrors.IntegrityFault(err))

	// a failed reservation leaves no trace
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.GetOrder(10))
	assert.True(t, ledger.Available(1, usd).Equal(d("10")))
	assert.True(t, ledger.Frozen(1, usd).IsZero())
}

func TestOrderRegistry_RemoveOrder(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 1, usd, d("100"))
	_, err := r.CreateOrder(ctx, 1, 1000, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1"))
	require.NoError(t, err)

	require.NoError(t, r.RemoveOrder(10))
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.GetOrder(10))
	assert.Nil(t, r.GetUserOrders(1))
}

func TestOrderRegistry_RemoveOrderNotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.RemoveOrder(99)
	require.Error(t, err)
	assert.True(t, pkgerrors.ErrorCodeEquals(err, pkgerrors.ErrOrderNotFound))
}

func TestOrderRegistry_RemoveOrderCorruptedUserIndex(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 1, usd, d("100"))
	_, err := r.CreateOrder(ctx, 1, 1000, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1"))
	require.NoError(t, err)

	// sabotage the user index
	delete(r.userOrders, 1)

	err = r.RemoveOrder(10)
	require.Error(t, err)
	assert.True(t, pkgerrors.ErrorCodeEquals(err, pkgerrors.ErrOrderIndexCorrupted))
	assert.True(t, pkgerrors.IntegrityFault(err))
}

func TestOrderRegistry_ActiveOrdersDeterministic(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 1, usd, d("1000"))
	ledger.Deposit(ctx, 1, btc, d("10"))

	_, err := r.CreateOrder(ctx, 3, 1000, 30, 1, orderv1.DirectionSell, orderv1.TypeLimit, d("60"), d("1"))
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, 1, 1000, 10, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1"))
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, 2, 1000, 20, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1"))
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, 4, 1000, 40, 1, orderv1.DirectionBuy, orderv1.TypeLimit, d("40"), d("1"))
	require.NoError(t, err)

	got := r.ActiveOrders()
	require.Len(t, got, 4)

	// buys first (direction asc), then price asc, then sequence asc
	ids := []int64{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []int64{40, 10, 20, 30}, ids)
}

func TestOrderRegistry_Dump(t *testing.T) {
	ctx := context.Background()
	r, ledger := newTestRegistry(t)

	ledger.Deposit(ctx, 7, usd, d("100"))
	_, err := r.CreateOrder(ctx, 1, 1000, 10, 7, orderv1.DirectionBuy, orderv1.TypeLimit, d("50"), d("1"))
	require.NoError(t, err)

	dump := r.Dump(ctx)
	assert.True(t, strings.HasPrefix(dump, "---------- orders ----------"))
	assert.True(t, strings.HasSuffix(dump, "---------- // orders ----------"))
	assert.Contains(t, dump, "BUY")
	assert.Contains(t, dump, "50")
}
