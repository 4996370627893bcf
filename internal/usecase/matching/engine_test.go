package matching

import (
	"testing"

	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrder(id, seq int64, direction orderv1.Direction, typ orderv1.Type, price, quantity string) *orderv1.Order {
	return &orderv1.Order{
		ID:               id,
		SequenceID:       seq,
		UserID:           id,
		Direction:        direction,
		Type:             typ,
		Price:            d(price),
		Quantity:         d(quantity),
		UnfilledQuantity: d(quantity),
		CreatedAt:        seq,
		UpdatedAt:        seq,
	}
}

func TestMatchEngine_NoCross(t *testing.T) {
	e := NewMatchEngine()

	sell := newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeLimit, "100", "1")
	result := e.Match(1, sell)
	assert.Empty(t, result.MatchDetails)

	buy := newOrder(2, 2, orderv1.DirectionBuy, orderv1.TypeLimit, "90", "1")
	result = e.Match(2, buy)
	assert.Empty(t, result.MatchDetails)

	// both rest in their own sides
	require.Len(t, e.Asks(), 1)
	require.Len(t, e.Bids(), 1)
	assert.Equal(t, int64(1), e.Asks()[0].ID)
	assert.Equal(t, int64(2), e.Bids()[0].ID)
}

// Fills execute at the maker's price even when the taker's limit is better.
func TestMatchEngine_MakerPriceExecution(t *testing.T) {
	e := NewMatchEngine()

	maker := newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeLimit, "90", "1")
	e.Match(1, maker)

	taker := newOrder(2, 2, orderv1.DirectionBuy, orderv1.TypeLimit, "100", "1")
	result := e.Match(2, taker)

	require.Len(t, result.MatchDetails, 1)
	assert.True(t, result.MatchDetails[0].Price.Equal(d("90")))
	assert.True(t, result.MatchDetails[0].Quantity.Equal(d("1")))
	assert.Equal(t, int64(1), result.MatchDetails[0].MakerOrder.ID)
	assert.True(t, taker.IsFullyFilled())
	assert.True(t, maker.IsFullyFilled())
	assert.Empty(t, e.Asks())
	assert.Empty(t, e.Bids())
}

// Better-priced makers fill first; at equal prices the earlier sequence wins.
func TestMatchEngine_PriceTimePriority(t *testing.T) {
	e := NewMatchEngine()

	e.Match(1, newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeLimit, "95", "1"))
	e.Match(2, newOrder(2, 2, orderv1.DirectionSell, orderv1.TypeLimit, "90", "1"))
	e.Match(3, newOrder(3, 3, orderv1.DirectionSell, orderv1.TypeLimit, "90", "1"))

	taker := newOrder(4, 4, orderv1.DirectionBuy, orderv1.TypeLimit, "95", "3")
	result := e.Match(4, taker)

	require.Len(t, result.MatchDetails, 3)
	assert.Equal(t, int64(2), result.MatchDetails[0].MakerOrder.ID)
	assert.Equal(t, int64(3), result.MatchDetails[1].MakerOrder.ID)
	assert.Equal(t, int64(1), result.MatchDetails[2].MakerOrder.ID)
	assert.True(t, result.MatchDetails[0].Price.Equal(d("90")))
	assert.True(t, result.MatchDetails[2].Price.Equal(d("95")))
}

func TestMatchEngine_PartialFillRests(t *testing.T) {
	e := NewMatchEngine()

	e.Match(1, newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeLimit, "100", "0.4"))

	taker := newOrder(2, 2, orderv1.DirectionBuy, orderv1.TypeLimit, "100", "1")
	result := e.Match(2, taker)

	require.Len(t, result.MatchDetails, 1)
	assert.True(t, result.MatchDetails[0].Quantity.Equal(d("0.4")))
	assert.True(t, taker.UnfilledQuantity.Equal(d("0.6")))

	// the limit remainder rests on the bid side
	require.Len(t, e.Bids(), 1)
	assert.Equal(t, int64(2), e.Bids()[0].ID)
	assert.Empty(t, e.Asks())
}

// A market taker never rests; whatever cannot match is dropped from the book.
func TestMatchEngine_MarketRemainderDropped(t *testing.T) {
	e := NewMatchEngine()

	e.Match(1, newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeLimit, "100", "0.3"))

	taker := newOrder(2, 2, orderv1.DirectionBuy, orderv1.TypeMarket, "120", "1")
	result := e.Match(2, taker)

	require.Len(t, result.MatchDetails, 1)
	assert.True(t, result.MatchDetails[0].Quantity.Equal(d("0.3")))
	assert.True(t, taker.UnfilledQuantity.Equal(d("0.7")))
	assert.Empty(t, e.Bids())
	assert.Empty(t, e.Asks())
}

// A market buy reserved quote at its cap price, so asks above the cap must
// not fill; a market sell reserved its base quantity and takes any bid.
func TestMatchEngine_MarketBuyHonorsCap(t *testing.T) {
	e := NewMatchEngine()

	e.Match(1, newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeLimit, "150", "1"))

	taker := newOrder(2, 2, orderv1.DirectionBuy, orderv1.TypeMarket, "100", "1")
	result := e.Match(2, taker)

	assert.Empty(t, result.MatchDetails)
	assert.True(t, taker.UnfilledQuantity.Equal(d("1")))
	require.Len(t, e.Asks(), 1)
	assert.Empty(t, e.Bids())

	e.Match(3, newOrder(3, 3, orderv1.DirectionBuy, orderv1.TypeLimit, "10", "0.5"))
	seller := newOrder(4, 4, orderv1.DirectionSell, orderv1.TypeMarket, "0", "0.5")
	result = e.Match(4, seller)
	require.Len(t, result.MatchDetails, 1)
	assert.True(t, result.MatchDetails[0].Price.Equal(d("10")))
}

func TestMatchEngine_MarketOrderEmptyBook(t *testing.T) {
	e := NewMatchEngine()

	taker := newOrder(1, 1, orderv1.DirectionSell, orderv1.TypeMarket, "0", "2")
	result := e.Match(1, taker)

	assert.Empty(t, result.MatchDetails)
	assert.True(t, taker.UnfilledQuantity.Equal(d("2")))
	assert.Empty(t, e.Asks())
}

func TestMatchEngine_Cancel(t *testing.T) {
	e := NewMatchEngine()

	order := newOrder(1, 1, orderv1.DirectionBuy, orderv1.TypeLimit, "50", "1")
	e.Match(1, order)
	require.Len(t, e.Bids(), 1)

	assert.True(t, e.Cancel(order))
	assert.Empty(t, e.Bids())

	// a second cancel finds nothing
	assert.False(t, e.Cancel(order))
}

func TestMatchEngine_BidOrdering(t *testing.T) {
	e := NewMatchEngine()

	e.Match(1, newOrder(1, 1, orderv1.DirectionBuy, orderv1.TypeLimit, "50", "1"))
	e.Match(2, newOrder(2, 2, orderv1.DirectionBuy, orderv1.TypeLimit, "55", "1"))
	e.Match(3, newOrder(3, 3, orderv1.DirectionBuy, orderv1.TypeLimit, "55", "1"))

	bids := e.Bids()
	require.Len(t, bids, 3)
	assert.Equal(t, int64(2), bids[0].ID)
	assert.Equal(t, int64(3), bids[1].ID)
	assert.Equal(t, int64(1), bids[2].ID)
}
