package matching

import (
	matchv1 "github.com/exchangelabs/trading-core/internal/domain/match/v1"
	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

// MatchEngine maintains the bid and ask books and matches incoming orders
// against the opposite side. Matching is pure computation: no ledger or
// registry side effects happen here, clearing applies them afterwards.
type MatchEngine struct {
	bids *bookSide
	asks *bookSide
}

// NewMatchEngine creates an engine with empty books.
func NewMatchEngine() *MatchEngine {
	return &MatchEngine{
		bids: newBookSide(bidLess),
		asks: newBookSide(askLess),
	}
}

// Match runs the taker against the opposite book side. Fills happen at the
// maker's price, earlier resting orders first. A fully filled maker leaves
// the book here; its registry removal happens during clearing. An unfilled
// limit remainder rests in the taker's own side, a market remainder is
// dropped.
func (e *MatchEngine) Match(ts int64, taker *orderv1.Order) *matchv1.MatchResult {
	result := matchv1.NewMatchResult(taker)

	own, opposite := e.sides(taker.Direction)
	for !taker.IsFullyFilled() {
		maker := opposite.Best()
		if maker == nil || !crosses(taker, maker) {
			break
		}

		matched := decimalMin(taker.UnfilledQuantity, maker.UnfilledQuantity)
		result.Add(maker.Price, matched, maker)

		taker.Fill(matched, ts)
		maker.Fill(matched, ts)

		if maker.IsFullyFilled() {
			opposite.PopBest()
		}
	}

	if !taker.IsFullyFilled() && taker.Type == orderv1.TypeLimit {
		own.Insert(taker)
	}

	return result
}

// Cancel removes a resting order from its book side. Returns false if the
// order is not in the book (e.g. a fully matched taker).
func (e *MatchEngine) Cancel(order *orderv1.Order) bool {
	own, _ := e.sides(order.Direction)
	return own.Remove(order.ID)
}

// Insert places a resting order directly into its side. Used when
// rebuilding the book from a snapshot.
func (e *MatchEngine) Insert(order *orderv1.Order) {
	own, _ := e.sides(order.Direction)
	own.Insert(order)
}

// Bids returns the bid side in match priority order.
func (e *MatchEngine) Bids() []*orderv1.Order {
	return e.bids.Orders()
}

// Asks returns the ask side in match priority order.
func (e *MatchEngine) Asks() []*orderv1.Order {
	return e.asks.Orders()
}

// Reset drops both books. Used when restoring from a snapshot.
func (e *MatchEngine) Reset() {
	e.bids = newBookSide(bidLess)
	e.asks = newBookSide(askLess)
}

func (e *MatchEngine) sides(d orderv1.Direction) (own, opposite *bookSide) {
	if d == orderv1.DirectionBuy {
		return e.bids, e.asks
	}
	return e.asks, e.bids
}

// crosses reports whether the best opposing price satisfies the taker's
// limit: a buy crosses when best ask <= limit, a sell when best bid >= limit.
// A buy always honors its price, market or not; its quote reservation is
// price*quantity and fills above that price would spend funds never frozen.
// A market sell reserved its full base quantity, so any bid satisfies it.
func crosses(taker, maker *orderv1.Order) bool {
	if taker.Type == orderv1.TypeMarket && taker.Direction == orderv1.DirectionSell {
		return true
	}
	if taker.Direction == orderv1.DirectionBuy {
		return maker.Price.LessThanOrEqual(taker.Price)
	}
	return maker.Price.GreaterThanOrEqual(taker.Price)
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
