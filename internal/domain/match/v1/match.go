package matchv1

import (
	"fmt"
	"strings"

	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

// MatchDetail is an immutable record of one fill. Price is always the
// maker's price. The order references are non-owning; their lifetime
// belongs to the order registry.
type MatchDetail struct {
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	TakerOrder *orderv1.Order
	MakerOrder *orderv1.Order
}

// MatchResult collects the fills produced by matching one taker order, in
// the exact order they occurred.
type MatchResult struct {
	TakerOrder   *orderv1.Order
	MatchDetails []MatchDetail
}

// NewMatchResult creates an empty result for the given taker.
func NewMatchResult(taker *orderv1.Order) *MatchResult {
	return &MatchResult{TakerOrder: taker}
}

// Add appends a fill against the given maker.
func (r *MatchResult) Add(price, matchedQuantity decimal.Decimal, maker *orderv1.Order) {
	r.MatchDetails = append(r.MatchDetails, MatchDetail{
		Price:      price,
		Quantity:   matchedQuantity,
		TakerOrder: r.TakerOrder,
		MakerOrder: maker,
	})
}

func (r *MatchResult) String() string {
	if len(r.MatchDetails) == 0 {
		return "no matched."
	}
	parts := make([]string, len(r.MatchDetails))
	for i, d := range r.MatchDetails {
		parts[i] = fmt.Sprintf("%s x %s (maker %d)", d.Quantity, d.Price, d.MakerOrder.ID)
	}
	return fmt.Sprintf("%d matched: %s", len(r.MatchDetails), strings.Join(parts, ", "))
}
