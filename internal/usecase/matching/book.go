package matching

import (
	"sort"

	orderv1 "github.com/exchangelabs/trading-core/internal/domain/order/v1"
)

// lessFunc compares two resting orders and reports whether a has strictly
// better queue priority than b.
type lessFunc func(a, b *orderv1.Order) bool

// bids: descending price, then ascending sequence id.
func bidLess(a, b *orderv1.Order) bool {
	if !a.Price.Equal(b.Price) {
		return a.Price.GreaterThan(b.Price)
	}
	return a.SequenceID < b.SequenceID
}

// asks: ascending price, then ascending sequence id.
func askLess(a, b *orderv1.Order) bool {
	if !a.Price.Equal(b.Price) {
		return a.Price.LessThan(b.Price)
	}
	return a.SequenceID < b.SequenceID
}

// bookSide keeps one side's resting orders in match priority order.
type bookSide struct {
	orders []*orderv1.Order
	less   lessFunc
}

func newBookSide(less lessFunc) *bookSide {
	return &bookSide{less: less}
}

// Best returns the order at the front of the queue, or nil when empty.
func (s *bookSide) Best() *orderv1.Order {
	if len(s.orders) == 0 {
		return nil
	}
	return s.orders[0]
}

// PopBest removes and returns the front of the queue.
func (s *bookSide) PopBest() *orderv1.Order {
	best := s.orders[0]
	s.orders = s.orders[1:]
	return best
}

// Insert places the order at its priority position.
func (s *bookSide) Insert(order *orderv1.Order) {
	i := sort.Search(len(s.orders), func(i int) bool {
		return s.less(order, s.orders[i])
	})
	s.orders = append(s.orders, nil)
	copy(s.orders[i+1:], s.orders[i:])
	s.orders[i] = order
}

// Remove deletes the order with the given id. Returns false if absent.
func (s *bookSide) Remove(orderID int64) bool {
	for i, order := range s.orders {
		if order.ID == orderID {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of resting orders on this side.
func (s *bookSide) Len() int {
	return len(s.orders)
}

// Orders returns the side's resting orders in match priority order.
func (s *bookSide) Orders() []*orderv1.Order {
	out := make([]*orderv1.Order, len(s.orders))
	copy(out, s.orders)
	return out
}
