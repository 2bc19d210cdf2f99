package orderbook

import (
	"math"
	"sort"

	"github.com/gammazero/deque"
)

// Book holds the resting orders of one instrument: a FIFO queue of makers
// per price level plus a price ladder per side. A Book is not safe for
// concurrent use; the owning instrument state serializes all access.
type Book struct {
	symbol string

	bids map[float64]*deque.Deque[*Order]
	asks map[float64]*deque.Deque[*Order]

	bidLadder *priceLadder
	askLadder *priceLadder

	orders map[string]*Order
}

func NewBook(symbol string) *Book {
	return &Book{
		symbol:    symbol,
		bids:      make(map[float64]*deque.Deque[*Order]),
		asks:      make(map[float64]*deque.Deque[*Order]),
		bidLadder: newPriceLadder(func(a, b float64) bool { return a > b }),
		askLadder: newPriceLadder(func(a, b float64) bool { return a < b }),
		orders:    make(map[string]*Order),
	}
}

func (b *Book) Symbol() string {
	return b.symbol
}

// Len reports the number of resting orders.
func (b *Book) Len() int {
	return len(b.orders)
}

// Order returns a resting order by id.
func (b *Book) Order(id string) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

func (b *Book) sideOf(s Side) (map[float64]*deque.Deque[*Order], *priceLadder) {
	if s == BUY {
		return b.bids, b.bidLadder
	}
	return b.asks, b.askLadder
}

// counterSide returns the levels an incoming taker order crosses against
// and the predicate deciding whether a level price is within its limit.
func (b *Book) counterSide(taker Side) (map[float64]*deque.Deque[*Order], *priceLadder, func(limit, best float64) bool) {
	if taker == BUY {
		return b.asks, b.askLadder, func(limit, best float64) bool { return limit >= best }
	}
	return b.bids, b.bidLadder, func(limit, best float64) bool { return limit <= best }
}

func (b *Book) BestBid() (float64, bool) {
	return b.bidLadder.Best(b.bids)
}

func (b *Book) BestAsk() (float64, bool) {
	return b.askLadder.Best(b.asks)
}

// Rest parks an order at the tail of its price-level queue, creating the
// level if absent. The caller guarantees the order does not cross.
func (b *Book) Rest(o *Order) {
	levels, ladder := b.sideOf(o.Side)
	q := levels[o.Price]
	if q == nil {
		q = &deque.Deque[*Order]{}
		levels[o.Price] = q
		ladder.Add(o.Price)
	}
	q.PushBack(o)
	b.orders[o.ID] = o
}

// Cancel removes a resting order. Cancelling an unknown, filled or already
// cancelled id is a no-op and returns false.
func (b *Book) Cancel(orderID string) bool {
	o, ok := b.orders[orderID]
	if !ok {
		return false
	}
	delete(b.orders, orderID)

	levels, _ := b.sideOf(o.Side)
	q := levels[o.Price]
	if q == nil {
		return true
	}
	for i, n := 0, q.Len(); i < n; i++ {
		head := q.PopFront()
		if head.ID == orderID {
			continue
		}
		q.PushBack(head)
	}
	if q.Len() == 0 {
		delete(levels, o.Price) // ladder entry is dropped lazily by Best
	}
	return true
}

// MarketLimit is the price bound a market order crosses with.
func MarketLimit(side Side) float64 {
	if side == BUY {
		return math.MaxFloat64
	}
	return 0
}

// Cross walks counter-side levels in priority order, consuming queue heads
// first, until qty is exhausted or no level is within priceLimit. Fills
// execute at the maker price. An iceberg maker whose disclosed slice is
// consumed replenishes and re-enters at the tail of its level before the
// level is finalized. Returns the fills and the unmatched remainder.
func (b *Book) Cross(taker Side, qty int64, priceLimit float64) ([]Fill, int64) {
	levels, ladder, crossable := b.counterSide(taker)

	var fills []Fill
	for qty > 0 {
		best, ok := ladder.Best(levels)
		if !ok || !crossable(priceLimit, best) {
			break
		}

		q := levels[best]
		maker := q.Front()

		n := qty
		if maker.Qty < n {
			n = maker.Qty
		}
		qty -= n
		maker.Qty -= n

		done := false
		if maker.Qty == 0 {
			q.PopFront()
			if maker.hiddenQty > 0 {
				maker.replenish()
				q.PushBack(maker)
			} else {
				delete(b.orders, maker.ID)
				done = true
			}
		}
		if q.Len() == 0 {
			delete(levels, best)
		}

		fills = append(fills, Fill{
			MakerOrderID: maker.ID,
			MakerAccount: maker.Account,
			Price:        best,
			Qty:          n,
			MakerDone:    done,
		})
	}
	return fills, qty
}

// AvailableQty sums the disclosed resting quantity a taker could cross
// within priceLimit without mutating the book. Hidden iceberg reserve is
// not counted.
func (b *Book) AvailableQty(taker Side, priceLimit float64) int64 {
	levels, _, crossable := b.counterSide(taker)

	var total int64
	for price, q := range levels {
		if !crossable(priceLimit, price) {
			continue
		}
		for i := 0; i < q.Len(); i++ {
			total += q.At(i).Qty
		}
	}
	return total
}

// Snapshot returns up to depth aggregated levels per side, best price first.
func (b *Book) Snapshot(depth int) (bids, asks []Level) {
	return b.sideSnapshot(b.bids, depth, true), b.sideSnapshot(b.asks, depth, false)
}

func (b *Book) sideSnapshot(levels map[float64]*deque.Deque[*Order], depth int, descending bool) []Level {
	prices := make([]float64, 0, len(levels))
	for price, q := range levels {
		if q.Len() > 0 {
			prices = append(prices, price)
		}
	}
	sort.Float64s(prices)
	if descending {
		for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
			prices[i], prices[j] = prices[j], prices[i]
		}
	}
	if depth > 0 && len(prices) > depth {
		prices = prices[:depth]
	}

	out := make([]Level, 0, len(prices))
	for _, price := range prices {
		q := levels[price]
		var qty int64
		for i := 0; i < q.Len(); i++ {
			qty += q.At(i).Qty
		}
		out = append(out, Level{Price: price, Qty: qty})
	}
	return out
}
