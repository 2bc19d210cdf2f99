package orderbook

import (
	"container/heap"

	"github.com/gammazero/deque"
)

// priceLadder tracks the live level prices of one book side, best price
// first. Levels emptied by cancels are dropped lazily when the best price
// is read, so cancellation never pays for heap maintenance.
type priceLadder struct {
	prices []float64
	better func(a, b float64) bool
	member map[float64]bool
}

func newPriceLadder(better func(a, b float64) bool) *priceLadder {
	return &priceLadder{
		better: better,
		member: make(map[float64]bool),
	}
}

// Add registers a price level. Re-adding a tracked price is a no-op, so a
// level that empties and refills is never duplicated.
func (l *priceLadder) Add(price float64) {
	if l.member[price] {
		return
	}
	heap.Push((*ladderHeap)(l), price)
}

// Best returns the best price whose level still holds orders, discarding
// stale entries and their empty levels on the way.
func (l *priceLadder) Best(levels map[float64]*deque.Deque[*Order]) (float64, bool) {
	for len(l.prices) > 0 {
		price := l.prices[0]
		if q := levels[price]; q == nil || q.Len() == 0 {
			heap.Pop((*ladderHeap)(l))
			delete(levels, price)
			continue
		}
		return price, true
	}
	return 0, false
}

// ladderHeap adapts priceLadder to container/heap.
type ladderHeap priceLadder

func (h *ladderHeap) Len() int { return len(h.prices) }

func (h *ladderHeap) Less(i, j int) bool { return h.better(h.prices[i], h.prices[j]) }

func (h *ladderHeap) Swap(i, j int) { h.prices[i], h.prices[j] = h.prices[j], h.prices[i] }

func (h *ladderHeap) Push(x any) {
	price := x.(float64)
	h.member[price] = true
	h.prices = append(h.prices, price)
}

func (h *ladderHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.member, price)
	return price
}
