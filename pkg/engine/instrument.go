package engine

import (
	"sync"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

// instrument is the per-symbol state arena: the book, the dormant stop set
// and the OCO groups are owned exclusively by this struct and touched only
// under mu. One submission holds the lock end to end, so price-time
// priority and quantity conservation hold under concurrent callers while
// different instruments proceed in parallel.
type instrument struct {
	mu sync.Mutex

	symbol string
	book   *orderbook.Book
	orders map[string]*model.Order
	stops  *stopBook
	oco    map[string][]string

	// triggered queues stop entries fired by trade prints, in print order,
	// awaiting execution by drainStops
	triggered []*stopEntry

	lastPrice float64
	hasLast   bool
}

func newInstrument(symbol string) *instrument {
	return &instrument{
		symbol: symbol,
		book:   orderbook.NewBook(symbol),
		orders: make(map[string]*model.Order),
		stops:  newStopBook(),
		oco:    make(map[string][]string),
	}
}

// observePrint feeds one trade print to the dormant set. Every print
// ratchets trailing anchors and may fire entries; fired entries queue for
// execution so the crossing that printed them completes first.
func (inst *instrument) observePrint(price float64) {
	inst.lastPrice = price
	inst.hasLast = true
	inst.triggered = append(inst.triggered, inst.stops.observe(price)...)
}

// seedAnchor picks the initial trailing anchor: the best opposite price,
// falling back to the last trade price, then to a client-supplied stop
// price. ok=false when no reference price exists at all.
func (inst *instrument) seedAnchor(o *model.Order) (float64, bool) {
	var best float64
	var ok bool
	if o.Side == model.OrderSideSell {
		best, ok = inst.book.BestBid()
	} else {
		best, ok = inst.book.BestAsk()
	}
	if ok {
		return best, true
	}
	if inst.hasLast {
		return inst.lastPrice, true
	}
	if o.StopPrice.IsPositive() {
		return o.StopPrice.InexactFloat64(), true
	}
	return 0, false
}
