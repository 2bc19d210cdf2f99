package journal

import (
	"sync"
	"time"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// Journal keeps the in-memory event history of every order and the mapping
// from client-supplied ids to engine order ids. It is the source the
// persistence worker replays from and the duplicate-submission check.
type Journal struct {
	mu        sync.RWMutex
	events    map[string][]*model.OrderEvent
	byClient  map[string]string // ClientOrderID -> OrderID
	listeners []func(*model.OrderEvent)
}

func New() *Journal {
	return &Journal{
		events:   make(map[string][]*model.OrderEvent),
		byClient: make(map[string]string),
	}
}

// Subscribe registers a listener invoked for every recorded event. Register
// listeners before the journal is in use; the slice is not guarded after.
func (j *Journal) Subscribe(fn func(*model.OrderEvent)) {
	j.listeners = append(j.listeners, fn)
}

// TryTrack reserves a client order id for an engine order id. It returns
// false when the id is already bound; check and reservation happen under
// one lock, so concurrent duplicate submissions cannot both pass.
func (j *Journal) TryTrack(orderID, clientOrderID string) bool {
	if clientOrderID == "" {
		return true
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.byClient[clientOrderID]; ok {
		return false
	}
	j.byClient[clientOrderID] = orderID
	return true
}

// OrderIDByClientID resolves a client order id, "" when unknown.
func (j *Journal) OrderIDByClientID(clientOrderID string) string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.byClient[clientOrderID]
}

// Record snapshots the order into its next history entry.
func (j *Journal) Record(order *model.Order, execType model.OrderExecType, ts time.Time) *model.OrderEvent {
	j.mu.Lock()
	seq := len(j.events[order.OrderID])
	ev := model.NewOrderEvent(order, execType, seq, ts)
	j.events[order.OrderID] = append(j.events[order.OrderID], ev)
	j.mu.Unlock()

	for _, fn := range j.listeners {
		fn(ev)
	}
	return ev
}

// Events returns the recorded history of an order, oldest first.
func (j *Journal) Events(orderID string) []*model.OrderEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	evs := j.events[orderID]
	out := make([]*model.OrderEvent, len(evs))
	copy(out, evs)
	return out
}
