package engine

import (
	"sort"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// stopEntry shadows one dormant stop, stop-limit or trailing-stop order.
// The anchor is the running extreme price a trailing stop follows.
type stopEntry struct {
	orderID   string
	side      model.OrderSide
	typ       model.OrderType
	stopPrice float64
	offset    float64
	anchor    float64
	seq       int64
}

type stopBook struct {
	entries map[string]*stopEntry
	nextSeq int64
}

func newStopBook() *stopBook {
	return &stopBook{entries: make(map[string]*stopEntry)}
}

func (s *stopBook) add(e *stopEntry) {
	e.seq = s.nextSeq
	s.nextSeq++
	s.entries[e.orderID] = e
}

func (s *stopBook) remove(orderID string) bool {
	if _, ok := s.entries[orderID]; !ok {
		return false
	}
	delete(s.entries, orderID)
	return true
}

func (s *stopBook) len() int {
	return len(s.entries)
}

// observe feeds one last-trade price to every entry: trailing anchors ratchet
// in the favorable direction on every trade, triggered entries leave the
// dormant set and are returned in registration order.
func (s *stopBook) observe(last float64) []*stopEntry {
	var triggered []*stopEntry
	for id, e := range s.entries {
		if e.observe(last) {
			triggered = append(triggered, e)
			delete(s.entries, id)
		}
	}
	sort.Slice(triggered, func(i, j int) bool { return triggered[i].seq < triggered[j].seq })
	return triggered
}

func (e *stopEntry) observe(last float64) bool {
	switch e.typ {
	case model.OrderTypeStop, model.OrderTypeStopLimit:
		if e.side == model.OrderSideBuy {
			return last >= e.stopPrice
		}
		return last <= e.stopPrice
	case model.OrderTypeTrailingStop:
		if e.side == model.OrderSideSell {
			if last > e.anchor {
				e.anchor = last
			}
			return last <= e.anchor-e.offset
		}
		if last < e.anchor {
			e.anchor = last
		}
		return last >= e.anchor+e.offset
	}
	return false
}
