package engine

import (
	"context"
	"testing"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

func TestStopBuyTriggersOnLastPrice(t *testing.T) {
	e, trades := newTestEngine(t)

	mustPlace(t, e, limitReq("X", model.OrderSideSell, 100, 10))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 105, 10))

	stop := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideBuy,
		Type: model.OrderTypeStop, Quantity: q(10), StopPrice: d(102),
	})
	if stop.Status != model.OrderStatusPending {
		t.Fatalf("stop must stay PENDING until triggered, got %s", stop.Status)
	}

	// trade at 100: below the stop price, nothing triggers
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 100, 10))
	if got, _ := e.GetOrder(stop.OrderID); got.Status != model.OrderStatusPending {
		t.Fatalf("stop triggered below its price: %s", got.Status)
	}

	// trade at 105 crosses the stop price; the triggered order converts to
	// market and consumes the rest of the 105 level
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 105, 5))

	got, _ := e.GetOrder(stop.OrderID)
	if got.Status != model.OrderStatusCancelled {
		t.Errorf("expected triggered market remainder cancelled, got %s", got.Status)
	}
	if !got.CumQuantity.Equal(q(5)) {
		t.Errorf("expected triggered order to fill 5, got %s", got.CumQuantity)
	}
	if len(trades.all()) != 3 {
		t.Errorf("expected 3 trades, got %d", len(trades.all()))
	}
}

func TestStopSellNotTriggeredAtRegistration(t *testing.T) {
	e, _ := newTestEngine(t)

	// even with a last price already beyond the stop, a fresh stop only
	// triggers on the next trade
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 90, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 90, 5))

	stop := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(5), StopPrice: d(95),
	})
	if stop.Status != model.OrderStatusPending {
		t.Fatalf("expected PENDING, got %s", stop.Status)
	}

	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 90, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 90, 5))

	got, _ := e.GetOrder(stop.OrderID)
	if got.Status == model.OrderStatusPending {
		t.Errorf("trade at 90 <= stop 95 must trigger the sell stop")
	}
}

func TestStopLimitActivatesAsLimit(t *testing.T) {
	e, _ := newTestEngine(t)

	stop := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStopLimit, Quantity: q(10),
		StopPrice: d(95), Price: d(94),
	})

	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 95, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 95, 5))

	got, _ := e.GetOrder(stop.OrderID)
	if got.Status != model.OrderStatusOpen {
		t.Fatalf("triggered stop-limit with no counterparty must rest, got %s", got.Status)
	}
	if got.Type != model.OrderTypeLimit {
		t.Errorf("expected conversion to LIMIT, got %s", got.Type)
	}
	_, asks := e.Snapshot("X", 10)
	if len(asks) != 1 || asks[0].Price != 94 || asks[0].Qty != 10 {
		t.Errorf("expected resting 10 @ 94, got %+v", asks)
	}
}

func TestTrailingStopFollowsThenTriggers(t *testing.T) {
	e, trades := newTestEngine(t)

	// establish a last price of 100
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 100, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 100, 5))

	trail := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeTrailingStop, Quantity: q(5), TrailingOffset: d(5),
	})
	if trail.Status != model.OrderStatusPending {
		t.Fatalf("expected PENDING, got %s", trail.Status)
	}

	// price rises to 110: the anchor follows, no trigger
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 110, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 110, 5))
	if got, _ := e.GetOrder(trail.OrderID); got.Status != model.OrderStatusPending {
		t.Fatalf("rising price must not trigger a trailing sell")
	}

	// a dip to 107 stays above 110-5: the anchor must not slip back
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 107, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 107, 5))
	if got, _ := e.GetOrder(trail.OrderID); got.Status != model.OrderStatusPending {
		t.Fatalf("dip above the trail distance must not trigger")
	}

	// fall to 104 <= 110-5: triggers as a market sell into the 103 bid
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 103, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 104, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 104, 5))

	got, _ := e.GetOrder(trail.OrderID)
	if got.Status != model.OrderStatusFilled {
		t.Fatalf("expected triggered trailing stop FILLED, got %s", got.Status)
	}

	last := trades.all()[len(trades.all())-1]
	if !last.Price.Equal(d(103)) || last.SellOrderID != trail.OrderID {
		t.Errorf("expected final trade 5 @ 103 by the trailing order, got %+v", last)
	}
}

func TestTrailingStopWithoutReferenceRejected(t *testing.T) {
	e, _ := newTestEngine(t)

	order, err := e.PlaceOrder(context.Background(), &model.OrderRequest{
		Account: "a", Symbol: "FRESH", Side: model.OrderSideSell,
		Type: model.OrderTypeTrailingStop, Quantity: q(5), TrailingOffset: d(5),
	})
	if err == nil {
		t.Fatalf("expected reject: no book, no last price, no stop price")
	}
	if kind, _ := RejectKindOf(err); kind != RejectValidation {
		t.Errorf("expected RejectValidation, got %v", err)
	}
	if order.Status != model.OrderStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", order.Status)
	}
}

func TestTrailingStopSeedsFromStopPrice(t *testing.T) {
	e, _ := newTestEngine(t)

	trail := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "FRESH", Side: model.OrderSideSell,
		Type: model.OrderTypeTrailingStop, Quantity: q(5),
		TrailingOffset: d(5), StopPrice: d(100),
	})
	if trail.Status != model.OrderStatusPending {
		t.Fatalf("client-supplied reference must be accepted, got %s", trail.Status)
	}
}

func TestStopCancelBeforeTrigger(t *testing.T) {
	e, _ := newTestEngine(t)

	stop := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideBuy,
		Type: model.OrderTypeStop, Quantity: q(5), StopPrice: d(102),
	})
	if !e.CancelOrder(context.Background(), stop.OrderID) {
		t.Fatalf("expected cancel of a dormant stop")
	}

	// the cancelled stop must not fire
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 105, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 105, 5))

	got, _ := e.GetOrder(stop.OrderID)
	if got.Status != model.OrderStatusCancelled || !got.CumQuantity.IsZero() {
		t.Errorf("cancelled stop traded: %s cum %s", got.Status, got.CumQuantity)
	}
}

func TestBuyStopTriggersOnIntermediatePrint(t *testing.T) {
	e, trades := newTestEngine(t)

	// one sweep prints 95 then 92; the stop at 94 sits between the prints
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 96, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 95, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 92, 5))

	stop := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideBuy,
		Type: model.OrderTypeStop, Quantity: q(5), StopPrice: d(94),
	})

	mustPlace(t, e, marketReq("X", model.OrderSideSell, 10))

	got, _ := e.GetOrder(stop.OrderID)
	if got.Status == model.OrderStatusPending {
		t.Fatalf("stop at 94 must fire on the 95 print of the sweep")
	}
	if got.Status != model.OrderStatusFilled || !got.CumQuantity.Equal(q(5)) {
		t.Errorf("expected triggered stop filled against the 96 ask, got %s cum %s",
			got.Status, got.CumQuantity)
	}

	all := trades.all()
	last := all[len(all)-1]
	if last.BuyOrderID != stop.OrderID || !last.Price.Equal(d(96)) {
		t.Errorf("expected final trade 5 @ 96 by the stop, got %+v", last)
	}
}

func TestTrailingAnchorRatchetsOnIntermediatePrints(t *testing.T) {
	e, trades := newTestEngine(t)

	// seed the reference price at 100 on an otherwise empty book
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 100, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 100, 5))

	trail := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeTrailingStop, Quantity: q(5), TrailingOffset: d(5),
	})

	// one sweep prints 110 then 104: the 110 print must ratchet the anchor
	// so the 104 print falls through the trail distance
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 110, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 104, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 100, 5))
	mustPlace(t, e, marketReq("X", model.OrderSideSell, 10))

	got, _ := e.GetOrder(trail.OrderID)
	if got.Status == model.OrderStatusPending {
		t.Fatalf("trailing stop must fire: anchor 110 from the first print, 104 <= 105")
	}
	if got.Status != model.OrderStatusFilled {
		t.Errorf("expected FILLED against the 100 bid, got %s", got.Status)
	}

	all := trades.all()
	last := all[len(all)-1]
	if last.SellOrderID != trail.OrderID || !last.Price.Equal(d(100)) {
		t.Errorf("expected final trade 5 @ 100 by the trailing order, got %+v", last)
	}
}

func TestStopCascade(t *testing.T) {
	e, _ := newTestEngine(t)

	// standing bids for the cascade to sell into
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 95, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 92, 5))

	// s1 fires at 95; its execution prints 95 then 92, which fires s2
	s1 := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(10), StopPrice: d(96),
	})
	s2 := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(5), StopPrice: d(93),
	})

	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 96, 1))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 96, 1))

	g1, _ := e.GetOrder(s1.OrderID)
	g2, _ := e.GetOrder(s2.OrderID)
	if g1.Status == model.OrderStatusPending {
		t.Errorf("s1 must have fired at 96")
	}
	if g2.Status == model.OrderStatusPending {
		t.Errorf("cascade must have fired s2 from s1's prints")
	}
}

func TestStopTriggerOrderIsRegistrationOrder(t *testing.T) {
	sb := newStopBook()
	for i := 0; i < 5; i++ {
		sb.add(&stopEntry{
			orderID: string(rune('a' + i)), side: model.OrderSideBuy,
			typ: model.OrderTypeStop, stopPrice: 100,
		})
	}
	triggered := sb.observe(100)
	if len(triggered) != 5 {
		t.Fatalf("expected all 5 triggered, got %d", len(triggered))
	}
	for i, entry := range triggered {
		if entry.orderID != string(rune('a'+i)) {
			t.Fatalf("expected registration order, got %q at %d", entry.orderID, i)
		}
	}
	if sb.len() != 0 {
		t.Errorf("triggered entries must leave the dormant set")
	}
}

func TestTrailingBuyAnchorRatchetsDown(t *testing.T) {
	entry := &stopEntry{
		side: model.OrderSideBuy, typ: model.OrderTypeTrailingStop,
		offset: 5, anchor: 100,
	}
	if entry.observe(97) {
		t.Fatalf("97 < 100+5, must not trigger")
	}
	if entry.anchor != 97 {
		t.Fatalf("falling price must lower the buy anchor, got %v", entry.anchor)
	}
	if entry.observe(99) {
		t.Fatalf("99 < 97+5, must not trigger")
	}
	if entry.anchor != 97 {
		t.Fatalf("rising price must not raise the buy anchor, got %v", entry.anchor)
	}
	if !entry.observe(102) {
		t.Fatalf("102 >= 97+5, must trigger")
	}
}
