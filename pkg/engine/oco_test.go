package engine

import (
	"context"
	"testing"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// bracket: a take-profit limit and a protective stop sharing one OCO group.
func TestOCOLimitLegWinsCancelsStop(t *testing.T) {
	e, _ := newTestEngine(t)

	takeProfit := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeLimit, Quantity: q(10), Price: d(105),
		OCOGroupID: "g1",
	})
	protect := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(10), StopPrice: d(95),
		OCOGroupID: "g1",
	})

	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 105, 10))

	tp, _ := e.GetOrder(takeProfit.OrderID)
	if tp.Status != model.OrderStatusFilled {
		t.Fatalf("expected take-profit FILLED, got %s", tp.Status)
	}
	pr, _ := e.GetOrder(protect.OrderID)
	if pr.Status != model.OrderStatusCancelled {
		t.Errorf("expected sibling stop CANCELLED, got %s", pr.Status)
	}
	if e.instrument("X").stops.len() != 0 {
		t.Errorf("cancelled sibling must leave the dormant set")
	}
}

func TestOCOStopLegWinsCancelsLimit(t *testing.T) {
	e, _ := newTestEngine(t)

	// liquidity for the triggered stop to sell into
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 94, 10))

	takeProfit := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeLimit, Quantity: q(10), Price: d(105),
		OCOGroupID: "g1",
	})
	protect := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(10), StopPrice: d(95),
		OCOGroupID: "g1",
	})

	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 95, 5))
	mustPlace(t, e, limitReq("X", model.OrderSideSell, 95, 5))

	pr, _ := e.GetOrder(protect.OrderID)
	if pr.Status != model.OrderStatusFilled {
		t.Fatalf("expected triggered stop FILLED, got %s", pr.Status)
	}
	tp, _ := e.GetOrder(takeProfit.OrderID)
	if tp.Status != model.OrderStatusCancelled {
		t.Errorf("expected sibling limit CANCELLED, got %s", tp.Status)
	}
	// the cancelled limit must be off the book
	if _, asks := e.Snapshot("X", 10); len(asks) != 0 {
		t.Errorf("cancelled OCO leg still resting: %+v", asks)
	}
}

func TestOCOTakerLegResolvesGroup(t *testing.T) {
	e, _ := newTestEngine(t)

	mustPlace(t, e, limitReq("X", model.OrderSideSell, 100, 5))

	dormant := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(5), StopPrice: d(90),
		OCOGroupID: "g1",
	})
	taker := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideBuy,
		Type: model.OrderTypeLimit, Quantity: q(5), Price: d(100),
		OCOGroupID: "g1",
	})

	if taker.Status != model.OrderStatusFilled {
		t.Fatalf("expected taker leg FILLED, got %s", taker.Status)
	}
	got, _ := e.GetOrder(dormant.OrderID)
	if got.Status != model.OrderStatusCancelled {
		t.Errorf("expected dormant sibling CANCELLED, got %s", got.Status)
	}
}

func TestOCOResolutionIsOneShot(t *testing.T) {
	e, _ := newTestEngine(t)

	a := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeLimit, Quantity: q(10), Price: d(100),
		OCOGroupID: "g1",
	})

	// partial fill resolves the group; further fills of the survivor must
	// not re-run resolution
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 100, 3))
	if len(e.instrument("X").oco) != 0 {
		t.Fatalf("group must be discarded on first execution")
	}
	mustPlace(t, e, limitReq("X", model.OrderSideBuy, 100, 7))

	got, _ := e.GetOrder(a.OrderID)
	if got.Status != model.OrderStatusFilled {
		t.Errorf("survivor must keep trading, got %s", got.Status)
	}
}

func TestOCOCancelOneLegLeavesOther(t *testing.T) {
	e, _ := newTestEngine(t)

	a := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeLimit, Quantity: q(10), Price: d(105),
		OCOGroupID: "g1",
	})
	b := mustPlace(t, e, &model.OrderRequest{
		Account: "a", Symbol: "X", Side: model.OrderSideSell,
		Type: model.OrderTypeStop, Quantity: q(10), StopPrice: d(95),
		OCOGroupID: "g1",
	})

	// explicit cancel of one leg does not resolve the group for the other
	if !e.CancelOrder(context.Background(), a.OrderID) {
		t.Fatalf("expected cancel of leg a")
	}
	got, _ := e.GetOrder(b.OrderID)
	if got.Status != model.OrderStatusPending {
		t.Errorf("sibling must survive an explicit cancel, got %s", got.Status)
	}
}
