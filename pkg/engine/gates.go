package engine

import (
	"context"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// RiskGate is consulted before admission. A non-nil error rejects the
// submission without any book mutation.
type RiskGate interface {
	Validate(ctx context.Context, req *model.OrderRequest) error
}

// MarketStatusGate decides whether an instrument currently trades.
type MarketStatusGate interface {
	IsTradable(ctx context.Context, symbol string) (bool, error)
}

// TradeSink receives every trade exactly once per matched quantity slice,
// inside the instrument's critical section. Implementations must not block;
// durable recording is decoupled and retried downstream.
type TradeSink interface {
	OnTrade(trade *model.Trade)
}

// StatusSink receives order status transitions for downstream bookkeeping.
type StatusSink interface {
	OnStatusChange(order *model.Order, old, new model.OrderStatus)
}

type nopTradeSink struct{}

func (nopTradeSink) OnTrade(*model.Trade) {}

type nopStatusSink struct{}

func (nopStatusSink) OnStatusChange(*model.Order, model.OrderStatus, model.OrderStatus) {}
