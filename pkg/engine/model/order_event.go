package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderExecType string

const (
	ExecTypeNew       OrderExecType = "New"
	ExecTypeTrade     OrderExecType = "Trade"
	ExecTypeCanceled  OrderExecType = "Canceled"
	ExecTypeTriggered OrderExecType = "Triggered"
)

// OrderEvent is one entry of an order's status history. EventID is unique
// per (order, sequence) so a replayed write cannot double-apply.
type OrderEvent struct {
	EventID       string          `gorm:"primaryKey" json:"event_id"`
	OrderID       string          `gorm:"index" json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	ExecType      OrderExecType   `json:"exec_type"`
	Status        OrderStatus     `json:"status"`
	Price         decimal.Decimal `gorm:"type:numeric" json:"price"`
	Quantity      decimal.Decimal `gorm:"type:numeric" json:"quantity"`
	CumQuantity   decimal.Decimal `gorm:"type:numeric" json:"cum_quantity"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (OrderEvent) TableName() string {
	return "order_events"
}

// NewOrderEvent snapshots an order into its next history entry.
func NewOrderEvent(o *Order, execType OrderExecType, seq int, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:       fmt.Sprintf("%s-%d", o.OrderID, seq),
		OrderID:       o.OrderID,
		ClientOrderID: o.ClientOrderID,
		Symbol:        o.Symbol,
		ExecType:      execType,
		Status:        o.Status,
		Price:         o.LastPrice,
		Quantity:      o.LastQuantity,
		CumQuantity:   o.CumQuantity,
		Timestamp:     ts,
	}
}
