package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeMarket       OrderType = "MARKET"
	OrderTypeLimit        OrderType = "LIMIT"
	OrderTypeStop         OrderType = "STOP"
	OrderTypeStopLimit    OrderType = "STOP_LIMIT"
	OrderTypeTrailingStop OrderType = "TRAILING_STOP"
	OrderTypeIceberg      OrderType = "ICEBERG"
)

type OrderTimeInForce string

const (
	OrderTimeInForceGTC OrderTimeInForce = "GTC"
	OrderTimeInForceIOC OrderTimeInForce = "IOC"
	OrderTimeInForceFOK OrderTimeInForce = "FOK"
)

type OrderStatus string

const (
	// OrderStatusPending covers admitted orders not yet on the book:
	// dormant stop orders and orders mid-execution.
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusOpen            OrderStatus = "OPEN"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// Order is the engine's view of a submitted order. It is created once per
// submission and mutated only inside the owning instrument's critical
// section.
type Order struct {
	OrderID       string
	ClientOrderID string
	Account       string
	Symbol        string

	Side        OrderSide
	Type        OrderType
	TimeInForce OrderTimeInForce

	Price           decimal.Decimal
	StopPrice       decimal.Decimal
	TrailingOffset  decimal.Decimal
	DisplayQuantity decimal.Decimal
	OCOGroupID      string

	Quantity       decimal.Decimal
	CumQuantity    decimal.Decimal
	LeavesQuantity decimal.Decimal
	LastPrice      decimal.Decimal
	LastQuantity   decimal.Decimal

	Status       OrderStatus
	TransactTime time.Time
	UpdatedAt    time.Time
}

// IsTerminal reports whether the order reached a final state. Terminal
// orders are never resurrected.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusCancelled
}

func (o *Order) CanCancel() bool {
	return !o.IsTerminal()
}

// ApplyFill books one matched quantity slice against the order.
func (o *Order) ApplyFill(price, qty decimal.Decimal, at time.Time) {
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.Quantity.Sub(o.CumQuantity)
	o.LastPrice = price
	o.LastQuantity = qty
	o.UpdatedAt = at
}
