package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRequest is one client submission. Required fields depend on Type:
// limit/stop-limit/iceberg carry Price, stop/stop-limit carry StopPrice,
// trailing-stop carries TrailingOffset, iceberg carries DisplayQuantity.
type OrderRequest struct {
	ClientOrderID string
	Account       string
	Symbol        string

	Side        OrderSide
	Type        OrderType
	TimeInForce OrderTimeInForce

	Quantity        decimal.Decimal
	Price           decimal.Decimal
	StopPrice       decimal.Decimal
	TrailingOffset  decimal.Decimal
	DisplayQuantity decimal.Decimal
	OCOGroupID      string

	TransactTime time.Time
}
