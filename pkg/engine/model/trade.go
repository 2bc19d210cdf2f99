package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable execution record, created exactly once per matched
// quantity slice. TradeID is the idempotency key for durable replay.
type Trade struct {
	TradeID     string          `gorm:"primaryKey" json:"trade_id"`
	Symbol      string          `gorm:"index" json:"symbol"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
	BuyAccount  string          `json:"buy_account"`
	SellAccount string          `json:"sell_account"`
	Price       decimal.Decimal `gorm:"type:numeric" json:"price"`
	Quantity    decimal.Decimal `gorm:"type:numeric" json:"quantity"`
	TradedAt    time.Time       `json:"traded_at"`
}

func (Trade) TableName() string {
	return "trades"
}
