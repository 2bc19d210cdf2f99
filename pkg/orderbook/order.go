package orderbook

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Order is a resting maker order. Price and quantity are kept in native
// types on the hot path; decimal conversion happens at the engine boundary.
type Order struct {
	ID      string
	Symbol  string
	Side    Side
	Price   float64
	Qty     int64 // disclosed remaining quantity
	Account string

	hiddenQty int64 // iceberg reserve, not visible to crossing
	sliceQty  int64 // iceberg disclosed slice size
}

// NewIcebergOrder builds a maker order that exposes only displayQty at a
// time, keeping the rest as hidden reserve.
func NewIcebergOrder(id, symbol string, side Side, account string, price float64, totalQty, displayQty int64) *Order {
	visible := displayQty
	if visible > totalQty {
		visible = totalQty
	}
	return &Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Qty:       visible,
		Account:   account,
		hiddenQty: totalQty - visible,
		sliceQty:  displayQty,
	}
}

// HiddenQty reports the remaining reserve of an iceberg order.
func (o *Order) HiddenQty() int64 {
	return o.hiddenQty
}

// replenish moves the next slice from reserve to the disclosed quantity.
// Caller must re-queue the order at the tail of its price level.
func (o *Order) replenish() {
	n := o.sliceQty
	if n > o.hiddenQty {
		n = o.hiddenQty
	}
	o.Qty = n
	o.hiddenQty -= n
}
