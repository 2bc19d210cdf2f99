package orderbook

// Fill is one matched quantity slice against a resting maker order.
type Fill struct {
	MakerOrderID string
	MakerAccount string
	Price        float64
	Qty          int64
	// MakerDone is true when the maker order left the book with this fill,
	// hidden iceberg reserve included.
	MakerDone bool
}

// Level is one aggregated price level in a depth snapshot. Qty counts
// disclosed quantity only.
type Level struct {
	Price float64
	Qty   int64
}
