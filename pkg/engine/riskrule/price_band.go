package riskrule

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/engine/market"
	"github.com/joripage/matching-engine/pkg/engine/model"
)

type priceBand struct {
	floor decimal.Decimal
	ceil  decimal.Decimal
}

// PriceBandRule rejects priced orders outside a per-symbol floor/ceiling
// band. Symbols without a band are unconstrained.
type PriceBandRule struct {
	mu    sync.RWMutex
	bands map[string]priceBand
}

func NewPriceBandRule() *PriceBandRule {
	return &PriceBandRule{bands: make(map[string]priceBand)}
}

func (r *PriceBandRule) SetBand(symbol string, floor, ceil decimal.Decimal) {
	r.mu.Lock()
	r.bands[symbol] = priceBand{floor: floor, ceil: ceil}
	r.mu.Unlock()
}

func (r *PriceBandRule) Check(req *model.OrderRequest, _ *market.Instrument) error {
	r.mu.RLock()
	band, ok := r.bands[req.Symbol]
	r.mu.RUnlock()
	if !ok || !req.Price.IsPositive() {
		return nil
	}
	if req.Price.LessThan(band.floor) || req.Price.GreaterThan(band.ceil) {
		return fmt.Errorf("price %s outside band [%s, %s]", req.Price, band.floor, band.ceil)
	}
	return nil
}
