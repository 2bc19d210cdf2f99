package riskrule

import (
	"fmt"

	"github.com/joripage/matching-engine/pkg/engine/market"
	"github.com/joripage/matching-engine/pkg/engine/model"
)

// TickSizeRule rejects priced orders whose limit or stop price is not a
// multiple of the instrument's tick size.
type TickSizeRule struct{}

func (TickSizeRule) Check(req *model.OrderRequest, inst *market.Instrument) error {
	if !inst.TickSize.IsPositive() {
		return nil
	}
	if req.Price.IsPositive() && !req.Price.Mod(inst.TickSize).IsZero() {
		return fmt.Errorf("price %s violates tick size %s", req.Price, inst.TickSize)
	}
	if req.StopPrice.IsPositive() && !req.StopPrice.Mod(inst.TickSize).IsZero() {
		return fmt.Errorf("stop price %s violates tick size %s", req.StopPrice, inst.TickSize)
	}
	return nil
}
