package riskrule

import (
	"fmt"

	"github.com/joripage/matching-engine/pkg/engine/market"
	"github.com/joripage/matching-engine/pkg/engine/model"
)

// LotSizeRule rejects orders whose quantity is not a multiple of the
// instrument's lot size.
type LotSizeRule struct{}

func (LotSizeRule) Check(req *model.OrderRequest, inst *market.Instrument) error {
	if !inst.LotSize.IsPositive() {
		return nil
	}
	if !req.Quantity.Mod(inst.LotSize).IsZero() {
		return fmt.Errorf("quantity %s violates lot size %s", req.Quantity, inst.LotSize)
	}
	if req.DisplayQuantity.IsPositive() && !req.DisplayQuantity.Mod(inst.LotSize).IsZero() {
		return fmt.Errorf("display quantity %s violates lot size %s", req.DisplayQuantity, inst.LotSize)
	}
	return nil
}
