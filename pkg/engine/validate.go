package engine

import (
	"github.com/joripage/matching-engine/pkg/engine/model"
)

// validateRequest checks type-specific required fields before any state is
// created. Tick and lot granularity belong to the risk gate; this is purely
// structural consistency.
func validateRequest(req *model.OrderRequest) error {
	if req.Symbol == "" {
		return rejectf(RejectValidation, "symbol is required")
	}
	if req.Account == "" {
		return rejectf(RejectValidation, "account is required")
	}
	if req.Side != model.OrderSideBuy && req.Side != model.OrderSideSell {
		return rejectf(RejectValidation, "invalid side %q", req.Side)
	}
	switch req.TimeInForce {
	case "", model.OrderTimeInForceGTC, model.OrderTimeInForceIOC, model.OrderTimeInForceFOK:
	default:
		return rejectf(RejectValidation, "invalid time in force %q", req.TimeInForce)
	}
	if !req.Quantity.IsPositive() || !req.Quantity.IsInteger() {
		return rejectf(RejectValidation, "quantity must be a positive integer, got %s", req.Quantity)
	}

	switch req.Type {
	case model.OrderTypeMarket:
	case model.OrderTypeLimit:
		if !req.Price.IsPositive() {
			return rejectf(RejectValidation, "limit order requires a price")
		}
	case model.OrderTypeStop:
		if !req.StopPrice.IsPositive() {
			return rejectf(RejectValidation, "stop order requires a stop price")
		}
	case model.OrderTypeStopLimit:
		if !req.Price.IsPositive() {
			return rejectf(RejectValidation, "stop-limit order requires a limit price")
		}
		if !req.StopPrice.IsPositive() {
			return rejectf(RejectValidation, "stop-limit order requires a stop price")
		}
	case model.OrderTypeTrailingStop:
		if !req.TrailingOffset.IsPositive() {
			return rejectf(RejectValidation, "trailing-stop order requires a positive offset")
		}
	case model.OrderTypeIceberg:
		if !req.Price.IsPositive() {
			return rejectf(RejectValidation, "iceberg order requires a price")
		}
		if !req.DisplayQuantity.IsPositive() || !req.DisplayQuantity.IsInteger() {
			return rejectf(RejectValidation, "iceberg order requires a positive display quantity")
		}
		if req.DisplayQuantity.GreaterThan(req.Quantity) {
			return rejectf(RejectValidation, "display quantity %s exceeds total quantity %s",
				req.DisplayQuantity, req.Quantity)
		}
	default:
		return rejectf(RejectValidation, "unknown order type %q", req.Type)
	}

	return nil
}
