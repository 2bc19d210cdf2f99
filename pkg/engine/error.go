package engine

import (
	"errors"
	"fmt"
)

// RejectKind classifies why a submission was refused.
type RejectKind int

const (
	// RejectValidation: malformed or internally inconsistent parameters.
	RejectValidation RejectKind = iota
	// RejectMarketState: instrument halted, closed or unknown.
	RejectMarketState
	// RejectRisk: refused by the risk gate, including gate timeout.
	RejectRisk
	// RejectLiquidity: FOK order that cannot be filled in full.
	RejectLiquidity
)

func (k RejectKind) String() string {
	switch k {
	case RejectValidation:
		return "validation"
	case RejectMarketState:
		return "market_state"
	case RejectRisk:
		return "risk"
	case RejectLiquidity:
		return "liquidity"
	}
	return "unknown"
}

// RejectError is returned by PlaceOrder when a submission is refused.
type RejectError struct {
	Kind   RejectKind
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("order rejected (%s): %s", e.Kind, e.Reason)
}

func rejectf(kind RejectKind, format string, args ...any) error {
	return &RejectError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// RejectKindOf extracts the reject kind from an error, ok=false when the
// error is not a rejection.
func RejectKindOf(err error) (RejectKind, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}
