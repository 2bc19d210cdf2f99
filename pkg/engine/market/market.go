package market

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusHalted Status = "HALTED"
	StatusClosed Status = "CLOSED"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

// Instrument is the tradable-instrument metadata the engine's gates
// validate against.
type Instrument struct {
	Symbol   string
	TickSize decimal.Decimal
	LotSize  decimal.Decimal
	Status   Status
}

func (i *Instrument) Tradable() bool {
	return i.Status == StatusActive
}

// MetadataSource resolves instrument metadata.
type MetadataSource interface {
	Instrument(ctx context.Context, symbol string) (*Instrument, error)
}
