package riskrule

import (
	"context"

	"github.com/joripage/matching-engine/pkg/engine/market"
	"github.com/joripage/matching-engine/pkg/engine/model"
)

// Rule is one pre-admission check over a submission and its instrument
// metadata.
type Rule interface {
	Check(req *model.OrderRequest, inst *market.Instrument) error
}

// Gate composes rules into the engine's RiskGate. Metadata lookup failure
// fails the check: the engine rejects on error, never admits by default.
type Gate struct {
	source market.MetadataSource
	rules  []Rule
}

func NewGate(source market.MetadataSource, rules ...Rule) *Gate {
	return &Gate{source: source, rules: rules}
}

func (g *Gate) Validate(ctx context.Context, req *model.OrderRequest) error {
	inst, err := g.source.Instrument(ctx, req.Symbol)
	if err != nil {
		return err
	}
	for _, rule := range g.rules {
		if err := rule.Check(req, inst); err != nil {
			return err
		}
	}
	return nil
}
