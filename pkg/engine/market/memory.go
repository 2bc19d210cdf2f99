package market

import (
	"context"
	"sync"
)

// Memory is an in-process instrument registry. It serves both as the
// MetadataSource for risk rules and as the engine's market-status gate.
type Memory struct {
	mu          sync.RWMutex
	instruments map[string]*Instrument
}

func NewMemory(instruments ...*Instrument) *Memory {
	m := &Memory{instruments: make(map[string]*Instrument)}
	for _, inst := range instruments {
		m.instruments[inst.Symbol] = inst
	}
	return m
}

func (m *Memory) Upsert(inst *Instrument) {
	m.mu.Lock()
	m.instruments[inst.Symbol] = inst
	m.mu.Unlock()
}

func (m *Memory) SetStatus(symbol string, status Status) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instruments[symbol]
	if !ok {
		return false
	}
	inst.Status = status
	return true
}

func (m *Memory) Instrument(ctx context.Context, symbol string) (*Instrument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instruments[symbol]
	if !ok {
		return nil, ErrUnknownInstrument
	}
	cp := *inst
	return &cp, nil
}

// IsTradable implements the engine's market-status gate. Unknown
// instruments are not tradable.
func (m *Memory) IsTradable(ctx context.Context, symbol string) (bool, error) {
	inst, err := m.Instrument(ctx, symbol)
	if err != nil {
		if err == ErrUnknownInstrument {
			return false, nil
		}
		return false, err
	}
	return inst.Tradable(), nil
}
