package market

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const instrumentKeyPrefix = "instrument:"

// RedisStore reads instrument metadata from a redis hash per symbol, so an
// operator can halt or resume an instrument without redeploying the engine.
// Fields: tick_size, lot_size, status.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) key(symbol string) string {
	return instrumentKeyPrefix + symbol
}

func (s *RedisStore) Instrument(ctx context.Context, symbol string) (*Instrument, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(symbol)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrUnknownInstrument
	}

	tick, err := decimal.NewFromString(fields["tick_size"])
	if err != nil {
		return nil, fmt.Errorf("instrument %s: bad tick_size: %w", symbol, err)
	}
	lot, err := decimal.NewFromString(fields["lot_size"])
	if err != nil {
		return nil, fmt.Errorf("instrument %s: bad lot_size: %w", symbol, err)
	}

	return &Instrument{
		Symbol:   symbol,
		TickSize: tick,
		LotSize:  lot,
		Status:   Status(fields["status"]),
	}, nil
}

// Upsert writes instrument metadata back to redis.
func (s *RedisStore) Upsert(ctx context.Context, inst *Instrument) error {
	return s.rdb.HSet(ctx, s.key(inst.Symbol),
		"tick_size", inst.TickSize.String(),
		"lot_size", inst.LotSize.String(),
		"status", string(inst.Status),
	).Err()
}

// SetStatus flips just the trading status of an instrument.
func (s *RedisStore) SetStatus(ctx context.Context, symbol string, status Status) error {
	return s.rdb.HSet(ctx, s.key(symbol), "status", string(status)).Err()
}

// IsTradable implements the engine's market-status gate. Redis errors
// propagate so the engine's default-reject policy applies.
func (s *RedisStore) IsTradable(ctx context.Context, symbol string) (bool, error) {
	inst, err := s.Instrument(ctx, symbol)
	if err != nil {
		if err == ErrUnknownInstrument {
			return false, nil
		}
		return false, err
	}
	return inst.Tradable(), nil
}
