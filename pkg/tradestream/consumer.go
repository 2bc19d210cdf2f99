package tradestream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type ConsumerConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	GroupID   string   `yaml:"group_id"`
	BatchSize int      `yaml:"batch_size"`
	BatchWait time.Duration
}

// Consumer reads trade batches from Kafka. Offsets are committed only after
// the handler succeeds, so delivery is at-least-once; handlers must be
// idempotent (trade id is the key).
type Consumer struct {
	r   *kafka.Reader
	cfg ConsumerConfig
	log *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, log *zap.Logger) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchWait <= 0 {
		cfg.BatchWait = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
			GroupID: cfg.GroupID,
			MaxWait: cfg.BatchWait,
		}),
		cfg: cfg,
		log: log,
	}
}

// Run fetches trades in batches and hands them to fn until ctx is done. A
// failing handler blocks redelivery of the batch rather than skipping it.
func (c *Consumer) Run(ctx context.Context, fn func(ctx context.Context, trades []*model.Trade) error) error {
	for {
		batch, msgs, err := c.fetchBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("fetch trades", zap.Error(err))
			continue
		}
		if len(batch) == 0 {
			continue
		}

		for {
			if err := fn(ctx, batch); err == nil {
				break
			} else if ctx.Err() != nil {
				return ctx.Err()
			} else {
				c.log.Error("handle trade batch", zap.Int("size", len(batch)), zap.Error(err))
				time.Sleep(time.Second)
			}
		}

		if err := c.r.CommitMessages(ctx, msgs...); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("commit offsets", zap.Error(err))
		}
	}
}

func (c *Consumer) fetchBatch(ctx context.Context) ([]*model.Trade, []kafka.Message, error) {
	var (
		trades []*model.Trade
		msgs   []kafka.Message
	)

	deadline := time.Now().Add(c.cfg.BatchWait)
	for len(msgs) < c.cfg.BatchSize {
		fetchCtx, cancel := context.WithDeadline(ctx, deadline)
		msg, err := c.r.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break // partial batch on deadline
			}
			return nil, nil, err
		}

		var trade model.Trade
		if err := json.Unmarshal(msg.Value, &trade); err != nil {
			c.log.Error("unmarshal trade", zap.Error(err))
			msgs = append(msgs, msg) // poison message: commit past it
			continue
		}
		trades = append(trades, &trade)
		msgs = append(msgs, msg)
	}
	return trades, msgs, nil
}

func (c *Consumer) Close() error {
	return c.r.Close()
}
