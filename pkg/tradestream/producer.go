package tradestream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type ProducerConfig struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	BatchTimeout time.Duration
}

// tradeWriter is the kafka surface the producer needs.
type tradeWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes trades to Kafka keyed by trade id, so downstream
// consumers can deduplicate replays. OnTrade never blocks the matching
// critical section: trades land in an unbounded spill queue and a
// background goroutine writes them in order, retrying with exponential
// backoff until durable. No trade is ever dropped; while the broker is
// unreachable the queue grows and drains on recovery.
type Producer struct {
	w   tradeWriter
	log *zap.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*model.Trade
	closed bool

	done chan struct{}
}

func NewProducer(cfg ProducerConfig, log *zap.Logger) *Producer {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}, log)
}

func newProducer(w tradeWriter, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Producer{
		w:    w,
		log:  log,
		done: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// OnTrade implements the engine's TradeSink.
func (p *Producer) OnTrade(trade *model.Trade) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Error("trade after producer close", zap.String("trade_id", trade.TradeID))
		return
	}
	p.queue = append(p.queue, trade)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *Producer) run() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		batch := p.queue
		p.queue = nil
		closed := p.closed
		p.mu.Unlock()

		if closed && len(batch) == 0 {
			close(p.done)
			return
		}
		for _, trade := range batch {
			p.publish(trade)
		}
	}
}

func (p *Producer) publish(trade *model.Trade) {
	value, err := json.Marshal(trade)
	if err != nil {
		p.log.Error("marshal trade", zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(trade.TradeID),
		Value: value,
	}

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 0 // retry until durable
	err = backoff.Retry(func() error {
		return p.w.WriteMessages(context.Background(), msg)
	}, boff)
	if err != nil {
		p.log.Error("publish trade", zap.String("trade_id", trade.TradeID), zap.Error(err))
	}
}

// Close drains queued trades and shuts the writer down.
func (p *Producer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	<-p.done
	return p.w.Close()
}
