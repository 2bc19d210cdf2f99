package engine

import (
	"context"

	"github.com/joripage/go_util/pkg/shardqueue"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

const (
	defaultNumShards = 16
	defaultQueueSize = 1_000_000
)

// Dispatcher funnels submissions through a sharded queue keyed by symbol,
// so one instrument's submissions are processed in admission order while
// instruments on different shards proceed in parallel.
type Dispatcher struct {
	engine *Engine
	sq     *shardqueue.Shardqueue
}

type submission struct {
	ctx  context.Context
	req  *model.OrderRequest
	done chan submitResult
}

type submitResult struct {
	order *model.Order
	err   error
}

func NewDispatcher(e *Engine, numShards, queueSize int) *Dispatcher {
	if numShards <= 0 {
		numShards = defaultNumShards
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		engine: e,
		sq:     shardqueue.NewShardQueue(numShards, queueSize),
	}
}

func (d *Dispatcher) Start() {
	d.sq.Start(func(msg interface{}) error {
		sub, ok := msg.(*submission)
		if !ok {
			return nil
		}
		order, err := d.engine.PlaceOrder(sub.ctx, sub.req)
		sub.done <- submitResult{order: order, err: err}
		return nil
	})
}

// Submit enqueues one submission and waits for its result.
func (d *Dispatcher) Submit(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	sub := &submission{ctx: ctx, req: req, done: make(chan submitResult, 1)}
	d.sq.Shard(req.Symbol, sub)

	select {
	case r := <-sub.done:
		return r.order, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
