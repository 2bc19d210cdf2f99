package worker

import (
	"context"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/engine/repo"
	"github.com/joripage/matching-engine/pkg/tradestream"
)

// Worker drains the trade topic into postgres. Writes retry with
// exponential backoff and rely on ON CONFLICT DO NOTHING for replay, so a
// crash between write and offset commit cannot double-apply a trade.
type Worker struct {
	trades repo.ITrade
	log    *zap.Logger
}

func New(r repo.IRepo, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		trades: r.Trade(),
		log:    log,
	}
}

// Run consumes trade batches until ctx is done.
func (w *Worker) Run(ctx context.Context, consumer *tradestream.Consumer) error {
	return consumer.Run(ctx, w.handleBatch)
}

func (w *Worker) handleBatch(ctx context.Context, trades []*model.Trade) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // retry until durable
	boff := backoff.WithContext(b, ctx)
	err := backoff.Retry(func() error {
		if err := w.trades.BulkCreate(ctx, trades); err != nil {
			w.log.Error("persist trades", zap.Int("count", len(trades)), zap.Error(err))
			return err
		}
		return nil
	}, boff)
	return err
}
