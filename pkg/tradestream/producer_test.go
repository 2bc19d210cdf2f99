package tradestream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	kafka "github.com/segmentio/kafka-go"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type fakeWriter struct {
	mu       sync.Mutex
	msgs     []kafka.Message
	failures int // initial WriteMessages calls to fail
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func (f *fakeWriter) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = string(m.Key)
	}
	return out
}

func TestProducerDeliversEveryTrade(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil)

	const n = 5000
	for i := 0; i < n; i++ {
		p.OnTrade(&model.Trade{TradeID: fmt.Sprintf("t-%d", i), Symbol: "X"})
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	keys := w.keys()
	if len(keys) != n {
		t.Fatalf("expected %d published trades, got %d", n, len(keys))
	}
	// in order, none dropped
	for i, key := range keys {
		if key != fmt.Sprintf("t-%d", i) {
			t.Fatalf("expected t-%d at %d, got %s", i, i, key)
		}
	}
}

func TestProducerRetriesUntilDurable(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newProducer(w, nil)

	p.OnTrade(&model.Trade{TradeID: "t-0", Symbol: "X"})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	keys := w.keys()
	if len(keys) != 1 || keys[0] != "t-0" {
		t.Fatalf("trade must survive transient broker failures, got %v", keys)
	}
}

func TestProducerCloseAfterBurst(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil)

	// enqueue a burst and close immediately; Close must drain the queue
	for i := 0; i < 1000; i++ {
		p.OnTrade(&model.Trade{TradeID: fmt.Sprintf("b-%d", i), Symbol: "X"})
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := len(w.keys()); got != 1000 {
		t.Fatalf("expected 1000 drained trades, got %d", got)
	}

	// a trade after close is refused, not queued forever
	p.OnTrade(&model.Trade{TradeID: "late", Symbol: "X"})
	if got := len(w.keys()); got != 1000 {
		t.Fatalf("trade after close must not publish, got %d", got)
	}
}
