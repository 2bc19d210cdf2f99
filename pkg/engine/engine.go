package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/journal"
	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

type Config struct {
	// GateTimeout bounds each risk/market-status gate call. A gate that
	// times out rejects the order, never admits it.
	GateTimeout time.Duration
}

const defaultGateTimeout = 500 * time.Millisecond

// Engine admits orders, runs price-time-priority matching per instrument
// and drives the stop, iceberg and OCO state machines. It is a library
// component: transports, settlement and fees live behind the gate and sink
// interfaces.
type Engine struct {
	cfg      Config
	log      *zap.Logger
	risk     RiskGate
	market   MarketStatusGate
	trades   TradeSink
	statuses StatusSink
	journal  *journal.Journal

	instruments  sync.Map // symbol -> *instrument
	orderSymbols sync.Map // orderID -> symbol
}

func New(cfg Config, risk RiskGate, market MarketStatusGate, trades TradeSink, statuses StatusSink, log *zap.Logger) *Engine {
	if cfg.GateTimeout <= 0 {
		cfg.GateTimeout = defaultGateTimeout
	}
	if trades == nil {
		trades = nopTradeSink{}
	}
	if statuses == nil {
		statuses = nopStatusSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		log:      log,
		risk:     risk,
		market:   market,
		trades:   trades,
		statuses: statuses,
		journal:  journal.New(),
	}
}

// Journal exposes the order event history for downstream consumers.
func (e *Engine) Journal() *journal.Journal {
	return e.journal
}

func (e *Engine) instrument(symbol string) *instrument {
	if v, ok := e.instruments.Load(symbol); ok {
		return v.(*instrument)
	}
	actual, _ := e.instruments.LoadOrStore(symbol, newInstrument(symbol))
	return actual.(*instrument)
}

// GetOrder returns the engine's current view of an order.
func (e *Engine) GetOrder(orderID string) (*model.Order, bool) {
	v, ok := e.orderSymbols.Load(orderID)
	if !ok {
		return nil, false
	}
	inst := e.instrument(v.(string))
	inst.mu.Lock()
	defer inst.mu.Unlock()
	o, ok := inst.orders[orderID]
	if !ok {
		return nil, false
	}
	snap := *o
	return &snap, true
}

// Snapshot returns the aggregated visible depth of an instrument.
func (e *Engine) Snapshot(symbol string, depth int) (bids, asks []orderbook.Level) {
	inst := e.instrument(symbol)
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.book.Snapshot(depth)
}

// PlaceOrder admits one submission. Gate and validation rejects return a
// *RejectError and create no state; a FOK that cannot fill returns the
// cancelled order together with a liquidity reject. Everything else returns
// the order in its post-matching status.
func (e *Engine) PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := e.checkMarket(ctx, req.Symbol); err != nil {
		return nil, err
	}
	if err := e.checkRisk(ctx, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	inst := e.instrument(req.Symbol)
	inst.mu.Lock()
	defer inst.mu.Unlock()

	order := newOrder(req)
	if !e.journal.TryTrack(order.OrderID, order.ClientOrderID) {
		return nil, rejectf(RejectValidation, "duplicate client order id %q", req.ClientOrderID)
	}
	inst.orders[order.OrderID] = order
	e.orderSymbols.Store(order.OrderID, inst.symbol)
	e.record(order, model.ExecTypeNew)
	if order.OCOGroupID != "" {
		inst.oco[order.OCOGroupID] = append(inst.oco[order.OCOGroupID], order.OrderID)
	}

	var err error
	switch order.Type {
	case model.OrderTypeStop, model.OrderTypeStopLimit, model.OrderTypeTrailingStop:
		err = e.registerStop(inst, order)
	default:
		err = e.execute(inst, order)
		e.drainStops(inst)
	}

	// the live order keeps mutating under the instrument lock; callers get
	// a snapshot
	snap := *order
	return &snap, err
}

// CancelOrder withdraws a live order. It is idempotent: cancelling an
// already-filled or already-cancelled order is a no-op returning false, not
// an error — a cancel racing a fill loses silently.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) bool {
	v, ok := e.orderSymbols.Load(orderID)
	if !ok {
		return false
	}
	inst := e.instrument(v.(string))
	inst.mu.Lock()
	defer inst.mu.Unlock()

	order, ok := inst.orders[orderID]
	if !ok || order.IsTerminal() {
		return false
	}

	inst.book.Cancel(orderID)
	inst.stops.remove(orderID)
	e.transition(inst, order, model.OrderStatusCancelled, model.ExecTypeCanceled)
	return true
}

// CancelByClientID resolves a client order id and cancels the order.
func (e *Engine) CancelByClientID(ctx context.Context, clientOrderID string) bool {
	orderID := e.journal.OrderIDByClientID(clientOrderID)
	if orderID == "" {
		return false
	}
	return e.CancelOrder(ctx, orderID)
}

func newOrder(req *model.OrderRequest) *model.Order {
	now := req.TransactTime
	if now.IsZero() {
		now = time.Now()
	}
	tif := req.TimeInForce
	if tif == "" {
		tif = model.OrderTimeInForceGTC
	}
	return &model.Order{
		OrderID:         uuid.NewString(),
		ClientOrderID:   req.ClientOrderID,
		Account:         req.Account,
		Symbol:          req.Symbol,
		Side:            req.Side,
		Type:            req.Type,
		TimeInForce:     tif,
		Price:           req.Price,
		StopPrice:       req.StopPrice,
		TrailingOffset:  req.TrailingOffset,
		DisplayQuantity: req.DisplayQuantity,
		OCOGroupID:      req.OCOGroupID,
		Quantity:        req.Quantity,
		LeavesQuantity:  req.Quantity,
		Status:          model.OrderStatusPending,
		TransactTime:    now,
		UpdatedAt:       now,
	}
}

// registerStop parks a dormant order in the stop set. The order stays
// PENDING and never touches the book until triggered.
func (e *Engine) registerStop(inst *instrument, order *model.Order) error {
	entry := &stopEntry{
		orderID:   order.OrderID,
		side:      order.Side,
		typ:       order.Type,
		stopPrice: order.StopPrice.InexactFloat64(),
		offset:    order.TrailingOffset.InexactFloat64(),
	}
	if order.Type == model.OrderTypeTrailingStop {
		anchor, ok := inst.seedAnchor(order)
		if !ok {
			e.transition(inst, order, model.OrderStatusCancelled, model.ExecTypeCanceled)
			return rejectf(RejectValidation, "trailing-stop has no reference price to trail from")
		}
		entry.anchor = anchor
	}
	inst.stops.add(entry)
	return nil
}

// crossLimit is the price bound an active order crosses with.
func crossLimit(order *model.Order) float64 {
	if order.Type == model.OrderTypeMarket {
		return orderbook.MarketLimit(orderbook.Side(order.Side))
	}
	return order.Price.InexactFloat64()
}

// execute runs one active order through the crossing algorithm and settles
// its residual per time-in-force. Caller holds the instrument lock.
func (e *Engine) execute(inst *instrument, order *model.Order) error {
	side := orderbook.Side(order.Side)
	limit := crossLimit(order)
	qty := order.LeavesQuantity.IntPart()

	if order.TimeInForce == model.OrderTimeInForceFOK {
		if inst.book.AvailableQty(side, limit) < qty {
			e.transition(inst, order, model.OrderStatusCancelled, model.ExecTypeCanceled)
			return rejectf(RejectLiquidity, "insufficient liquidity for FOK quantity %d", qty)
		}
	}

	fills, leftover := inst.book.Cross(side, qty, limit)
	e.applyFills(inst, order, fills)

	switch {
	case leftover == 0:
		e.transition(inst, order, model.OrderStatusFilled, model.ExecTypeTrade)
	case order.Type == model.OrderTypeMarket || order.TimeInForce == model.OrderTimeInForceIOC:
		// remainder never rests
		e.transition(inst, order, model.OrderStatusCancelled, model.ExecTypeCanceled)
	default:
		e.rest(inst, order, leftover)
	}
	return nil
}

// rest parks the unmatched GTC remainder on the book.
func (e *Engine) rest(inst *instrument, order *model.Order, leftover int64) {
	var bookOrder *orderbook.Order
	if order.Type == model.OrderTypeIceberg {
		bookOrder = orderbook.NewIcebergOrder(
			order.OrderID, inst.symbol, orderbook.Side(order.Side), order.Account,
			order.Price.InexactFloat64(), leftover, order.DisplayQuantity.IntPart(),
		)
	} else {
		bookOrder = &orderbook.Order{
			ID:      order.OrderID,
			Symbol:  inst.symbol,
			Side:    orderbook.Side(order.Side),
			Price:   order.Price.InexactFloat64(),
			Qty:     leftover,
			Account: order.Account,
		}
	}
	inst.book.Rest(bookOrder)

	if order.CumQuantity.IsPositive() {
		e.transition(inst, order, model.OrderStatusPartiallyFilled, model.ExecTypeNew)
	} else {
		e.transition(inst, order, model.OrderStatusOpen, model.ExecTypeNew)
	}
}

// applyFills turns book fills into trades, updates both sides, feeds every
// print to the stop monitor and resolves OCO groups of every executed leg.
func (e *Engine) applyFills(inst *instrument, taker *model.Order, fills []orderbook.Fill) {
	if len(fills) == 0 {
		return
	}

	now := time.Now()
	resolved := make(map[string]string) // OCO group -> surviving leg
	for _, f := range fills {
		price := decimal.NewFromFloat(f.Price)
		qty := decimal.NewFromInt(f.Qty)

		maker := inst.orders[f.MakerOrderID]
		trade := &model.Trade{
			TradeID:  uuid.NewString(),
			Symbol:   inst.symbol,
			Price:    price,
			Quantity: qty,
			TradedAt: now,
		}
		if taker.Side == model.OrderSideBuy {
			trade.BuyOrderID, trade.BuyAccount = taker.OrderID, taker.Account
			trade.SellOrderID, trade.SellAccount = f.MakerOrderID, f.MakerAccount
		} else {
			trade.BuyOrderID, trade.BuyAccount = f.MakerOrderID, f.MakerAccount
			trade.SellOrderID, trade.SellAccount = taker.OrderID, taker.Account
		}

		taker.ApplyFill(price, qty, now)
		if maker != nil {
			maker.ApplyFill(price, qty, now)
			if f.MakerDone || maker.LeavesQuantity.IsZero() {
				e.transition(inst, maker, model.OrderStatusFilled, model.ExecTypeTrade)
			} else {
				e.transition(inst, maker, model.OrderStatusPartiallyFilled, model.ExecTypeTrade)
			}
			if maker.OCOGroupID != "" {
				if _, ok := resolved[maker.OCOGroupID]; !ok {
					resolved[maker.OCOGroupID] = maker.OrderID
				}
			}
		}
		if !taker.LeavesQuantity.IsZero() {
			e.transition(inst, taker, model.OrderStatusPartiallyFilled, model.ExecTypeTrade)
		}

		inst.observePrint(f.Price)
		e.trades.OnTrade(trade)
	}

	if taker.OCOGroupID != "" {
		if _, ok := resolved[taker.OCOGroupID]; !ok {
			resolved[taker.OCOGroupID] = taker.OrderID
		}
	}
	for group, survivor := range resolved {
		e.resolveOCO(inst, group, survivor)
	}
}

// resolveOCO cancels every non-terminal sibling of an executed leg and
// discards the group. Resolution is one-shot.
func (e *Engine) resolveOCO(inst *instrument, groupID, survivorID string) {
	ids, ok := inst.oco[groupID]
	if !ok {
		return
	}
	delete(inst.oco, groupID)

	for _, id := range ids {
		if id == survivorID {
			continue
		}
		sibling, ok := inst.orders[id]
		if !ok || sibling.IsTerminal() {
			continue
		}
		inst.book.Cancel(id)
		inst.stops.remove(id)
		e.transition(inst, sibling, model.OrderStatusCancelled, model.ExecTypeCanceled)
	}
}

// drainStops executes queued triggered entries within the same critical
// section as the crossing that printed them. Each execution prints further
// trades whose prints may fire more entries; the loop runs until the
// cascade settles. Entries fired mid-crossing execute only after that
// crossing finished, in print order.
func (e *Engine) drainStops(inst *instrument) {
	for len(inst.triggered) > 0 {
		entry := inst.triggered[0]
		inst.triggered = inst.triggered[1:]

		order, ok := inst.orders[entry.orderID]
		if !ok || order.IsTerminal() {
			continue
		}
		// convert: stop-limit activates as a limit at its stored
		// price, stop and trailing-stop as market orders
		if entry.typ == model.OrderTypeStopLimit {
			order.Type = model.OrderTypeLimit
		} else {
			order.Type = model.OrderTypeMarket
		}
		e.record(order, model.ExecTypeTriggered)
		if err := e.execute(inst, order); err != nil {
			e.log.Warn("triggered order rejected",
				zap.String("order_id", order.OrderID),
				zap.String("symbol", inst.symbol),
				zap.Error(err))
		}
	}
}

// checkMarket consults the market-status gate with a bounded timeout and a
// default-reject policy: an unreachable gate never admits.
func (e *Engine) checkMarket(ctx context.Context, symbol string) error {
	if e.market == nil {
		return nil
	}
	gctx, cancel := context.WithTimeout(ctx, e.cfg.GateTimeout)
	defer cancel()

	ok, err := e.market.IsTradable(gctx, symbol)
	if err != nil {
		return rejectf(RejectMarketState, "market status unavailable for %s: %v", symbol, err)
	}
	if !ok {
		return rejectf(RejectMarketState, "instrument %s is not tradable", symbol)
	}
	return nil
}

func (e *Engine) checkRisk(ctx context.Context, req *model.OrderRequest) error {
	if e.risk == nil {
		return nil
	}
	gctx, cancel := context.WithTimeout(ctx, e.cfg.GateTimeout)
	defer cancel()

	if err := e.risk.Validate(gctx, req); err != nil {
		return rejectf(RejectRisk, "%v", err)
	}
	return nil
}

// transition moves an order to a new status and records the event. Callers
// guarantee the order is not terminal.
func (e *Engine) transition(inst *instrument, order *model.Order, status model.OrderStatus, execType model.OrderExecType) {
	old := order.Status
	order.Status = status
	order.UpdatedAt = time.Now()
	e.record(order, execType)
	if old != status {
		e.statuses.OnStatusChange(order, old, status)
	}
}

func (e *Engine) record(order *model.Order, execType model.OrderExecType) {
	e.journal.Record(order, execType, time.Now())
}
