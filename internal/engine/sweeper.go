package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
	"github.com/Dhanu0746/Zerodha-clone/internal/metrics"
)

// Sweeper matches resting limit orders against reference-price ticks. It
// runs one sweep per symbol at a time: ticks and admission kicks funnel
// through a buffered channel so sweeps never run concurrently for the
// whole book.
type Sweeper struct {
	engine  *Engine
	ledger  *ledger.Store
	books   *BookManager
	metrics *metrics.Engine
	log     *slog.Logger

	kicks chan domain.PriceTick
}

// NewSweeper creates a Sweeper. m may be nil.
func NewSweeper(engine *Engine, store *ledger.Store, books *BookManager, m *metrics.Engine, log *slog.Logger) *Sweeper {
	return &Sweeper{
		engine:  engine,
		ledger:  store,
		books:   books,
		metrics: m,
		log:     log,
		kicks:   make(chan domain.PriceTick, 256),
	}
}

// Run drains sweep requests until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-s.kicks:
			s.Sweep(ctx, tick)
		}
	}
}

// OnTick queues a sweep for a fresh reference price. Drops the request if
// the queue is full; the next tick retries the same book.
func (s *Sweeper) OnTick(tick domain.PriceTick) {
	select {
	case s.kicks <- tick:
	default:
		s.log.Warn("sweep queue full, dropping tick", "symbol", tick.Symbol)
	}
}

// Sweep scans the symbol's resting limit orders oldest first and fills
// every order the reference price crosses. A failing order is logged and
// skipped so one account's problem never stalls the rest of the book.
func (s *Sweeper) Sweep(ctx context.Context, tick domain.PriceTick) {
	book := s.books.GetOrCreate(tick.Symbol)

	// Best-level short circuit: if neither side crosses, the scan is
	// guaranteed empty.
	if !s.anyEligible(book, tick.Price) {
		return
	}

	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
	}

	for _, o := range s.ledger.OpenLimitOrders(tick.Symbol) {
		if ctx.Err() != nil {
			return
		}
		if !Eligible(o.Side, o.LimitPrice, tick.Price) {
			continue
		}

		filled, err := s.engine.FillResting(ctx, o.OrderID, tick.Price)
		switch {
		case err == nil:
			if s.metrics != nil {
				s.metrics.SweepFills.Inc()
			}
			s.log.Info("resting order filled",
				"order_id", filled.OrderID,
				"symbol", filled.Symbol,
				"side", filled.Side,
				"limit_price_cents", filled.LimitPrice,
				"ref_price_cents", tick.Price,
			)
		case errors.Is(err, errNotEligible),
			errors.Is(err, domain.ErrOrderNotFound),
			errors.Is(err, domain.ErrOrderNotCancellable):
			// Lost the race to a cancel or concurrent fill.
		default:
			s.log.Warn("sweep fill failed",
				"order_id", o.OrderID,
				"symbol", o.Symbol,
				"error", err,
			)
		}
	}
}

func (s *Sweeper) anyEligible(book *OrderBook, refPrice int64) bool {
	if bid, ok := book.BestBid(); ok && refPrice <= bid.Price {
		return true
	}
	if ask, ok := book.BestAsk(); ok && refPrice >= ask.Price {
		return true
	}
	return false
}
