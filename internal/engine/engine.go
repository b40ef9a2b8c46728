package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
	"github.com/Dhanu0746/Zerodha-clone/internal/metrics"
)

// Publisher receives domain events after a transaction commits. Publishing
// is a best-effort side channel: implementations must not block and their
// failures never roll back the committed trade.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, evt domain.OrderEvent)
	PublishPortfolio(ctx context.Context, snap domain.PortfolioSnapshot)
}

// Journal records committed order transitions and fills for the audit
// trail. Best effort, post-commit.
type Journal interface {
	RecordOrder(o *domain.Order)
	RecordFill(orderID string, f *domain.Fill)
}

// notionalOf multiplies price by qty in cents, reporting overflow instead
// of wrapping. Both inputs are non-negative for every admissible order.
func notionalOf(price, qty int64) (int64, bool) {
	if price <= 0 || qty <= 0 {
		return 0, price >= 0 && qty >= 0
	}
	if price > math.MaxInt64/qty {
		return 0, false
	}
	return price * qty, true
}

// errNotEligible signals that a resting order stopped crossing the
// reference price between the sweep scan and its transaction. The sweeper
// skips it silently.
var errNotEligible = errors.New("not eligible")

// Engine is the order-lifecycle state machine: it decides immediate
// execution versus resting, computes fill prices and fees, and mutates the
// ledger atomically. It holds no persistent state of its own.
//
// Fill price rule: market (taker) fills execute at the oracle reference
// price observed at admission; resting limit (maker) fills execute at the
// order's own limit price.
type Engine struct {
	ledger    *ledger.Store
	books     *BookManager
	symbols   *domain.SymbolRegistry
	fees      domain.FeeSchedule
	publisher Publisher
	journal   Journal
	metrics   *metrics.Engine
}

// NewEngine creates an Engine. publisher, journal, and m may be nil.
func NewEngine(
	store *ledger.Store,
	books *BookManager,
	symbols *domain.SymbolRegistry,
	fees domain.FeeSchedule,
	publisher Publisher,
	journal Journal,
	m *metrics.Engine,
) *Engine {
	return &Engine{
		ledger:    store,
		books:     books,
		symbols:   symbols,
		fees:      fees,
		publisher: publisher,
		journal:   journal,
		metrics:   m,
	}
}

// Admit executes a validated order. Market orders fill immediately at the
// reference price resolved during validation; limit orders reserve funds
// (buy) or commit holding quantity (sell) and rest open. Affordability is
// re-checked inside the transaction to close the race between validation
// and execution. The admission is all-or-nothing: the caller receives
// either a committed order or a specific error.
func (e *Engine) Admit(ctx context.Context, v *ValidatedOrder) (*domain.Order, error) {
	now := time.Now()
	var admitted *domain.Order

	err := e.ledger.Update(ctx, v.AccountID, func(tx *ledger.Tx) error {
		o := &domain.Order{
			OrderID:    uuid.New().String(),
			AccountID:  v.AccountID,
			Symbol:     v.Symbol,
			Side:       v.Side,
			Kind:       v.Kind,
			Quantity:   v.Quantity,
			LimitPrice: v.LimitPrice,
			Status:     domain.OrderStatusOpen,
			CreatedAt:  now,
			Fills:      []*domain.Fill{},
		}

		switch v.Kind {
		case domain.OrderKindMarket:
			o.Role = domain.RoleTaker
			if err := e.settleFill(tx, o, v.RefPrice, o.Quantity, now); err != nil {
				return err
			}
		case domain.OrderKindLimit:
			o.Role = domain.RoleMaker
			if v.Side == domain.OrderSideBuy {
				notional, ok := notionalOf(v.LimitPrice, v.Quantity)
				if !ok {
					return domain.ErrInternalInconsistency
				}
				if notional > tx.Account.AvailableCash() {
					return domain.ErrInsufficientFunds
				}
				tx.ReserveCash(notional)
			} else {
				h := tx.Account.Holding(v.Symbol)
				if h == nil || h.AvailableQuantity() < v.Quantity {
					return domain.ErrInsufficientHoldings
				}
				h.CommittedQuantity += v.Quantity
			}
		}

		tx.CreateOrder(o)
		admitted = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.symbols.Register(admitted.Symbol)
	if admitted.IsOpen() {
		book := e.books.GetOrCreate(admitted.Symbol)
		book.Insert(admitted)
		// The insert happens after the commit, so a sweep driven by the
		// ledger's open-order index can fill the order first and its
		// book.Remove finds nothing. Re-read the committed status and prune
		// the entry if the order already went terminal; any later terminal
		// transition removes its entry itself.
		if cur, err := e.ledger.GetOrder(admitted.OrderID); err != nil || !cur.IsOpen() {
			book.Remove(admitted.OrderID)
		}
	}

	e.afterCommit(ctx, admitted)
	if e.metrics != nil {
		e.metrics.OrdersPlaced.WithLabelValues(string(admitted.Side), string(admitted.Kind)).Inc()
	}
	return admitted, nil
}

// Cancel transitions an open order to cancelled and releases its
// reservation. Only open orders are cancellable; once a fill has
// committed, cancel fails rather than undoing it.
func (e *Engine) Cancel(ctx context.Context, orderID, accountID string) (*domain.Order, error) {
	// Ownership check before opening the transaction; tx.Order re-checks
	// under the account lock.
	existing, err := e.ledger.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if existing.AccountID != accountID {
		return nil, domain.ErrOrderNotFound
	}

	now := time.Now()
	var cancelled *domain.Order

	err = e.ledger.Update(ctx, accountID, func(tx *ledger.Tx) error {
		o, err := tx.Order(orderID)
		if err != nil {
			return err
		}
		if !o.IsOpen() {
			return domain.ErrOrderNotCancellable
		}

		remaining := o.RemainingQuantity()
		if o.Side == domain.OrderSideBuy {
			tx.ReserveCash(-o.LimitPrice * remaining)
		} else {
			h := tx.Account.Holding(o.Symbol)
			if h != nil {
				h.CommittedQuantity -= remaining
			}
		}

		o.Status = domain.OrderStatusCancelled
		o.CancelledAt = &now
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.books.GetOrCreate(cancelled.Symbol).Remove(cancelled.OrderID)
	e.afterCommit(ctx, cancelled)
	if e.metrics != nil {
		e.metrics.OrdersCancelled.Inc()
	}
	return cancelled, nil
}

// FillResting executes a resting limit order that the sweeper found
// eligible against refPrice. Eligibility and open status are re-checked
// inside the transaction so a concurrent cancel or fill wins cleanly.
func (e *Engine) FillResting(ctx context.Context, orderID string, refPrice int64) (*domain.Order, error) {
	existing, err := e.ledger.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var filled *domain.Order

	err = e.ledger.Update(ctx, existing.AccountID, func(tx *ledger.Tx) error {
		o, err := tx.Order(orderID)
		if err != nil {
			return err
		}
		if !o.IsOpen() {
			return domain.ErrOrderNotCancellable
		}
		if !Eligible(o.Side, o.LimitPrice, refPrice) {
			return errNotEligible
		}

		// Maker fills execute at the order's own limit price.
		if err := e.settleFill(tx, o, o.LimitPrice, o.RemainingQuantity(), now); err != nil {
			return err
		}
		filled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.books.GetOrCreate(filled.Symbol).Remove(filled.OrderID)
	e.afterCommit(ctx, filled)
	return filled, nil
}

// Eligible reports whether a resting limit order crosses the reference
// price: buys when ref ≤ limit, sells when ref ≥ limit.
func Eligible(side domain.OrderSide, limitPrice, refPrice int64) bool {
	if side == domain.OrderSideBuy {
		return refPrice <= limitPrice
	}
	return refPrice >= limitPrice
}

// settleFill applies one execution of qty at price to the staged account
// and order: balance and reservation deltas, holding upsert/delete with
// weighted-average cost, fee accrual, and the order's status transition.
func (e *Engine) settleFill(tx *ledger.Tx, o *domain.Order, price, qty int64, now time.Time) error {
	notional, ok := notionalOf(price, qty)
	if !ok {
		// A wrapped notional would debit or credit the wrong direction.
		return domain.ErrInternalInconsistency
	}
	fee := e.fees.Fee(notional, o.Role)

	switch o.Side {
	case domain.OrderSideBuy:
		if o.Kind == domain.OrderKindLimit {
			// Release the admission-time reservation for this slice.
			tx.ReserveCash(-o.LimitPrice * qty)
		}
		cost := notional + fee
		if cost > tx.Account.AvailableCash() {
			return domain.ErrInsufficientFunds
		}
		h := tx.Holding(o.Symbol)
		h.AvgCost = domain.WeightedAvgCost(h.Quantity, h.AvgCost, qty, price)
		h.Quantity += qty
		tx.AdjustBalance(-cost)

	case domain.OrderSideSell:
		h := tx.Account.Holding(o.Symbol)
		if h == nil {
			return domain.ErrInsufficientHoldings
		}
		if o.Kind == domain.OrderKindLimit {
			// Quantity was committed at admission.
			h.CommittedQuantity -= qty
		} else if h.AvailableQuantity() < qty {
			return domain.ErrInsufficientHoldings
		}
		h.Quantity -= qty
		if h.Quantity < 0 {
			return domain.ErrInsufficientHoldings
		}
		if h.Quantity == 0 && h.CommittedQuantity == 0 {
			tx.DeleteHolding(o.Symbol)
		}
		tx.AdjustBalance(notional - fee)
	}

	o.FilledQuantity += qty
	o.Fees += fee
	o.Fills = append(o.Fills, &domain.Fill{
		FillID:     uuid.New().String(),
		OrderID:    o.OrderID,
		Price:      price,
		Quantity:   qty,
		Fee:        fee,
		Role:       o.Role,
		ExecutedAt: now,
	})

	if o.FilledQuantity == o.Quantity {
		o.Status = domain.OrderStatusFilled
		o.FilledAt = &now
	} else {
		o.Status = domain.OrderStatusPartial
	}
	return nil
}

// afterCommit fans the committed order out to the audit journal and the
// notification publisher. Failures here are the side channel's problem;
// the trade is already committed.
func (e *Engine) afterCommit(ctx context.Context, o *domain.Order) {
	if e.journal != nil {
		e.journal.RecordOrder(o)
		for _, f := range o.Fills {
			e.journal.RecordFill(o.OrderID, f)
		}
	}
	if e.metrics != nil {
		if o.Status == domain.OrderStatusFilled {
			e.metrics.OrdersFilled.WithLabelValues(string(o.Role)).Inc()
			e.metrics.FeesCents.Add(float64(o.Fees))
		}
	}
	if e.publisher == nil {
		return
	}

	e.publisher.PublishOrderEvent(ctx, domain.OrderEvent{
		Type:      eventTypeFor(o),
		AccountID: o.AccountID,
		Order:     o,
		At:        time.Now(),
	})

	if acct, err := e.ledger.GetAccount(o.AccountID); err == nil {
		holdings := make([]*domain.Holding, 0, len(acct.Holdings))
		for _, h := range acct.Holdings {
			holdings = append(holdings, h)
		}
		e.publisher.PublishPortfolio(ctx, domain.PortfolioSnapshot{
			AccountID:    o.AccountID,
			Balance:      acct.Balance,
			ReservedCash: acct.ReservedCash,
			Holdings:     holdings,
			At:           time.Now(),
		})
	}
}

func eventTypeFor(o *domain.Order) domain.OrderEventType {
	switch o.Status {
	case domain.OrderStatusFilled:
		return domain.OrderEventFilled
	case domain.OrderStatusPartial:
		return domain.OrderEventPartial
	case domain.OrderStatusCancelled:
		return domain.OrderEventCancelled
	default:
		return domain.OrderEventPlaced
	}
}
