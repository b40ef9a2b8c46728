package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/engine"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
)

// ValidOrderStatuses lists the status filter values accepted by ListOrders.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusOpen:      true,
	domain.OrderStatusPartial:   true,
	domain.OrderStatusFilled:    true,
	domain.OrderStatusCancelled: true,
}

// OrderService handles order placement, retrieval, cancellation, and
// listing. Placement runs validation, admits through the engine, and
// kicks a sweep so a marketable limit order fills without waiting for the
// next price tick.
type OrderService struct {
	validator *engine.Validator
	engine    *engine.Engine
	sweeper   *engine.Sweeper
	ledger    *ledger.Store
}

func NewOrderService(
	validator *engine.Validator,
	eng *engine.Engine,
	sweeper *engine.Sweeper,
	store *ledger.Store,
) *OrderService {
	return &OrderService{
		validator: validator,
		engine:    eng,
		sweeper:   sweeper,
		ledger:    store,
	}
}

// PlaceOrder validates and admits an order. Market orders return filled;
// limit orders return open and are immediately swept against the
// reference price observed during validation.
func (s *OrderService) PlaceOrder(ctx context.Context, req engine.OrderRequest) (*domain.Order, error) {
	v, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	order, err := s.engine.Admit(ctx, v)
	if err != nil {
		return nil, err
	}

	if order.IsOpen() && s.sweeper != nil {
		s.sweeper.OnTick(domain.PriceTick{
			Symbol: order.Symbol,
			Price:  v.RefPrice,
			At:     time.Now(),
		})
	}
	return order, nil
}

// GetOrder retrieves an order owned by the account.
func (s *OrderService) GetOrder(orderID, accountID string) (*domain.Order, error) {
	o, err := s.ledger.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o.AccountID != accountID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// CancelOrder cancels an open order owned by the account.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, accountID string) (*domain.Order, error) {
	if !s.ledger.Exists(accountID) {
		return nil, domain.ErrAccountNotFound
	}
	return s.engine.Cancel(ctx, orderID, accountID)
}

// ListOrders returns a paginated list of the account's orders, newest
// first, with an optional status filter.
func (s *OrderService) ListOrders(accountID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if !s.ledger.Exists(accountID) {
		return nil, 0, domain.ErrAccountNotFound
	}

	if status != nil && !ValidOrderStatuses[*status] {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: open, partial, filled, cancelled", *status),
		}
	}

	if page < 1 {
		return nil, 0, &domain.ValidationError{Message: "page must be >= 1"}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{Message: "limit must be between 1 and 100"}
	}

	orders, total := s.ledger.ListByAccount(accountID, status, page, limit)
	return orders, total, nil
}
