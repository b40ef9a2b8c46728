package engine

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
	"github.com/Dhanu0746/Zerodha-clone/internal/oracle"
)

var orderSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// MaxOrderQuantity bounds a single order. Together with the overflow check
// on the notional it keeps price*quantity inside int64 for any admissible
// order.
const MaxOrderQuantity = 1_000_000

// OrderRequest is the raw input for order admission. AccountID arrives
// already authenticated. LimitPrice is in dollars; it is required for
// limit orders and must be absent for market orders.
type OrderRequest struct {
	AccountID  string
	Symbol     string
	Side       domain.OrderSide
	Kind       domain.OrderKind
	Quantity   int64
	LimitPrice *float64
}

// ValidatedOrder is the admission-ready form of a request. RefPrice is the
// oracle observation taken during validation; the engine prices market
// fills with it so validation and execution agree on the notional.
type ValidatedOrder struct {
	AccountID  string
	Symbol     string
	Side       domain.OrderSide
	Kind       domain.OrderKind
	Quantity   int64
	LimitPrice int64 // cents, 0 for market
	RefPrice   int64 // cents
}

// Validator checks order shape and affordability before admission. It is a
// pure check: reservation happens in the engine's admission transaction,
// which re-checks affordability, so validation stays idempotent and
// retryable.
type Validator struct {
	ledger *ledger.Store
	oracle oracle.Oracle
}

// NewValidator creates a Validator.
func NewValidator(store *ledger.Store, o oracle.Oracle) *Validator {
	return &Validator{ledger: store, oracle: o}
}

// Validate checks the request against the account's committed state.
// Shape failures return a ValidationError; affordability failures return
// ErrInsufficientFunds or ErrInsufficientHoldings.
func (v *Validator) Validate(ctx context.Context, req OrderRequest) (*ValidatedOrder, error) {
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}
	if req.Kind != domain.OrderKindLimit && req.Kind != domain.OrderKindMarket {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown order kind: %s. Must be one of: limit, market", req.Kind),
		}
	}
	if !orderSymbolRegex.MatchString(req.Symbol) {
		return nil, &domain.ValidationError{Message: "symbol must match ^[A-Z]{1,10}$"}
	}
	if req.Quantity <= 0 {
		return nil, &domain.ValidationError{Message: "quantity must be a positive integer"}
	}
	if req.Quantity > MaxOrderQuantity {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("quantity must not exceed %d", MaxOrderQuantity),
		}
	}

	var limitCents int64
	switch req.Kind {
	case domain.OrderKindLimit:
		if req.LimitPrice == nil {
			return nil, &domain.ValidationError{Message: "limit_price is required for limit orders"}
		}
		if *req.LimitPrice <= 0 {
			return nil, &domain.ValidationError{Message: "limit_price must be greater than 0"}
		}
		cents, err := domain.DollarsToCents(*req.LimitPrice)
		if err != nil {
			return nil, &domain.ValidationError{Message: "limit_price must have at most 2 decimal places"}
		}
		limitCents = cents
	case domain.OrderKindMarket:
		if req.LimitPrice != nil {
			return nil, &domain.ValidationError{Message: "market orders must not include limit_price"}
		}
	}

	acct, err := v.ledger.GetAccount(req.AccountID)
	if err != nil {
		return nil, err
	}

	quote := v.oracle.ReferencePrice(ctx, req.Symbol)

	// Market orders price at the reference observation, limit orders at
	// their own limit price.
	unit := limitCents
	if req.Kind == domain.OrderKindMarket {
		unit = quote.Price
	}
	notional, ok := notionalOf(unit, req.Quantity)
	if !ok {
		return nil, &domain.ValidationError{Message: "order notional is too large"}
	}

	switch req.Side {
	case domain.OrderSideBuy:
		if notional > acct.AvailableCash() {
			return nil, domain.ErrInsufficientFunds
		}
	case domain.OrderSideSell:
		h := acct.Holding(req.Symbol)
		if h == nil || h.AvailableQuantity() < req.Quantity {
			return nil, domain.ErrInsufficientHoldings
		}
	}

	return &ValidatedOrder{
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Kind:       req.Kind,
		Quantity:   req.Quantity,
		LimitPrice: limitCents,
		RefPrice:   quote.Price,
	}, nil
}
