package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
)

func TestValidateShapeErrors(t *testing.T) {
	store := ledger.NewStore()
	createAccount(t, store, "alice", 100_000, nil)
	v := NewValidator(store, fixedOracle{price: 15000})

	base := OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 1,
	}

	tests := []struct {
		name   string
		mutate func(*OrderRequest)
	}{
		{"bad side", func(r *OrderRequest) { r.Side = "long" }},
		{"bad kind", func(r *OrderRequest) { r.Kind = "stop" }},
		{"lowercase symbol", func(r *OrderRequest) { r.Symbol = "aapl" }},
		{"symbol too long", func(r *OrderRequest) { r.Symbol = "ABCDEFGHIJK" }},
		{"zero quantity", func(r *OrderRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *OrderRequest) { r.Quantity = -3 }},
		{"quantity over cap", func(r *OrderRequest) { r.Quantity = MaxOrderQuantity + 1 }},
		{"market with price", func(r *OrderRequest) { r.LimitPrice = floatPtr(150) }},
		{"limit without price", func(r *OrderRequest) { r.Kind = domain.OrderKindLimit }},
		{"limit zero price", func(r *OrderRequest) {
			r.Kind = domain.OrderKindLimit
			r.LimitPrice = floatPtr(0)
		}},
		{"limit sub-cent price", func(r *OrderRequest) {
			r.Kind = domain.OrderKindLimit
			r.LimitPrice = floatPtr(150.005)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := v.Validate(context.Background(), req)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestValidateRejectsOverflowingNotional(t *testing.T) {
	store := ledger.NewStore()
	createAccount(t, store, "alice", 100_000, map[string]int64{"AAPL": 5})
	v := NewValidator(store, fixedOracle{price: math.MaxInt64 / 2})

	// price*quantity wraps int64; a wrapped notional must never reach the
	// affordability comparison.
	_, err := v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 3,
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideSell, Kind: domain.OrderKindMarket, Quantity: 3,
	})
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateUnknownAccount(t *testing.T) {
	v := NewValidator(ledger.NewStore(), fixedOracle{price: 15000})

	_, err := v.Validate(context.Background(), OrderRequest{
		AccountID: "ghost", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestValidateBuyAgainstAvailableCash(t *testing.T) {
	store := ledger.NewStore()
	createAccount(t, store, "alice", 30000, nil)
	v := NewValidator(store, fixedOracle{price: 15000})

	vo, err := v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), vo.RefPrice)

	_, err = v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 3,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestValidateSellAgainstAvailableHoldings(t *testing.T) {
	store := ledger.NewStore()
	createAccount(t, store, "alice", 0, map[string]int64{"AAPL": 5})
	v := NewValidator(store, fixedOracle{price: 15000})

	_, err := v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideSell, Kind: domain.OrderKindMarket, Quantity: 5,
	})
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideSell, Kind: domain.OrderKindMarket, Quantity: 6,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientHoldings)

	_, err = v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "MSFT",
		Side: domain.OrderSideSell, Kind: domain.OrderKindMarket, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientHoldings)
}

func TestValidateLimitUsesLimitPriceForAffordability(t *testing.T) {
	store := ledger.NewStore()
	createAccount(t, store, "alice", 48000, nil)
	v := NewValidator(store, fixedOracle{price: 15000})

	// 3 × $160 = exactly the balance.
	vo, err := v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit,
		Quantity: 3, LimitPrice: floatPtr(160.00),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(16000), vo.LimitPrice)

	_, err = v.Validate(context.Background(), OrderRequest{
		AccountID: "alice", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit,
		Quantity: 4, LimitPrice: floatPtr(160.00),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}
