package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/engine"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
)

func newOrderStack(t *testing.T, price int64) (*OrderService, *ledger.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ledger.NewStore()
	books := engine.NewBookManager()
	symbols := domain.NewSymbolRegistry()
	orc := fixedOracle{price: price}

	eng := engine.NewEngine(store, books, symbols, domain.DefaultFeeSchedule(), nil, nil, nil)
	sweeper := engine.NewSweeper(eng, store, books, nil, logger)
	validator := engine.NewValidator(store, orc)

	return NewOrderService(validator, eng, sweeper, store), store
}

func TestPlaceOrderMarketFills(t *testing.T) {
	ctx := context.Background()
	svc, store := newOrderStack(t, 15000)

	accounts := NewAccountService(store, fixedOracle{price: 15000}, 1_000_000)
	_, err := accounts.Open("alice")
	require.NoError(t, err)

	o, err := svc.PlaceOrder(ctx, engine.OrderRequest{
		AccountID: "alice",
		Symbol:    "AAPL",
		Side:      domain.OrderSideBuy,
		Kind:      domain.OrderKindMarket,
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFilled, o.Status)

	got, err := svc.GetOrder(o.OrderID, "alice")
	require.NoError(t, err)
	assert.Equal(t, o.OrderID, got.OrderID)

	_, err = svc.GetOrder(o.OrderID, "bob")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelOrderUnknownAccount(t *testing.T) {
	svc, _ := newOrderStack(t, 15000)
	_, err := svc.CancelOrder(context.Background(), "whatever", "ghost")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestListOrdersValidation(t *testing.T) {
	svc, store := newOrderStack(t, 15000)
	accounts := NewAccountService(store, fixedOracle{price: 15000}, 0)
	_, err := accounts.Open("alice")
	require.NoError(t, err)

	_, _, err = svc.ListOrders("ghost", nil, 1, 20)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	var verr *domain.ValidationError

	bogus := domain.OrderStatus("pending")
	_, _, err = svc.ListOrders("alice", &bogus, 1, 20)
	require.ErrorAs(t, err, &verr)

	_, _, err = svc.ListOrders("alice", nil, 0, 20)
	require.ErrorAs(t, err, &verr)

	_, _, err = svc.ListOrders("alice", nil, 1, 0)
	require.ErrorAs(t, err, &verr)

	_, _, err = svc.ListOrders("alice", nil, 1, 101)
	require.ErrorAs(t, err, &verr)

	orders, total, err := svc.ListOrders("alice", nil, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}
