package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

func bookOrder(id string, side domain.OrderSide, price, qty int64, createdAt time.Time) *domain.Order {
	return &domain.Order{
		OrderID:    id,
		Symbol:     "AAPL",
		Side:       side,
		Kind:       domain.OrderKindLimit,
		Quantity:   qty,
		LimitPrice: price,
		Status:     domain.OrderStatusOpen,
		CreatedAt:  createdAt,
	}
}

func TestBookBestBidAndAsk(t *testing.T) {
	ob := NewOrderBook("AAPL")
	now := time.Now()

	ob.Insert(bookOrder("b1", domain.OrderSideBuy, 15000, 2, now))
	ob.Insert(bookOrder("b2", domain.OrderSideBuy, 15500, 1, now))
	ob.Insert(bookOrder("a1", domain.OrderSideSell, 16500, 3, now))
	ob.Insert(bookOrder("a2", domain.OrderSideSell, 16000, 2, now))

	bid, ok := ob.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(15500), bid.Price)

	ask, ok := ob.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(16000), ask.Price)
}

func TestBookSamePriceOrdersByCreationTime(t *testing.T) {
	ob := NewOrderBook("AAPL")
	base := time.Now()

	ob.Insert(bookOrder("newer", domain.OrderSideBuy, 15000, 1, base.Add(time.Second)))
	ob.Insert(bookOrder("older", domain.OrderSideBuy, 15000, 1, base))

	bid, ok := ob.BestBid()
	require.True(t, ok)
	assert.Equal(t, "older", bid.OrderID)
}

func TestBookRemove(t *testing.T) {
	ob := NewOrderBook("AAPL")
	now := time.Now()

	ob.Insert(bookOrder("b1", domain.OrderSideBuy, 15000, 2, now))
	ob.Insert(bookOrder("b2", domain.OrderSideBuy, 15500, 1, now))
	require.Equal(t, 2, ob.BidCount())

	ob.Remove("b2")
	assert.Equal(t, 1, ob.BidCount())
	bid, ok := ob.BestBid()
	require.True(t, ok)
	assert.Equal(t, "b1", bid.OrderID)

	// Removing an unknown ID is a no-op.
	ob.Remove("missing")
	assert.Equal(t, 1, ob.BidCount())
}

func TestBookTopLevelsAggregation(t *testing.T) {
	ob := NewOrderBook("AAPL")
	now := time.Now()

	ob.Insert(bookOrder("a1", domain.OrderSideSell, 16000, 2, now))
	ob.Insert(bookOrder("a2", domain.OrderSideSell, 16000, 3, now.Add(time.Second)))
	ob.Insert(bookOrder("a3", domain.OrderSideSell, 16500, 1, now))
	ob.Insert(bookOrder("a4", domain.OrderSideSell, 17000, 4, now))

	levels := ob.TopAsks(2)
	require.Len(t, levels, 2)
	assert.Equal(t, PriceLevel{Price: 16000, TotalQuantity: 5, OrderCount: 2}, levels[0])
	assert.Equal(t, PriceLevel{Price: 16500, TotalQuantity: 1, OrderCount: 1}, levels[1])
}

func TestBookManagerReturnsSameBook(t *testing.T) {
	bm := NewBookManager()
	a := bm.GetOrCreate("AAPL")
	b := bm.GetOrCreate("AAPL")
	c := bm.GetOrCreate("MSFT")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
