package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFeeRoundsHalfUp(t *testing.T) {
	fees := DefaultFeeSchedule()

	// 15 bps of 30000 is exactly 45.
	assert.Equal(t, int64(45), fees.Fee(30000, RoleTaker))
	// 15 bps of 75000 is 112.5, rounds to 113.
	assert.Equal(t, int64(113), fees.Fee(75000, RoleTaker))
	// 10 bps of 48000 is exactly 48.
	assert.Equal(t, int64(48), fees.Fee(48000, RoleMaker))
	// 10 bps of 12345 is 12.345, rounds to 12.
	assert.Equal(t, int64(12), fees.Fee(12345, RoleMaker))
	assert.Equal(t, int64(0), fees.Fee(0, RoleTaker))
}

func TestWeightedAvgCost(t *testing.T) {
	// Empty position takes the fill price outright.
	avg := WeightedAvgCost(0, decimal.Zero, 2, 15000)
	assert.True(t, avg.Equal(decimal.NewFromInt(15000)), "got %s", avg)

	// 2 @ 100.00 plus 2 @ 200.00 averages to 150.00.
	avg = WeightedAvgCost(2, decimal.NewFromInt(10000), 2, 20000)
	assert.True(t, avg.Equal(decimal.NewFromInt(15000)), "got %s", avg)

	// 1 @ 100.00 plus 2 @ 250.00 averages to 200.00.
	avg = WeightedAvgCost(1, decimal.NewFromInt(10000), 2, 25000)
	assert.True(t, avg.Equal(decimal.NewFromInt(20000)), "got %s", avg)

	// Uneven split keeps full precision instead of truncating.
	avg = WeightedAvgCost(1, decimal.NewFromInt(10000), 2, 10001)
	want := decimal.NewFromInt(30002).Div(decimal.NewFromInt(3))
	assert.True(t, avg.Equal(want), "got %s want %s", avg, want)
}

func TestAvgFillPrice(t *testing.T) {
	o := &Order{Quantity: 5}
	_, ok := o.AvgFillPrice()
	assert.False(t, ok)

	o.Fills = []*Fill{
		{Price: 10000, Quantity: 2},
		{Price: 11000, Quantity: 3},
	}
	o.FilledQuantity = 5

	price, ok := o.AvgFillPrice()
	assert.True(t, ok)
	assert.Equal(t, int64(10600), price)
}

func TestOrderCloneIsDeep(t *testing.T) {
	filled := time.Now()
	o := &Order{
		OrderID:        "o1",
		Quantity:       2,
		FilledQuantity: 2,
		Status:         OrderStatusFilled,
		FilledAt:       &filled,
		Fills:          []*Fill{{FillID: "f1", Price: 100, Quantity: 2}},
	}

	c := o.Clone()
	c.Fills[0].Price = 999
	*c.FilledAt = filled.Add(time.Hour)

	assert.Equal(t, int64(100), o.Fills[0].Price)
	assert.True(t, o.FilledAt.Equal(filled))
}
