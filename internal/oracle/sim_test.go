package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorBasePrices(t *testing.T) {
	sim := NewSimulator(1)
	ctx := context.Background()

	q := sim.ReferencePrice(ctx, "AAPL")
	assert.Equal(t, int64(15000), q.Price)
	assert.Equal(t, "AAPL", q.Symbol)

	// Unknown symbols start at the default base.
	q = sim.ReferencePrice(ctx, "ZZZZ")
	assert.Equal(t, int64(10000), q.Price)
}

func TestSimulatorReferencePriceIsStable(t *testing.T) {
	sim := NewSimulator(1)
	ctx := context.Background()

	first := sim.ReferencePrice(ctx, "AAPL").Price
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, sim.ReferencePrice(ctx, "AAPL").Price)
	}
}

func TestSimulatorWalkIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewSimulator(42)
	b := NewSimulator(42)

	for i := 0; i < 50; i++ {
		qa := a.NextPrice(ctx, "TSLA")
		qb := b.NextPrice(ctx, "TSLA")
		require.Equal(t, qa.Price, qb.Price, "step %d", i)
	}
}

func TestSimulatorStepBoundAndFloor(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(7)

	prev := sim.ReferencePrice(ctx, "MSFT").Price
	for i := 0; i < 200; i++ {
		q := sim.NextPrice(ctx, "MSFT")
		diff := q.Price - prev
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, int64(maxStepCents), "step %d", i)
		prev = q.Price
	}

	// The walk never goes below one cent.
	sim.SetPrice("PENNY", 1)
	for i := 0; i < 200; i++ {
		q := sim.NextPrice(ctx, "PENNY")
		require.GreaterOrEqual(t, q.Price, int64(1), "step %d", i)
	}
}

func TestSimulatorSetPriceAnchorsWalk(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(1)

	sim.SetPrice("AAPL", 20000)
	assert.Equal(t, int64(20000), sim.ReferencePrice(ctx, "AAPL").Price)

	q := sim.NextPrice(ctx, "AAPL")
	diff := q.Price - 20000
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, int64(maxStepCents))
}
