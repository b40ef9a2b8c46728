package oracle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

type tickCollector struct {
	mu    sync.Mutex
	ticks []domain.PriceTick
}

func (c *tickCollector) sink(t domain.PriceTick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = append(c.ticks, t)
}

func (c *tickCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ticks)
}

func (c *tickCollector) symbols() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool)
	for _, t := range c.ticks {
		out[t.Symbol] = true
	}
	return out
}

func TestTickerFansOutToAllSinks(t *testing.T) {
	symbols := domain.NewSymbolRegistry()
	symbols.Register("AAPL")
	symbols.Register("TSLA")

	sim := NewSimulator(1)
	var a, b tickCollector
	ticker := NewTicker(sim, symbols, time.Millisecond, a.sink, b.sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return a.count() >= 4 && b.count() >= 4
	}, 2*time.Second, time.Millisecond)

	cancel()
	<-done

	assert.True(t, a.symbols()["AAPL"])
	assert.True(t, a.symbols()["TSLA"])
	assert.Equal(t, a.count(), b.count())
}

func TestTickerSkipsUnregisteredSymbols(t *testing.T) {
	symbols := domain.NewSymbolRegistry()

	sim := NewSimulator(1)
	var c tickCollector
	ticker := NewTicker(sim, symbols, time.Millisecond, c.sink)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ticker.Run(ctx)

	assert.Zero(t, c.count())
}
