package oracle

import (
	"context"
	"time"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// Ticker periodically advances the price source for every registered
// symbol and fans the resulting ticks out to its sinks (the matching
// sweeper and the notification publisher).
type Ticker struct {
	source   TickSource
	symbols  *domain.SymbolRegistry
	interval time.Duration
	sinks    []func(domain.PriceTick)
}

// NewTicker creates a Ticker. Sinks are invoked synchronously in order on
// the ticker goroutine; they must not block.
func NewTicker(source TickSource, symbols *domain.SymbolRegistry, interval time.Duration, sinks ...func(domain.PriceTick)) *Ticker {
	return &Ticker{
		source:   source,
		symbols:  symbols,
		interval: interval,
		sinks:    sinks,
	}
}

// Run ticks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	for _, symbol := range t.symbols.All() {
		q := t.source.NextPrice(ctx, symbol)
		pt := domain.PriceTick{Symbol: q.Symbol, Price: q.Price, At: q.At}
		for _, sink := range t.sinks {
			sink(pt)
		}
	}
}
