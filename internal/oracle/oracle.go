// Package oracle supplies reference prices for symbols, either simulated
// or from a live market-data feed. Price lookups are fail-open: a quote is
// always returned, falling back to the simulated walk when the upstream is
// unavailable, so market-data outages never block trading.
package oracle

import (
	"context"
	"time"
)

// Quote is a reference-price observation. Fallback is set when the value
// came from the simulator because the live feed failed or timed out.
type Quote struct {
	Symbol   string
	Price    int64 // cents
	At       time.Time
	Fallback bool
}

// Oracle supplies the current reference price for a symbol. It never
// returns an error; degraded upstreams are absorbed by a fallback value.
type Oracle interface {
	ReferencePrice(ctx context.Context, symbol string) Quote
}

// TickSource produces the next price observation for a symbol, advancing
// any internal model. The Ticker drives it on an interval.
type TickSource interface {
	NextPrice(ctx context.Context, symbol string) Quote
}
