package oracle

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// Live is an Oracle backed by the Alpaca market-data API. Lookups carry a
// short timeout; on error or timeout the simulated price is substituted
// and the degradation is logged, never surfaced to the caller.
type Live struct {
	client   *marketdata.Client
	fallback *Simulator
	timeout  time.Duration
	log      *slog.Logger
}

// NewLive creates a live oracle with the given credentials. fallback must
// be non-nil; it absorbs upstream failures.
func NewLive(apiKey, apiSecret, dataURL string, timeout time.Duration, fallback *Simulator, log *slog.Logger) *Live {
	opts := marketdata.ClientOpts{
		APIKey:     apiKey,
		APISecret:  apiSecret,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &Live{
		client:   marketdata.NewClient(opts),
		fallback: fallback,
		timeout:  timeout,
		log:      log,
	}
}

// ReferencePrice returns the latest trade price for the symbol, or the
// simulated fallback when the feed is unavailable.
func (l *Live) ReferencePrice(ctx context.Context, symbol string) Quote {
	return l.fetch(ctx, symbol)
}

// NextPrice queries the live feed; the walk semantics of the simulator do
// not apply here.
func (l *Live) NextPrice(ctx context.Context, symbol string) Quote {
	return l.fetch(ctx, symbol)
}

type tradeResult struct {
	price int64
	err   error
}

func (l *Live) fetch(ctx context.Context, symbol string) Quote {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	// The marketdata client has no context-aware variants; bound it with
	// the HTTP client timeout plus a select on ctx.
	ch := make(chan tradeResult, 1)
	go func() {
		trade, err := l.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
		if err != nil {
			ch <- tradeResult{err: err}
			return
		}
		ch <- tradeResult{price: int64(math.Round(trade.Price * 100))}
	}()

	select {
	case <-ctx.Done():
		l.log.Warn("price feed timeout, using fallback", slog.String("symbol", symbol))
	case res := <-ch:
		if res.err == nil && res.price > 0 {
			// Anchor the simulator so later fallbacks stay near the
			// last live observation.
			l.fallback.SetPrice(symbol, res.price)
			return Quote{Symbol: symbol, Price: res.price, At: time.Now()}
		}
		if res.err != nil {
			l.log.Warn("price feed error, using fallback",
				slog.String("symbol", symbol), slog.String("error", res.err.Error()))
		}
	}

	q := l.fallback.ReferencePrice(ctx, symbol)
	q.Fallback = true
	return q
}
