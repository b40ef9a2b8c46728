// Package publish delivers committed domain events to subscribers:
// Redis pub/sub channels, per-account webhooks, and the application log.
// Every publisher is best effort. Delivery failures are logged and
// dropped; they never affect the committed trade.
package publish

import (
	"context"
	"time"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// Publisher is the full outbound event surface. The execution engine only
// needs the order and portfolio methods; the price ticker feeds
// PublishPriceTick.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, evt domain.OrderEvent)
	PublishPortfolio(ctx context.Context, snap domain.PortfolioSnapshot)
	PublishPriceTick(ctx context.Context, tick domain.PriceTick)
}

// Fanout forwards each event to every configured publisher in order.
type Fanout []Publisher

func (f Fanout) PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) {
	for _, p := range f {
		p.PublishOrderEvent(ctx, evt)
	}
}

func (f Fanout) PublishPortfolio(ctx context.Context, snap domain.PortfolioSnapshot) {
	for _, p := range f {
		p.PublishPortfolio(ctx, snap)
	}
}

func (f Fanout) PublishPriceTick(ctx context.Context, tick domain.PriceTick) {
	for _, p := range f {
		p.PublishPriceTick(ctx, tick)
	}
}

// Wire payloads. Prices are dollars on the wire; cents stay internal.

type fillMessage struct {
	FillID     string  `json:"fill_id"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	Fee        float64 `json:"fee"`
	Role       string  `json:"role"`
	ExecutedAt string  `json:"executed_at"`
}

type orderMessage struct {
	Event     string    `json:"event"`
	Timestamp string    `json:"timestamp"`
	Data      orderData `json:"data"`
}

type orderData struct {
	OrderID           string        `json:"order_id"`
	AccountID         string        `json:"account_id"`
	Symbol            string        `json:"symbol"`
	Side              string        `json:"side"`
	Kind              string        `json:"kind"`
	Status            string        `json:"status"`
	Role              string        `json:"role"`
	Quantity          int64         `json:"quantity"`
	FilledQuantity    int64         `json:"filled_quantity"`
	RemainingQuantity int64         `json:"remaining_quantity"`
	LimitPrice        *float64      `json:"limit_price,omitempty"`
	AvgFillPrice      *float64      `json:"avg_fill_price,omitempty"`
	Fees              float64       `json:"fees"`
	CreatedAt         string        `json:"created_at"`
	Fills             []fillMessage `json:"fills"`
}

type holdingMessage struct {
	Symbol            string  `json:"symbol"`
	Quantity          int64   `json:"quantity"`
	CommittedQuantity int64   `json:"committed_quantity"`
	AvgCost           float64 `json:"avg_cost"`
}

type portfolioMessage struct {
	Event     string        `json:"event"`
	Timestamp string        `json:"timestamp"`
	Data      portfolioData `json:"data"`
}

type portfolioData struct {
	AccountID    string           `json:"account_id"`
	Balance      float64          `json:"balance"`
	ReservedCash float64          `json:"reserved_cash"`
	Holdings     []holdingMessage `json:"holdings"`
}

type tickMessage struct {
	Event     string   `json:"event"`
	Timestamp string   `json:"timestamp"`
	Data      tickData `json:"data"`
}

type tickData struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func buildOrderMessage(evt domain.OrderEvent) orderMessage {
	o := evt.Order
	data := orderData{
		OrderID:           o.OrderID,
		AccountID:         o.AccountID,
		Symbol:            o.Symbol,
		Side:              string(o.Side),
		Kind:              string(o.Kind),
		Status:            string(o.Status),
		Role:              string(o.Role),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity(),
		Fees:              domain.CentsToDollars(o.Fees),
		CreatedAt:         formatTime(o.CreatedAt),
		Fills:             make([]fillMessage, 0, len(o.Fills)),
	}
	if o.Kind == domain.OrderKindLimit {
		lp := domain.CentsToDollars(o.LimitPrice)
		data.LimitPrice = &lp
	}
	if avg, ok := o.AvgFillPrice(); ok {
		a := domain.CentsToDollars(avg)
		data.AvgFillPrice = &a
	}
	for _, f := range o.Fills {
		data.Fills = append(data.Fills, fillMessage{
			FillID:     f.FillID,
			Price:      domain.CentsToDollars(f.Price),
			Quantity:   f.Quantity,
			Fee:        domain.CentsToDollars(f.Fee),
			Role:       string(f.Role),
			ExecutedAt: formatTime(f.ExecutedAt),
		})
	}
	return orderMessage{
		Event:     "order." + string(evt.Type),
		Timestamp: formatTime(evt.At),
		Data:      data,
	}
}

func buildPortfolioMessage(snap domain.PortfolioSnapshot) portfolioMessage {
	holdings := make([]holdingMessage, 0, len(snap.Holdings))
	for _, h := range snap.Holdings {
		holdings = append(holdings, holdingMessage{
			Symbol:            h.Symbol,
			Quantity:          h.Quantity,
			CommittedQuantity: h.CommittedQuantity,
			AvgCost:           h.AvgCost.InexactFloat64(),
		})
	}
	return portfolioMessage{
		Event:     "portfolio.updated",
		Timestamp: formatTime(snap.At),
		Data: portfolioData{
			AccountID:    snap.AccountID,
			Balance:      domain.CentsToDollars(snap.Balance),
			ReservedCash: domain.CentsToDollars(snap.ReservedCash),
			Holdings:     holdings,
		},
	}
}

func buildTickMessage(tick domain.PriceTick) tickMessage {
	return tickMessage{
		Event:     "price.updated",
		Timestamp: formatTime(tick.At),
		Data: tickData{
			Symbol: tick.Symbol,
			Price:  domain.CentsToDollars(tick.Price),
		},
	}
}
