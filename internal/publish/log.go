package publish

import (
	"context"
	"log/slog"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// LogPublisher writes events to the structured log. It is always part of
// the fanout so every lifecycle transition leaves a trace even when Redis
// and webhooks are disabled.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishOrderEvent(_ context.Context, evt domain.OrderEvent) {
	o := evt.Order
	p.log.Info("order event",
		"event", "order."+string(evt.Type),
		"order_id", o.OrderID,
		"account_id", o.AccountID,
		"symbol", o.Symbol,
		"side", o.Side,
		"kind", o.Kind,
		"status", o.Status,
		"filled_quantity", o.FilledQuantity,
		"quantity", o.Quantity,
		"fees_cents", o.Fees,
	)
}

func (p *LogPublisher) PublishPortfolio(_ context.Context, snap domain.PortfolioSnapshot) {
	p.log.Debug("portfolio updated",
		"account_id", snap.AccountID,
		"balance_cents", snap.Balance,
		"reserved_cents", snap.ReservedCash,
		"holdings", len(snap.Holdings),
	)
}

func (p *LogPublisher) PublishPriceTick(_ context.Context, tick domain.PriceTick) {
	p.log.Debug("price tick",
		"symbol", tick.Symbol,
		"price_cents", tick.Price,
	)
}
