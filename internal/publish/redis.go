package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// Redis pub/sub channels consumed by the UI gateway.
const (
	ChannelOrderUpdates     = "order_updates"
	ChannelPortfolioUpdates = "portfolio_updates"
	ChannelPriceUpdates     = "price_updates"
)

// RedisPublisher pushes events onto Redis pub/sub channels. Each publish
// is bounded by its own timeout so a slow Redis never backs up into the
// request path.
type RedisPublisher struct {
	client  redis.UniversalClient
	timeout time.Duration
	log     *slog.Logger
}

func NewRedisPublisher(client redis.UniversalClient, timeout time.Duration, log *slog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, timeout: timeout, log: log}
}

func (p *RedisPublisher) PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) {
	p.publish(ctx, ChannelOrderUpdates, buildOrderMessage(evt))
}

func (p *RedisPublisher) PublishPortfolio(ctx context.Context, snap domain.PortfolioSnapshot) {
	p.publish(ctx, ChannelPortfolioUpdates, buildPortfolioMessage(snap))
}

func (p *RedisPublisher) PublishPriceTick(ctx context.Context, tick domain.PriceTick) {
	p.publish(ctx, ChannelPriceUpdates, buildTickMessage(tick))
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("redis payload marshal failed", "channel", channel, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		p.log.Warn("redis publish failed", "channel", channel, "error", err)
	}
}
