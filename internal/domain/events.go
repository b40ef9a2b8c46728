package domain

import "time"

// OrderEventType names the lifecycle events published for an order.
type OrderEventType string

const (
	OrderEventPlaced    OrderEventType = "placed"
	OrderEventFilled    OrderEventType = "filled"
	OrderEventPartial   OrderEventType = "partial"
	OrderEventCancelled OrderEventType = "cancelled"
)

// OrderEvent is published after an order transition commits. Publishing is
// best effort and never rolls back the committed trade.
type OrderEvent struct {
	Type      OrderEventType
	AccountID string
	Order     *Order
	At        time.Time
}

// PortfolioSnapshot summarizes an account's committed state for
// portfolio_updates subscribers.
type PortfolioSnapshot struct {
	AccountID    string
	Balance      int64
	ReservedCash int64
	Holdings     []*Holding
	At           time.Time
}

// PriceTick is a single reference-price observation for a symbol.
type PriceTick struct {
	Symbol string
	Price  int64 // cents
	At     time.Time
}
