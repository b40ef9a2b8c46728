package domain

import "time"

// OrderKind distinguishes limit orders from market orders.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderSide indicates whether an order buys or sells the symbol.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order.
//
//	open → partial → filled
//	open → filled
//	open/partial → cancelled (filled quantity frozen at whatever was filled)
//
// filled and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// LiquidityRole tags an order as the resting (maker) or crossing (taker)
// side for fee purposes.
type LiquidityRole string

const (
	RoleMaker LiquidityRole = "maker"
	RoleTaker LiquidityRole = "taker"
)

// Order represents a buy or sell instruction submitted by an account.
// Orders are never deleted; terminal orders remain as the audit trail.
type Order struct {
	OrderID        string
	AccountID      string
	Symbol         string
	Side           OrderSide
	Kind           OrderKind
	Quantity       int64
	FilledQuantity int64
	LimitPrice     int64 // cents, 0 for market orders
	Status         OrderStatus
	Role           LiquidityRole
	Fees           int64 // cents, accrued across fills
	CreatedAt      time.Time
	FilledAt       *time.Time
	CancelledAt    *time.Time
	Fills          []*Fill
}

// RemainingQuantity returns the quantity not yet filled. For cancelled
// orders this is the quantity whose reservation was released.
func (o *Order) RemainingQuantity() int64 {
	return o.Quantity - o.FilledQuantity
}

// IsOpen reports whether the order can still be matched or cancelled.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusPartial
}

// AvgFillPrice computes the volume-weighted average execution price using
// integer arithmetic. Returns (price, true) when fills exist, or (0, false)
// when nothing has executed.
func (o *Order) AvgFillPrice() (int64, bool) {
	if len(o.Fills) == 0 || o.FilledQuantity == 0 {
		return 0, false
	}
	var total int64
	for _, f := range o.Fills {
		total += f.Price * f.Quantity
	}
	return total / o.FilledQuantity, true
}

// Clone returns a deep copy of the order. The ledger stages mutations on
// copies so an aborted update never leaks into committed state.
func (o *Order) Clone() *Order {
	c := *o
	if o.FilledAt != nil {
		t := *o.FilledAt
		c.FilledAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		c.CancelledAt = &t
	}
	c.Fills = make([]*Fill, len(o.Fills))
	for i, f := range o.Fills {
		fc := *f
		c.Fills[i] = &fc
	}
	return &c
}
