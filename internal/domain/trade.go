package domain

import "time"

// Fill represents a single execution against an order.
type Fill struct {
	FillID     string
	OrderID    string
	Price      int64 // cents
	Quantity   int64
	Fee        int64 // cents
	Role       LiquidityRole
	ExecutedAt time.Time
}
