package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents an account's position in a single stock symbol.
// CommittedQuantity counts shares pledged to open sell orders so a second
// concurrent sell cannot oversell the same shares. AvgCost is the weighted
// mean purchase price in cents; it is recomputed on buy fills and left
// unchanged by sells.
type Holding struct {
	Symbol            string
	Quantity          int64
	CommittedQuantity int64
	AvgCost           decimal.Decimal
}

// AvailableQuantity returns the quantity not pledged to open sell orders.
func (h *Holding) AvailableQuantity() int64 {
	return h.Quantity - h.CommittedQuantity
}

// Account represents a trading account. Balance and ReservedCash are in
// cents; ReservedCash counts funds pledged to open limit buy orders.
// Version is bumped by the ledger on every committed mutation.
type Account struct {
	AccountID    string
	Balance      int64
	ReservedCash int64
	Holdings     map[string]*Holding
	Version      uint64
	CreatedAt    time.Time
}

// AvailableCash returns the unreserved cash balance.
func (a *Account) AvailableCash() int64 {
	return a.Balance - a.ReservedCash
}

// Holding returns the holding for symbol, or nil if the account has none.
func (a *Account) Holding(symbol string) *Holding {
	return a.Holdings[symbol]
}

// Clone returns a deep copy of the account for staged ledger mutations.
func (a *Account) Clone() *Account {
	c := *a
	c.Holdings = make(map[string]*Holding, len(a.Holdings))
	for sym, h := range a.Holdings {
		hc := *h
		c.Holdings[sym] = &hc
	}
	return &c
}
