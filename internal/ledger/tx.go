package ledger

import (
	"fmt"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// Tx is the staged view of one account's transaction scope. Account is a
// deep copy the caller mutates freely; order copies are staged through
// Order and CreateOrder. Everything commits together or not at all.
type Tx struct {
	store   *Store
	Account *domain.Account
	orders  map[string]*domain.Order
	txns    []*domain.Transaction
}

// AdjustBalance applies a signed delta (cents) to the account balance.
func (tx *Tx) AdjustBalance(delta int64) {
	tx.Account.Balance += delta
}

// ReserveCash pledges cash to an open limit buy; negative delta releases.
func (tx *Tx) ReserveCash(delta int64) {
	tx.Account.ReservedCash += delta
}

// Holding returns the staged holding for symbol, creating an empty one if
// the account has no position yet.
func (tx *Tx) Holding(symbol string) *domain.Holding {
	h, ok := tx.Account.Holdings[symbol]
	if !ok {
		h = &domain.Holding{Symbol: symbol}
		tx.Account.Holdings[symbol] = h
	}
	return h
}

// DeleteHolding removes the holding row for symbol. A holding that reaches
// quantity zero is deleted, not retained.
func (tx *Tx) DeleteHolding(symbol string) {
	delete(tx.Account.Holdings, symbol)
}

// CreateOrder stages a new order owned by this account.
func (tx *Tx) CreateOrder(o *domain.Order) {
	tx.orders[o.OrderID] = o
}

// Order returns a staged copy of an existing order for mutation. It
// returns domain.ErrOrderNotFound if the order does not exist or belongs
// to a different account.
func (tx *Tx) Order(id string) (*domain.Order, error) {
	if o, ok := tx.orders[id]; ok {
		return o, nil
	}

	tx.store.mu.RLock()
	committed, ok := tx.store.orders[id]
	tx.store.mu.RUnlock()
	if !ok || committed.AccountID != tx.Account.AccountID {
		return nil, domain.ErrOrderNotFound
	}

	o := committed.Clone()
	tx.orders[id] = o
	return o, nil
}

// AppendTransaction stages a funds-history entry.
func (tx *Tx) AppendTransaction(t *domain.Transaction) {
	tx.txns = append(tx.txns, t)
}

// validate checks the invariants every committed state must satisfy. A
// violation aborts the transaction with ErrInternalInconsistency rather
// than silently clamping.
func (tx *Tx) validate() error {
	a := tx.Account
	if a.Balance < 0 {
		return fmt.Errorf("account %s balance %d: %w", a.AccountID, a.Balance, domain.ErrInternalInconsistency)
	}
	if a.ReservedCash < 0 || a.ReservedCash > a.Balance {
		return fmt.Errorf("account %s reserved %d of %d: %w", a.AccountID, a.ReservedCash, a.Balance, domain.ErrInternalInconsistency)
	}
	for sym, h := range a.Holdings {
		if h.Quantity < 0 || h.CommittedQuantity < 0 || h.CommittedQuantity > h.Quantity {
			return fmt.Errorf("holding %s/%s qty %d committed %d: %w",
				a.AccountID, sym, h.Quantity, h.CommittedQuantity, domain.ErrInternalInconsistency)
		}
	}
	for id, o := range tx.orders {
		if o.FilledQuantity < 0 || o.FilledQuantity > o.Quantity {
			return fmt.Errorf("order %s filled %d of %d: %w", id, o.FilledQuantity, o.Quantity, domain.ErrInternalInconsistency)
		}
	}
	return nil
}
