package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// Store is the ledger: durable records for accounts, holdings (embedded in
// accounts), orders, and funds transactions. All mutations to a single
// account — its balance, holdings, and orders — are serialized through
// Update, which stages changes on deep copies and commits atomically after
// invariant checks. Mutations to different accounts proceed in parallel.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*accountRecord
	orders       map[string]*domain.Order
	byAccount    map[string][]string          // account_id → order ids (append-only)
	openBySymbol map[string]map[string]bool   // symbol → open limit order ids
	txns         map[string][]*domain.Transaction

	maxAttempts int
	baseDelay   time.Duration
}

// accountRecord pairs committed account state with the lock that
// serializes updates to it.
type accountRecord struct {
	mu   sync.RWMutex
	acct *domain.Account
}

// Option configures a Store.
type Option func(*Store)

// WithRetry sets the bounded lock-acquisition retry policy surfaced as
// ErrConflict when exhausted.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Store) {
		s.maxAttempts = maxAttempts
		s.baseDelay = baseDelay
	}
}

// NewStore creates an empty ledger store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts:     make(map[string]*accountRecord),
		orders:       make(map[string]*domain.Order),
		byAccount:    make(map[string][]string),
		openBySymbol: make(map[string]map[string]bool),
		txns:         make(map[string][]*domain.Transaction),
		maxAttempts:  5,
		baseDelay:    2 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount adds an account. It returns domain.ErrAccountAlreadyExists
// if an account with the same ID already exists.
func (s *Store) CreateAccount(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.AccountID]; exists {
		return domain.ErrAccountAlreadyExists
	}
	s.accounts[a.AccountID] = &accountRecord{acct: a.Clone()}
	return nil
}

// GetAccount returns a snapshot of the account's committed state. It
// returns domain.ErrAccountNotFound if the account does not exist.
func (s *Store) GetAccount(id string) (*domain.Account, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.acct.Clone(), nil
}

// Exists returns true if an account with the given ID exists.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok
}

func (s *Store) record(id string) (*accountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return rec, nil
}

// Update runs fn inside the account's transaction scope. fn receives a Tx
// whose account and order views are staged deep copies; nothing is visible
// to readers until commit. If fn returns an error, or a committed-state
// invariant would be violated, the transaction is discarded whole.
//
// Lock acquisition retries with exponential backoff up to the configured
// attempt bound and then surfaces domain.ErrConflict for client-side retry.
func (s *Store) Update(ctx context.Context, accountID string, fn func(tx *Tx) error) error {
	rec, err := s.record(accountID)
	if err != nil {
		return err
	}

	if err := s.lockWithRetry(ctx, rec); err != nil {
		return err
	}
	defer rec.mu.Unlock()

	tx := &Tx{
		store:   s,
		Account: rec.acct.Clone(),
		orders:  make(map[string]*domain.Order),
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.validate(); err != nil {
		return err
	}

	s.commit(rec, tx)
	return nil
}

// lockWithRetry attempts to take the account's write lock, backing off
// exponentially between attempts.
func (s *Store) lockWithRetry(ctx context.Context, rec *accountRecord) error {
	delay := s.baseDelay
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if rec.mu.TryLock() {
			return nil
		}
		if attempt < s.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("account busy: %w", domain.ErrConflict)
}

// commit publishes the staged state. Caller holds rec.mu.
func (s *Store) commit(rec *accountRecord, tx *Tx) {
	tx.Account.Version = rec.acct.Version + 1
	rec.acct = tx.Account

	if len(tx.orders) == 0 && len(tx.txns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, o := range tx.orders {
		if _, existed := s.orders[id]; !existed {
			s.byAccount[o.AccountID] = append(s.byAccount[o.AccountID], id)
		}
		s.orders[id] = o
		s.indexOpen(o)
	}
	for _, t := range tx.txns {
		s.txns[t.AccountID] = append(s.txns[t.AccountID], t)
	}
}

// indexOpen maintains the open-limit-order index used by the sweeper.
// Caller holds s.mu.
func (s *Store) indexOpen(o *domain.Order) {
	open := s.openBySymbol[o.Symbol]
	if o.Kind == domain.OrderKindLimit && o.IsOpen() {
		if open == nil {
			open = make(map[string]bool)
			s.openBySymbol[o.Symbol] = open
		}
		open[o.OrderID] = true
		return
	}
	if open != nil {
		delete(open, o.OrderID)
		if len(open) == 0 {
			delete(s.openBySymbol, o.Symbol)
		}
	}
}

// GetOrder retrieves a snapshot of an order by ID. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *Store) GetOrder(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o.Clone(), nil
}

// ListByAccount returns order snapshots for an account in reverse
// chronological order (newest first). If status is non-nil only matching
// orders are included. Pagination is 1-based. The second return value is
// the total match count before pagination.
func (s *Store) ListByAccount(accountID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byAccount[accountID]

	filtered := make([]*domain.Order, 0)
	for i := len(all) - 1; i >= 0; i-- {
		o := s.orders[all[i]]
		if status != nil && o.Status != *status {
			continue
		}
		filtered = append(filtered, o)
	}

	total := len(filtered)

	start := (page - 1) * limit
	if start >= total {
		return []*domain.Order{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]*domain.Order, 0, end-start)
	for _, o := range filtered[start:end] {
		out = append(out, o.Clone())
	}
	return out, total
}

// OpenLimitOrders returns snapshots of every open limit order for a symbol
// in ascending creation time (submission priority for the sweeper).
func (s *Store) OpenLimitOrders(symbol string) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.openBySymbol[symbol]
	out := make([]*domain.Order, 0, len(ids))
	for id := range ids {
		out = append(out, s.orders[id].Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out
}

// Transactions returns the account's funds history, newest first.
func (s *Store) Transactions(accountID string) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.txns[accountID]
	out := make([]*domain.Transaction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		t := *all[i]
		out = append(out, &t)
	}
	return out
}
