package engine

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// BookEntry is a single open limit order in the resting-order index. The
// ledger remains authoritative; the book is a read-optimized index for
// depth snapshots and sweep short-circuiting. Resting orders fill in full
// or cancel, so Quantity is stable while the entry is on the book.
type BookEntry struct {
	Price     int64
	CreatedAt time.Time
	OrderID   string
	Quantity  int64
}

// PriceLevel is an aggregated price level in a depth snapshot.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// bidLess orders the buy side: price descending, then created_at
// ascending, then order_id ascending. Min() returns the best bid.
func bidLess(a, b BookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.OrderID < b.OrderID
}

// askLess orders the sell side: price ascending, then created_at
// ascending, then order_id ascending. Min() returns the best ask.
func askLess(a, b BookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.OrderID < b.OrderID
}

// OrderBook maintains the resting bid and ask sides for a single symbol
// using B-trees with a secondary index for O(log n) removal by order ID.
type OrderBook struct {
	symbol string
	mu     sync.RWMutex
	bids   *btree.BTreeG[BookEntry]
	asks   *btree.BTreeG[BookEntry]
	index  map[string]BookEntry // order_id → entry
}

// NewOrderBook creates an order book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	const degree = 32
	return &OrderBook{
		symbol: symbol,
		bids:   btree.NewG[BookEntry](degree, bidLess),
		asks:   btree.NewG[BookEntry](degree, askLess),
		index:  make(map[string]BookEntry),
	}
}

// Insert adds an open limit order to the appropriate side.
func (ob *OrderBook) Insert(o *domain.Order) {
	entry := BookEntry{
		Price:     o.LimitPrice,
		CreatedAt: o.CreatedAt,
		OrderID:   o.OrderID,
		Quantity:  o.RemainingQuantity(),
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	if o.Side == domain.OrderSideBuy {
		ob.bids.ReplaceOrInsert(entry)
	} else {
		ob.asks.ReplaceOrInsert(entry)
	}
	ob.index[entry.OrderID] = entry
}

// Remove deletes an order from the book by order ID using the secondary
// index. It tries both sides since the caller may not know which side the
// order is on.
func (ob *OrderBook) Remove(orderID string) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	entry, ok := ob.index[orderID]
	if !ok {
		return
	}
	delete(ob.index, orderID)
	// Delete is a no-op if the entry isn't found.
	ob.bids.Delete(entry)
	ob.asks.Delete(entry)
}

// BestBid returns the highest-priced resting buy.
func (ob *OrderBook) BestBid() (BookEntry, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bids.Min()
}

// BestAsk returns the lowest-priced resting sell.
func (ob *OrderBook) BestAsk() (BookEntry, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.asks.Min()
}

// TopBids returns up to n aggregated price levels from the buy side,
// ordered by price descending.
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return topLevels(ob.bids, n)
}

// TopAsks returns up to n aggregated price levels from the sell side,
// ordered by price ascending.
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return topLevels(ob.asks, n)
}

// BidCount returns the number of resting buy orders.
func (ob *OrderBook) BidCount() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bids.Len()
}

// AskCount returns the number of resting sell orders.
func (ob *OrderBook) AskCount() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.asks.Len()
}

// topLevels iterates the B-tree in order and aggregates entries into at
// most n price levels.
func topLevels(tree *btree.BTreeG[BookEntry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(entry BookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Quantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Quantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// BookManager is a thread-safe map of symbol → OrderBook.
type BookManager struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[string]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given symbol, creating one if
// it doesn't already exist.
func (bm *BookManager) GetOrCreate(symbol string) *OrderBook {
	bm.mu.RLock()
	book, ok := bm.books[symbol]
	bm.mu.RUnlock()
	if ok {
		return book
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = bm.books[symbol]; ok {
		return book
	}
	book = NewOrderBook(symbol)
	bm.books[symbol] = book
	return book
}
