package service

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/engine"
	"github.com/Dhanu0746/Zerodha-clone/internal/oracle"
)

var marketSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// PriceResponse represents the response for GET /market/{symbol}/price.
type PriceResponse struct {
	Symbol   string
	Price    int64 // cents
	Fallback bool  // true when served by the simulator instead of live data
	AsOf     time.Time
}

// DepthLevel is one aggregated price level in the depth response.
type DepthLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// DepthResponse represents the response for GET /market/{symbol}/depth:
// the top resting limit levels on each side of the reference price.
type DepthResponse struct {
	Symbol     string
	Bids       []DepthLevel
	Asks       []DepthLevel
	Spread     *int64 // nil if either side empty
	SnapshotAt time.Time
}

// MarketService handles reference price and depth queries.
type MarketService struct {
	oracle      oracle.Oracle
	books       *engine.BookManager
	symbols     *domain.SymbolRegistry
	depthLevels int
}

func NewMarketService(priceOracle oracle.Oracle, books *engine.BookManager, symbols *domain.SymbolRegistry, depthLevels int) *MarketService {
	return &MarketService{
		oracle:      priceOracle,
		books:       books,
		symbols:     symbols,
		depthLevels: depthLevels,
	}
}

// GetPrice returns the current reference price for a symbol. Unknown
// symbols still get a quote: the simulator prices any well-formed symbol.
func (s *MarketService) GetPrice(ctx context.Context, symbol string) (*PriceResponse, error) {
	if !marketSymbolRegex.MatchString(symbol) {
		return nil, &domain.ValidationError{Message: "symbol must match ^[A-Z]{1,10}$"}
	}

	quote := s.oracle.ReferencePrice(ctx, symbol)
	return &PriceResponse{
		Symbol:   symbol,
		Price:    quote.Price,
		Fallback: quote.Fallback,
		AsOf:     quote.At,
	}, nil
}

// GetDepth returns the top aggregated resting limit levels per side.
// depth <= 0 uses the configured default.
func (s *MarketService) GetDepth(symbol string, depth int) (*DepthResponse, error) {
	if !marketSymbolRegex.MatchString(symbol) {
		return nil, &domain.ValidationError{Message: "symbol must match ^[A-Z]{1,10}$"}
	}
	if depth <= 0 {
		depth = s.depthLevels
	}
	if depth > 50 {
		return nil, &domain.ValidationError{Message: "depth must be between 1 and 50"}
	}

	book := s.books.GetOrCreate(symbol)
	topBids := book.TopBids(depth)
	topAsks := book.TopAsks(depth)

	bids := make([]DepthLevel, len(topBids))
	for i, pl := range topBids {
		bids[i] = DepthLevel{Price: pl.Price, TotalQuantity: pl.TotalQuantity, OrderCount: pl.OrderCount}
	}
	asks := make([]DepthLevel, len(topAsks))
	for i, pl := range topAsks {
		asks[i] = DepthLevel{Price: pl.Price, TotalQuantity: pl.TotalQuantity, OrderCount: pl.OrderCount}
	}

	resp := &DepthResponse{
		Symbol:     symbol,
		Bids:       bids,
		Asks:       asks,
		SnapshotAt: time.Now(),
	}
	if len(topBids) > 0 && len(topAsks) > 0 {
		spread := topAsks[0].Price - topBids[0].Price
		resp.Spread = &spread
	}
	return resp, nil
}

// ListSymbols returns every symbol that has been traded, sorted.
func (s *MarketService) ListSymbols() []string {
	symbols := s.symbols.All()
	sort.Strings(symbols)
	return symbols
}
