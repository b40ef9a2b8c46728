package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/service"
)

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// priceResponse is the JSON response for GET /market/{symbol}/price.
type priceResponse struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Fallback bool    `json:"fallback"`
	AsOf     string  `json:"as_of"`
}

// depthLevelResponse is one aggregated level in the depth response.
type depthLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// depthResponse is the JSON response for GET /market/{symbol}/depth.
type depthResponse struct {
	Symbol     string               `json:"symbol"`
	Bids       []depthLevelResponse `json:"bids"`
	Asks       []depthLevelResponse `json:"asks"`
	Spread     *float64             `json:"spread"`
	SnapshotAt string               `json:"snapshot_at"`
}

// GetPrice handles GET /market/{symbol}/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	p, err := h.marketSvc.GetPrice(r.Context(), symbol)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, priceResponse{
		Symbol:   p.Symbol,
		Price:    domain.CentsToDollars(p.Price),
		Fallback: p.Fallback,
		AsOf:     formatTimestamp(p.AsOf),
	})
}

// GetDepth handles GET /market/{symbol}/depth.
func (h *MarketHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	depth := 0
	if d := r.URL.Query().Get("depth"); d != "" {
		var err error
		depth, err = strconv.Atoi(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a valid integer")
			return
		}
	}

	book, err := h.marketSvc.GetDepth(symbol, depth)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	bids := make([]depthLevelResponse, len(book.Bids))
	for i, l := range book.Bids {
		bids[i] = depthLevelResponse{
			Price:         domain.CentsToDollars(l.Price),
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}
	asks := make([]depthLevelResponse, len(book.Asks))
	for i, l := range book.Asks {
		asks[i] = depthLevelResponse{
			Price:         domain.CentsToDollars(l.Price),
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}

	resp := depthResponse{
		Symbol:     book.Symbol,
		Bids:       bids,
		Asks:       asks,
		SnapshotAt: formatTimestamp(book.SnapshotAt),
	}
	if book.Spread != nil {
		s := domain.CentsToDollars(*book.Spread)
		resp.Spread = &s
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListSymbols handles GET /market/symbols.
func (h *MarketHandler) ListSymbols(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"symbols": h.marketSvc.ListSymbols()})
}
