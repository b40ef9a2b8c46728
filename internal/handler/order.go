package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/engine"
	"github.com/Dhanu0746/Zerodha-clone/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /orders.
type placeOrderRequest struct {
	AccountID  string   `json:"account_id"`
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Kind       string   `json:"kind"`
	Quantity   int64    `json:"quantity"`
	LimitPrice *float64 `json:"limit_price"`
}

// orderResponse is the full order view. limit_price is present for limit
// orders only; average_price is null until something fills.
type orderResponse struct {
	OrderID           string         `json:"order_id"`
	AccountID         string         `json:"account_id"`
	Symbol            string         `json:"symbol"`
	Side              string         `json:"side"`
	Kind              string         `json:"kind"`
	LimitPrice        *float64       `json:"limit_price,omitempty"`
	Quantity          int64          `json:"quantity"`
	FilledQuantity    int64          `json:"filled_quantity"`
	RemainingQuantity int64          `json:"remaining_quantity"`
	Status            string         `json:"status"`
	Role              string         `json:"role"`
	AveragePrice      *float64       `json:"average_price"`
	Fees              float64        `json:"fees"`
	CreatedAt         string         `json:"created_at"`
	FilledAt          *string        `json:"filled_at"`
	CancelledAt       *string        `json:"cancelled_at"`
	Fills             []fillResponse `json:"fills"`
}

// fillResponse is a single execution in the order response.
type fillResponse struct {
	FillID     string  `json:"fill_id"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	Fee        float64 `json:"fee"`
	Role       string  `json:"role"`
	ExecutedAt string  `json:"executed_at"`
}

// PlaceOrder handles POST /orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.PlaceOrder(r.Context(), engine.OrderRequest{
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		Side:       domain.OrderSide(req.Side),
		Kind:       domain.OrderKind(req.Kind),
		Quantity:   req.Quantity,
		LimitPrice: req.LimitPrice,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// GetOrder handles GET /orders/{order_id}. The owning account comes from
// the account_id query parameter.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "account_id query parameter is required")
		return
	}

	order, err := h.orderSvc.GetOrder(orderID, accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "account_id query parameter is required")
		return
	}

	order, err := h.orderSvc.CancelOrder(r.Context(), orderID, accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

func buildOrderResponse(o *domain.Order) orderResponse {
	fills := make([]fillResponse, len(o.Fills))
	for i, f := range o.Fills {
		fills[i] = fillResponse{
			FillID:     f.FillID,
			Price:      domain.CentsToDollars(f.Price),
			Quantity:   f.Quantity,
			Fee:        domain.CentsToDollars(f.Fee),
			Role:       string(f.Role),
			ExecutedAt: formatTimestamp(f.ExecutedAt),
		}
	}

	resp := orderResponse{
		OrderID:           o.OrderID,
		AccountID:         o.AccountID,
		Symbol:            o.Symbol,
		Side:              string(o.Side),
		Kind:              string(o.Kind),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity(),
		Status:            string(o.Status),
		Role:              string(o.Role),
		Fees:              domain.CentsToDollars(o.Fees),
		CreatedAt:         formatTimestamp(o.CreatedAt),
		Fills:             fills,
	}

	if o.Kind == domain.OrderKindLimit {
		p := domain.CentsToDollars(o.LimitPrice)
		resp.LimitPrice = &p
	}
	if avg, ok := o.AvgFillPrice(); ok {
		a := domain.CentsToDollars(avg)
		resp.AveragePrice = &a
	}
	if o.FilledAt != nil {
		s := formatTimestamp(*o.FilledAt)
		resp.FilledAt = &s
	}
	if o.CancelledAt != nil {
		s := formatTimestamp(*o.CancelledAt)
		resp.CancelledAt = &s
	}
	return resp
}
