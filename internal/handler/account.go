package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/service"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
	orderSvc   *service.OrderService
}

func NewAccountHandler(accountSvc *service.AccountService, orderSvc *service.OrderService) *AccountHandler {
	return &AccountHandler{
		accountSvc: accountSvc,
		orderSvc:   orderSvc,
	}
}

// openAccountRequest is the JSON request body for POST /accounts.
type openAccountRequest struct {
	AccountID string `json:"account_id"`
}

// accountResponse is the JSON response for POST /accounts (201 Created).
type accountResponse struct {
	AccountID string  `json:"account_id"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at"`
}

// balanceResponse is the JSON response for GET /accounts/{account_id}/balance.
type balanceResponse struct {
	AccountID     string  `json:"account_id"`
	Balance       float64 `json:"balance"`
	ReservedCash  float64 `json:"reserved_cash"`
	AvailableCash float64 `json:"available_cash"`
	UpdatedAt     string  `json:"updated_at"`
}

// fundsRequest is the JSON request body for deposits and withdrawals.
type fundsRequest struct {
	Amount float64 `json:"amount"`
}

// transactionResponse is a single funds movement.
type transactionResponse struct {
	TransactionID string  `json:"transaction_id"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	BalanceAfter  float64 `json:"balance_after"`
	CreatedAt     string  `json:"created_at"`
}

// holdingViewResponse is a single position in the portfolio response.
type holdingViewResponse struct {
	Symbol            string  `json:"symbol"`
	Quantity          int64   `json:"quantity"`
	CommittedQuantity int64   `json:"committed_quantity"`
	AvailableQuantity int64   `json:"available_quantity"`
	AvgCost           float64 `json:"avg_cost"`
	CurrentPrice      float64 `json:"current_price"`
	MarketValue       float64 `json:"market_value"`
	InvestedValue     float64 `json:"invested_value"`
	UnrealizedPnL     float64 `json:"unrealized_pnl"`
}

// portfolioResponse is the JSON response for GET /accounts/{account_id}/portfolio.
type portfolioResponse struct {
	AccountID     string                `json:"account_id"`
	Balance       float64               `json:"balance"`
	ReservedCash  float64               `json:"reserved_cash"`
	AvailableCash float64               `json:"available_cash"`
	Holdings      []holdingViewResponse `json:"holdings"`
	TotalValue    float64               `json:"total_value"`
	SnapshotAt    string                `json:"snapshot_at"`
}

// orderSummaryResponse is a single order in the listing (no fills).
type orderSummaryResponse struct {
	OrderID           string   `json:"order_id"`
	Kind              string   `json:"kind"`
	Symbol            string   `json:"symbol"`
	Side              string   `json:"side"`
	LimitPrice        *float64 `json:"limit_price,omitempty"`
	Quantity          int64    `json:"quantity"`
	FilledQuantity    int64    `json:"filled_quantity"`
	RemainingQuantity int64    `json:"remaining_quantity"`
	Status            string   `json:"status"`
	AveragePrice      *float64 `json:"average_price"`
	Fees              float64  `json:"fees"`
	CreatedAt         string   `json:"created_at"`
}

// orderListResponse is the JSON response for GET /accounts/{account_id}/orders.
type orderListResponse struct {
	Orders []orderSummaryResponse `json:"orders"`
	Total  int                    `json:"total"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
}

// Open handles POST /accounts.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	acct, err := h.accountSvc.Open(req.AccountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, accountResponse{
		AccountID: acct.AccountID,
		Balance:   domain.CentsToDollars(acct.Balance),
		CreatedAt: formatTimestamp(acct.CreatedAt),
	})
}

// GetBalance handles GET /accounts/{account_id}/balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	balance, err := h.accountSvc.GetBalance(accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, balanceResponse{
		AccountID:     balance.AccountID,
		Balance:       domain.CentsToDollars(balance.Balance),
		ReservedCash:  domain.CentsToDollars(balance.ReservedCash),
		AvailableCash: domain.CentsToDollars(balance.AvailableCash),
		UpdatedAt:     formatTimestamp(balance.UpdatedAt),
	})
}

// Deposit handles POST /accounts/{account_id}/funds/deposit.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.accountSvc.Deposit)
}

// Withdraw handles POST /accounts/{account_id}/funds/withdraw.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveFunds(w, r, h.accountSvc.Withdraw)
}

func (h *AccountHandler) moveFunds(
	w http.ResponseWriter,
	r *http.Request,
	move func(ctx context.Context, accountID string, amount float64) (*domain.Transaction, error),
) {
	accountID := chi.URLParam(r, "account_id")

	var req fundsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	txn, err := move(r.Context(), accountID, req.Amount)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildTransactionResponse(txn))
}

// ListTransactions handles GET /accounts/{account_id}/transactions.
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	txns, err := h.accountSvc.Transactions(accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	result := make([]transactionResponse, len(txns))
	for i, t := range txns {
		result[i] = buildTransactionResponse(t)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"transactions": result})
}

// GetPortfolio handles GET /accounts/{account_id}/portfolio.
func (h *AccountHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	p, err := h.accountSvc.GetPortfolio(r.Context(), accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	holdings := make([]holdingViewResponse, len(p.Holdings))
	for i, hv := range p.Holdings {
		holdings[i] = holdingViewResponse{
			Symbol:            hv.Symbol,
			Quantity:          hv.Quantity,
			CommittedQuantity: hv.CommittedQuantity,
			AvailableQuantity: hv.AvailableQuantity,
			AvgCost:           domain.CentsToDollars(hv.AvgCost),
			CurrentPrice:      domain.CentsToDollars(hv.CurrentPrice),
			MarketValue:       domain.CentsToDollars(hv.MarketValue),
			InvestedValue:     domain.CentsToDollars(hv.InvestedValue),
			UnrealizedPnL:     domain.CentsToDollars(hv.UnrealizedPnL),
		}
	}

	WriteJSON(w, http.StatusOK, portfolioResponse{
		AccountID:     p.AccountID,
		Balance:       domain.CentsToDollars(p.Balance),
		ReservedCash:  domain.CentsToDollars(p.ReservedCash),
		AvailableCash: domain.CentsToDollars(p.AvailableCash),
		Holdings:      holdings,
		TotalValue:    domain.CentsToDollars(p.TotalValue),
		SnapshotAt:    formatTimestamp(p.SnapshotAt),
	})
}

// ListOrders handles GET /accounts/{account_id}/orders.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	var statusFilter *domain.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.OrderStatus(s)
		statusFilter = &status
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "page must be a valid integer")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a valid integer")
			return
		}
	}

	orders, total, err := h.orderSvc.ListOrders(accountID, statusFilter, page, limit)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	summaries := make([]orderSummaryResponse, len(orders))
	for i, o := range orders {
		summary := orderSummaryResponse{
			OrderID:           o.OrderID,
			Kind:              string(o.Kind),
			Symbol:            o.Symbol,
			Side:              string(o.Side),
			Quantity:          o.Quantity,
			FilledQuantity:    o.FilledQuantity,
			RemainingQuantity: o.RemainingQuantity(),
			Status:            string(o.Status),
			Fees:              domain.CentsToDollars(o.Fees),
			CreatedAt:         formatTimestamp(o.CreatedAt),
		}
		if o.Kind == domain.OrderKindLimit {
			p := domain.CentsToDollars(o.LimitPrice)
			summary.LimitPrice = &p
		}
		if avg, ok := o.AvgFillPrice(); ok {
			a := domain.CentsToDollars(avg)
			summary.AveragePrice = &a
		}
		summaries[i] = summary
	}

	WriteJSON(w, http.StatusOK, orderListResponse{
		Orders: summaries,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

func buildTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: t.TransactionID,
		Type:          string(t.Type),
		Amount:        domain.CentsToDollars(t.Amount),
		BalanceAfter:  domain.CentsToDollars(t.BalanceAfter),
		CreatedAt:     formatTimestamp(t.CreatedAt),
	}
}
