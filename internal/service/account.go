package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
	"github.com/Dhanu0746/Zerodha-clone/internal/oracle"
)

var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// BalanceResponse represents the response for the account balance endpoint.
type BalanceResponse struct {
	AccountID     string
	Balance       int64
	ReservedCash  int64
	AvailableCash int64
	UpdatedAt     time.Time
}

// HoldingView is a single position in the portfolio response, priced at
// the current reference price.
type HoldingView struct {
	Symbol            string
	Quantity          int64
	CommittedQuantity int64
	AvailableQuantity int64
	AvgCost           int64 // cents, rounded
	CurrentPrice      int64 // cents
	MarketValue       int64 // cents
	InvestedValue     int64 // cents
	UnrealizedPnL     int64 // cents
}

// PortfolioResponse aggregates cash and positions for the dashboard.
type PortfolioResponse struct {
	AccountID     string
	Balance       int64
	ReservedCash  int64
	AvailableCash int64
	Holdings      []HoldingView
	TotalValue    int64 // cash plus market value of positions, cents
	SnapshotAt    time.Time
}

// AccountService handles account opening, balances, funds movements, and
// the portfolio view.
type AccountService struct {
	ledger          *ledger.Store
	oracle          oracle.Oracle
	startingBalance int64
}

// NewAccountService creates an AccountService. startingBalance is the
// cash, in cents, credited to every newly opened account.
func NewAccountService(store *ledger.Store, priceOracle oracle.Oracle, startingBalance int64) *AccountService {
	return &AccountService{
		ledger:          store,
		oracle:          priceOracle,
		startingBalance: startingBalance,
	}
}

// Open validates the account ID and creates the account with the starting
// balance.
func (s *AccountService) Open(accountID string) (*domain.Account, error) {
	if !accountIDRegex.MatchString(accountID) {
		return nil, &domain.ValidationError{
			Message: "account_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	acct := &domain.Account{
		AccountID: accountID,
		Balance:   s.startingBalance,
		Holdings:  make(map[string]*domain.Holding),
		CreatedAt: time.Now(),
	}
	if err := s.ledger.CreateAccount(acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// GetBalance returns the account's cash position including reservations.
func (s *AccountService) GetBalance(accountID string) (*BalanceResponse, error) {
	acct, err := s.ledger.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		AccountID:     acct.AccountID,
		Balance:       acct.Balance,
		ReservedCash:  acct.ReservedCash,
		AvailableCash: acct.AvailableCash(),
		UpdatedAt:     time.Now(),
	}, nil
}

// Deposit credits funds to the account and appends a transaction record.
func (s *AccountService) Deposit(ctx context.Context, accountID string, amount float64) (*domain.Transaction, error) {
	cents, err := validateAmount(amount)
	if err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	err = s.ledger.Update(ctx, accountID, func(tx *ledger.Tx) error {
		tx.AdjustBalance(cents)
		txn = &domain.Transaction{
			TransactionID: uuid.New().String(),
			AccountID:     accountID,
			Type:          domain.TransactionAdd,
			Amount:        cents,
			BalanceAfter:  tx.Account.Balance,
			CreatedAt:     time.Now(),
		}
		tx.AppendTransaction(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Withdraw debits funds from the account. Only unreserved cash can be
// withdrawn; funds pledged to open buy orders stay put.
func (s *AccountService) Withdraw(ctx context.Context, accountID string, amount float64) (*domain.Transaction, error) {
	cents, err := validateAmount(amount)
	if err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	err = s.ledger.Update(ctx, accountID, func(tx *ledger.Tx) error {
		if cents > tx.Account.AvailableCash() {
			return domain.ErrInsufficientFunds
		}
		tx.AdjustBalance(-cents)
		txn = &domain.Transaction{
			TransactionID: uuid.New().String(),
			AccountID:     accountID,
			Type:          domain.TransactionWithdraw,
			Amount:        cents,
			BalanceAfter:  tx.Account.Balance,
			CreatedAt:     time.Now(),
		}
		tx.AppendTransaction(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Transactions returns the account's funds history, newest first.
func (s *AccountService) Transactions(accountID string) ([]*domain.Transaction, error) {
	if !s.ledger.Exists(accountID) {
		return nil, domain.ErrAccountNotFound
	}
	return s.ledger.Transactions(accountID), nil
}

// GetPortfolio returns cash plus every position valued at the current
// reference price.
func (s *AccountService) GetPortfolio(ctx context.Context, accountID string) (*PortfolioResponse, error) {
	acct, err := s.ledger.GetAccount(accountID)
	if err != nil {
		return nil, err
	}

	resp := &PortfolioResponse{
		AccountID:     acct.AccountID,
		Balance:       acct.Balance,
		ReservedCash:  acct.ReservedCash,
		AvailableCash: acct.AvailableCash(),
		Holdings:      make([]HoldingView, 0, len(acct.Holdings)),
		TotalValue:    acct.Balance,
		SnapshotAt:    time.Now(),
	}

	for _, h := range acct.Holdings {
		quote := s.oracle.ReferencePrice(ctx, h.Symbol)
		avgCost := h.AvgCost.Round(0).IntPart()
		marketValue := quote.Price * h.Quantity
		investedValue := h.AvgCost.Mul(decimal.NewFromInt(h.Quantity)).Round(0).IntPart()

		resp.Holdings = append(resp.Holdings, HoldingView{
			Symbol:            h.Symbol,
			Quantity:          h.Quantity,
			CommittedQuantity: h.CommittedQuantity,
			AvailableQuantity: h.AvailableQuantity(),
			AvgCost:           avgCost,
			CurrentPrice:      quote.Price,
			MarketValue:       marketValue,
			InvestedValue:     investedValue,
			UnrealizedPnL:     marketValue - investedValue,
		})
		resp.TotalValue += marketValue
	}

	return resp, nil
}

func validateAmount(amount float64) (int64, error) {
	if amount <= 0 {
		return 0, &domain.ValidationError{Message: "amount must be greater than 0"}
	}
	cents, err := domain.DollarsToCents(amount)
	if err != nil {
		return 0, &domain.ValidationError{Message: "amount must have at most 2 decimal places"}
	}
	return cents, nil
}
