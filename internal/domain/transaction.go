package domain

import "time"

// TransactionType distinguishes fund deposits from withdrawals.
type TransactionType string

const (
	TransactionAdd      TransactionType = "add"
	TransactionWithdraw TransactionType = "withdraw"
)

// Transaction is one entry in an account's funds history. BalanceAfter
// records the balance at commit time, cents.
type Transaction struct {
	TransactionID string
	AccountID     string
	Type          TransactionType
	Amount        int64
	BalanceAfter  int64
	CreatedAt     time.Time
}
