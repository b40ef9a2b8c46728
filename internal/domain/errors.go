package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountAlreadyExists = errors.New("account_already_exists")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrOrderNotCancellable  = errors.New("order_not_cancellable")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")
	ErrConflict             = errors.New("conflict")
	ErrWebhookNotFound      = errors.New("webhook_not_found")

	// ErrInternalInconsistency means an invariant check failed inside a
	// ledger transaction (negative balance, negative quantity, overfill).
	// The transaction is aborted; this must never surface in normal
	// operation.
	ErrInternalInconsistency = errors.New("internal_inconsistency")
)

// ValidationError represents a request validation failure: malformed ids,
// amounts, or order shapes.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
