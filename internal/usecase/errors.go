package usecase

import "errors"

// Ledger and reconciliation error taxonomy. Validation errors go back to the
// caller for correction; gateway errors carry their own Retryable flag (see
// internal/gateway); signature failures never reach the external caller.
var (
	ErrInvalidAmount   = errors.New("invalid amount: must be greater than zero")
	ErrExceedsBalance  = errors.New("amount exceeds remaining balance")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrInvalidTransition  = errors.New("invalid payment status transition")
	ErrReceiptUnavailable = errors.New("receipt available only for completed payments")

	ErrNoTransactions          = errors.New("no transactions found for bill")
	ErrNoSuccessfulTransaction = errors.New("no successful transaction for bill")

	// ErrDuplicateTransaction is internal: callers treat it as success.
	ErrDuplicateTransaction = errors.New("transaction already recorded")

	// ErrInvalidSignature is logged, never surfaced with detail.
	ErrInvalidSignature = errors.New("callback signature verification failed")
)
