package domain

import "errors"

// ErrNotFound is the kind shared by every lookup miss. Use
// errors.Is(err, ErrNotFound) to detect any of the *NotFound sentinels.
var ErrNotFound = errors.New("not_found")

// notFoundError is a sentinel that also matches ErrNotFound.
type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrStockNotFound   error = notFoundError("stock_not_found")
	ErrUserNotFound    error = notFoundError("user_not_found")
	ErrWebhookNotFound error = notFoundError("webhook_not_found")

	ErrStockAlreadyExists   = errors.New("stock_already_exists")
	ErrUserAlreadyExists    = errors.New("user_already_exists")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInsufficientBalance  = errors.New("insufficient_balance")
	ErrInsufficientHoldings = errors.New("insufficient_holdings")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
