package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the commerce and payment core. Controllers map these
// to HTTP status codes; the messages are shown to the caller verbatim except
// for provider failures, which surface a generic retry message.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrAlreadyFinalized  = errors.New("order is already checked out")
	ErrAlreadyConfirmed  = errors.New("payment is already confirmed")
	ErrNotCancelable     = errors.New("payment can no longer be canceled")
	ErrUnsupportedMethod = errors.New("operation not supported for this payment method")
	ErrUnauthorized      = errors.New("not allowed to access this resource")
	ErrForbidden         = errors.New("staff permission required")
)

// ValidationError reports bad input shape or values.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError aborts a cart mutation when the requested total
// exceeds the item's stored stock. The whole mutation is rolled back.
type InsufficientStockError struct {
	ItemID    uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: %d available, %d requested", e.ItemID, e.Available, e.Requested)
}

// ProviderError wraps a failed or malformed response from an external
// payment provider. The wrapped cause stays server-side; callers see a
// generic retryable message.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider call failed: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProvider wraps cause as a ProviderError for the named provider.
func NewProvider(provider string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Cause: cause}
}
