package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeEmptyOrder          = "EMPTY_ORDER"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeOrderNotCancellable = "ORDER_NOT_CANCELLABLE"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeConflict            = "TRANSACTION_CONFLICT"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure returned as a value across the
// service boundary, never thrown as an opaque exception.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyOrder          = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderNotCancellable = NewDomainError(ErrCodeOrderNotCancellable, "Order cannot be cancelled")
	ErrStoreUnavailable    = NewDomainError(ErrCodeStoreUnavailable, "Store unavailable, retry later")
	ErrTransactionConflict = NewDomainError(ErrCodeConflict, "Concurrent modification detected")
)

// InsufficientStockError reports a line item that cannot be fulfilled.
// It carries enough detail for the caller to let the user adjust
// quantities and resubmit.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}
