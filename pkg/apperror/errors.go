package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	KindOutOfStock         Kind = "OUT_OF_STOCK"
	KindExpiredBatch       Kind = "EXPIRED_BATCH"
	KindInvalidQuantity    Kind = "INVALID_QUANTITY"
	KindLimitExceeded      Kind = "LIMIT_EXCEEDED"
	KindCreditDisabled     Kind = "CREDIT_DISABLED"
	KindPersistenceFailure Kind = "PERSISTENCE_FAILURE"
	KindRenderFailure      Kind = "RENDER_FAILURE"
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidState       Kind = "INVALID_STATE"
	KindEmptyCart          Kind = "EMPTY_CART"
	KindValidation         Kind = "VALIDATION"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindConflict           Kind = "CONFLICT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInternal           Kind = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int            `json:"code"`
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Errors  []FieldError   `json:"errors,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError of the same kind, so callers can write
// errors.Is(err, apperror.ErrOutOfStock).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind != "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrOutOfStock         = &AppError{Code: http.StatusConflict, Kind: KindOutOfStock, Message: "Out of stock"}
	ErrExpiredBatch       = &AppError{Code: http.StatusConflict, Kind: KindExpiredBatch, Message: "Batch has expired"}
	ErrInvalidQuantity    = &AppError{Code: http.StatusBadRequest, Kind: KindInvalidQuantity, Message: "Invalid quantity"}
	ErrLimitExceeded      = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindLimitExceeded, Message: "Credit limit exceeded"}
	ErrCreditDisabled     = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindCreditDisabled, Message: "Credit is not enabled for this customer"}
	ErrPersistenceFailure = &AppError{Code: http.StatusServiceUnavailable, Kind: KindPersistenceFailure, Message: "Could not persist changes"}
	ErrRenderFailure      = &AppError{Code: http.StatusInternalServerError, Kind: KindRenderFailure, Message: "Receipt rendering failed"}
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrInvalidState       = &AppError{Code: http.StatusConflict, Kind: KindInvalidState, Message: "Invalid checkout state"}
	ErrEmptyCart          = &AppError{Code: http.StatusBadRequest, Kind: KindEmptyCart, Message: "Cart is empty"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
)

// NewAppError creates a new application error
func NewAppError(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewOutOfStockError reports a request that exceeds what is on hand.
func NewOutOfStockError(product string, requested, available decimal.Decimal) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindOutOfStock,
		Message: fmt.Sprintf("Insufficient stock for %s: requested %s, available %s", product, requested.String(), available.String()),
		Details: map[string]any{
			"product":   product,
			"requested": requested.String(),
			"available": available.String(),
		},
	}
}

// NewExpiredBatchError reports a batch whose expiry date has passed.
func NewExpiredBatchError(batchLabel string, expiredOn string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindExpiredBatch,
		Message: fmt.Sprintf("Batch %s expired on %s", batchLabel, expiredOn),
		Details: map[string]any{
			"batch":      batchLabel,
			"expired_on": expiredOn,
		},
	}
}

// NewInvalidQuantityError reports a negative or unparsable quantity or amount.
func NewInvalidQuantityError(field, value string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidQuantity,
		Message: fmt.Sprintf("Invalid %s: %q", field, value),
		Details: map[string]any{
			"field": field,
			"value": value,
		},
	}
}

// NewLimitExceededError reports a credit sale that would push the balance past the limit.
// available is what could still be sold on credit.
func NewLimitExceededError(balance, limit, amount, available decimal.Decimal) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindLimitExceeded,
		Message: fmt.Sprintf("Credit limit exceeded: balance %s + amount %s > limit %s", balance.StringFixed(2), amount.StringFixed(2), limit.StringFixed(2)),
		Details: map[string]any{
			"current_balance": balance.StringFixed(2),
			"credit_limit":    limit.StringFixed(2),
			"amount":          amount.StringFixed(2),
			"available":       available.StringFixed(2),
		},
	}
}

// NewCreditDisabledError reports a credit sale attempted for a customer that cannot buy on credit.
func NewCreditDisabledError(reason string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindCreditDisabled,
		Message: "Credit sale not allowed: " + reason,
	}
}

// NewPersistenceError wraps a storage failure that aborted a unit of work.
func NewPersistenceError(err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindPersistenceFailure,
		Message: "Could not persist changes, nothing was committed",
		cause:   err,
	}
}

// NewRenderError wraps a receipt formatting failure.
func NewRenderError(err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindRenderFailure,
		Message: "Receipt rendering failed",
		cause:   err,
	}
}

// NewInvalidStateError reports an operation not allowed in the current checkout state.
func NewInvalidStateError(state string, op string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("Cannot %s a checkout in state %s", op, state),
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
