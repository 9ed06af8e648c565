package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Stable error codes. Callers branch on Code, never on message text.
const (
	CodeInsufficientBalance   = "WAL_001"
	CodeInvalidTopUpAmount    = "WAL_002"
	CodeInvalidPurchaseAmount = "WAL_003"
	CodeTransactionNotFound   = "WAL_004"
	CodeNoItemsToPurchase     = "WAL_005"
	CodeInvalidRefundAmount   = "WAL_006"

	CodeStorageSaveFailed = "STG_001"
	CodeStorageLoadFailed = "STG_002"

	CodeAPITimeout       = "API_001"
	CodeAPINetworkError  = "API_002"
	CodeAPIRequestFailed = "API_003"

	CodeValidationFailed = "VAL_001"

	CodeUnknown = "SYS_001"
)

// AppError is a structured error: a stable code, a human-readable message,
// and a data payload holding the field values relevant to the failure.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"` // Wrapped cause (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps a cause with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithData attaches the structured payload and returns the error.
func (e *AppError) WithData(data map[string]any) *AppError {
	e.Data = data
	return e
}

// ---- Wallet ledger (WAL) ----

func ErrInsufficientBalance(required, current decimal.Decimal) *AppError {
	return New(
		CodeInsufficientBalance,
		fmt.Sprintf("Insufficient balance. Required: $%s, Available: $%s",
			required.StringFixed(2), current.StringFixed(2)),
		http.StatusPaymentRequired,
	).WithData(map[string]any{
		"required_amount": required,
		"current_balance": current,
		"shortfall":       required.Sub(current),
	})
}

func ErrInvalidTopUpAmount(amount decimal.Decimal) *AppError {
	return New(
		CodeInvalidTopUpAmount,
		fmt.Sprintf("Top-up amount must be greater than 0. Provided: $%s", amount.StringFixed(2)),
		http.StatusBadRequest,
	).WithData(map[string]any{"amount": amount})
}

func ErrInvalidPurchaseAmount(amount decimal.Decimal) *AppError {
	return New(
		CodeInvalidPurchaseAmount,
		fmt.Sprintf("Purchase amount must be greater than 0. Provided: $%s", amount.StringFixed(2)),
		http.StatusBadRequest,
	).WithData(map[string]any{"amount": amount})
}

func ErrTransactionNotFound(transactionID string) *AppError {
	return New(
		CodeTransactionNotFound,
		fmt.Sprintf("Transaction not found with ID: %s", transactionID),
		http.StatusNotFound,
	).WithData(map[string]any{"transaction_id": transactionID})
}

func ErrNoItemsToPurchase() *AppError {
	return New(CodeNoItemsToPurchase, "No items to purchase. Cart is empty.", http.StatusBadRequest)
}

func ErrInvalidRefundAmount(amount decimal.Decimal) *AppError {
	return New(
		CodeInvalidRefundAmount,
		fmt.Sprintf("Refund amount must be greater than 0. Provided: $%s", amount.StringFixed(2)),
		http.StatusBadRequest,
	).WithData(map[string]any{"amount": amount})
}

// ---- Storage gateway (STG) ----

func ErrStorageSaveFailed(err error) *AppError {
	return Wrap(CodeStorageSaveFailed, "Failed to save wallet data", http.StatusInternalServerError, err)
}

func ErrStorageLoadFailed(err error) *AppError {
	return Wrap(CodeStorageLoadFailed, "Failed to load wallet data", http.StatusInternalServerError, err)
}

// ---- Catalog API (API) ----

func ErrAPITimeout(endpoint string) *AppError {
	return New(CodeAPITimeout, "API request timed out", http.StatusGatewayTimeout).
		WithData(map[string]any{"endpoint": endpoint})
}

func ErrAPINetworkError(endpoint string, err error) *AppError {
	return Wrap(CodeAPINetworkError, "API network error", http.StatusBadGateway, err).
		WithData(map[string]any{"endpoint": endpoint})
}

func ErrAPIRequestFailed(statusCode int, endpoint string) *AppError {
	return New(
		CodeAPIRequestFailed,
		fmt.Sprintf("API request failed with status %d", statusCode),
		http.StatusBadGateway,
	).WithData(map[string]any{"status_code": statusCode, "endpoint": endpoint})
}

// ---- Input validation (VAL) ----

// Validation returns a request validation error with the given message.
func Validation(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

// ---- Catch-all (SYS) ----

// Unknown wraps an uncategorized error, preserving its message.
func Unknown(err error) *AppError {
	msg := "An unknown error occurred"
	if err != nil {
		msg = err.Error()
	}
	return Wrap(CodeUnknown, msg, http.StatusInternalServerError, err)
}

// Normalize deterministically maps any error into the taxonomy: an AppError
// passes through unchanged, anything else becomes Unknown.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unknown(err)
}
