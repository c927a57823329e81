package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidPhoneNumber  = 4001
	CodeInvalidAmount       = 4002
	CodeInvalidRequest      = 4003
	CodeTransactionNotFound = 4040

	// 5xxx - Server / upstream errors
	CodeInternalServer       = 5000
	CodePushRejected         = 5020
	CodeStatusCheckFailed    = 5021
	CodeConfigurationMissing = 5030
	CodeTokenAcquisition     = 5031
)

// Base error types
var (
	// ErrInvalidPhoneNumber is returned when a phone number cannot be
	// normalized into the canonical 254XXXXXXXXX form
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")

	// ErrInvalidAmount is returned when the amount is outside the allowed range
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTransactionNotFound is returned when no transaction exists for a
	// checkout request ID
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateTransaction is returned when a transaction with the same
	// checkout request ID already exists in the store
	ErrDuplicateTransaction = errors.New("transaction with this checkout request ID already exists")

	// ErrTokenAcquisitionFailed is returned when the M-Pesa OAuth token
	// endpoint cannot be reached or rejects the credentials
	ErrTokenAcquisitionFailed = errors.New("failed to acquire M-Pesa access token")

	// ErrPushRejected is returned when the STK push request is rejected by
	// the provider (non-2xx response or a nonzero ResponseCode)
	ErrPushRejected = errors.New("STK push rejected by provider")

	// ErrStatusCheckFailed is returned when the status query to the provider
	// fails for transient reasons; transaction state is left untouched
	ErrStatusCheckFailed = errors.New("payment status check failed")

	// ErrConfigurationMissing is returned when the M-Pesa consumer key or
	// secret is not configured
	ErrConfigurationMissing = errors.New("M-Pesa credentials not configured")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPhoneNumber):
		return CodeInvalidPhoneNumber
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrPushRejected):
		return CodePushRejected
	case errors.Is(err, ErrStatusCheckFailed):
		return CodeStatusCheckFailed
	case errors.Is(err, ErrConfigurationMissing):
		return CodeConfigurationMissing
	case errors.Is(err, ErrTokenAcquisitionFailed):
		return CodeTokenAcquisition
	default:
		return CodeInternalServer
	}
}

// PushError represents a rejected STK push request with the provider's
// diagnostic attached
type PushError struct {
	CheckoutRequestID string
	Phone             string
	Amount            int64
	ResponseCode      string
	Description       string
}

// Error implements the error interface for PushError
func (e *PushError) Error() string {
	return fmt.Sprintf("STK push rejected for %s (phone: %s, amount: %d): code=%s desc=%s",
		e.CheckoutRequestID, e.Phone, e.Amount, e.ResponseCode, e.Description)
}

// Is checks if the target error is an ErrPushRejected
func (e *PushError) Is(target error) bool {
	return target == ErrPushRejected
}

// LogFields returns a map of fields for structured logging
func (e *PushError) LogFields() map[string]any {
	return map[string]any{
		"error_type":          "push_rejected",
		"checkout_request_id": e.CheckoutRequestID,
		"phone":               e.Phone,
		"amount":              e.Amount,
		"response_code":       e.ResponseCode,
		"description":         e.Description,
		"error_code":          CodePushRejected,
	}
}

// NewPushError creates a detailed push rejection error
func NewPushError(checkoutRequestID, phone string, amount int64, responseCode, description string) error {
	return &PushError{
		CheckoutRequestID: checkoutRequestID,
		Phone:             phone,
		Amount:            amount,
		ResponseCode:      responseCode,
		Description:       description,
	}
}

// IsNotFoundError checks if the error is a transaction not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound)
}

// IsValidationError checks if the error is an input validation error,
// detected before any external call is attempted
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPhoneNumber) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsUpstreamAuthError checks if the error came from token acquisition or
// missing provider credentials
func IsUpstreamAuthError(err error) bool {
	return errors.Is(err, ErrTokenAcquisitionFailed) ||
		errors.Is(err, ErrConfigurationMissing)
}

// IsPushRejectedError checks if the error is a provider-side push rejection
func IsPushRejectedError(err error) bool {
	return errors.Is(err, ErrPushRejected)
}

// IsStatusCheckError checks if the error is a transient status query failure
func IsStatusCheckError(err error) bool {
	return errors.Is(err, ErrStatusCheckFailed)
}
