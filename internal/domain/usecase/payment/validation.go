package payment

import (
	"fmt"
	"math"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
)

// Default amount bounds in whole KES, matching the provider's STK push limits
const (
	DefaultMinAmount int64 = 1
	DefaultMaxAmount int64 = 150000
)

// Validator provides input validation for payment requests. All checks run
// before any external call is attempted.
type Validator struct {
	minAmount int64
	maxAmount int64
}

// NewValidator creates a new Validator; zero bounds fall back to the
// provider defaults
func NewValidator(minAmount, maxAmount int64) *Validator {
	if minAmount <= 0 {
		minAmount = DefaultMinAmount
	}
	if maxAmount <= 0 {
		maxAmount = DefaultMaxAmount
	}
	return &Validator{minAmount: minAmount, maxAmount: maxAmount}
}

// ValidateAmount checks that the amount is a whole number of currency units
// within the allowed range and returns it as such. The input is a float
// because JSON carries no integer type; a fractional amount is rejected the
// same way an out-of-range one is.
func (v *Validator) ValidateAmount(amount float64) (int64, error) {
	if amount != math.Trunc(amount) || amount < float64(v.minAmount) || amount > float64(v.maxAmount) {
		return 0, fmt.Errorf("%w: amount must be between %d and %d KES",
			errs.ErrInvalidAmount, v.minAmount, v.maxAmount)
	}
	return int64(amount), nil
}

// ValidatePhone normalizes and validates the payer's phone number
func (v *Validator) ValidatePhone(phone string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("%w: phone number required", errs.ErrInvalidPhoneNumber)
	}
	return entity.ValidatePhoneNumber(phone)
}
