package entity

import (
	"fmt"
	"strings"

	errs "github.com/djkraph/payment-processor/internal/domain/error"
)

// Phone number constants for the Kenyan M-Pesa network
const (
	// CountryCode is the international prefix every canonical number carries
	CountryCode = "254"

	// SubscriberDigits is the number of digits following the country code
	SubscriberDigits = 9

	// canonicalLength is the total length of a canonical number (254 + 9 digits)
	canonicalLength = len(CountryCode) + SubscriberDigits
)

// FormatPhoneNumber normalizes a raw phone string into canonical
// international form:
// - strips all non-digit characters
// - a leading national trunk "0" is replaced with the country code
// - a number not starting with the country code gets it prepended
// It is total: it always returns a string; validity is a separate check.
// Examples: "0712345678" and "+254 712-345-678" both become "254712345678".
func FormatPhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "0") {
		cleaned = CountryCode + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, CountryCode) {
		cleaned = CountryCode + cleaned
	}

	return cleaned
}

// ValidatePhoneNumber normalizes the raw input and returns the canonical
// number, or ErrInvalidPhoneNumber when the canonical form is not exactly
// the country code followed by nine digits
func ValidatePhoneNumber(phone string) (string, error) {
	formatted := FormatPhoneNumber(phone)

	if len(formatted) != canonicalLength {
		return "", fmt.Errorf("%w: use 0712345678 or 254712345678", errs.ErrInvalidPhoneNumber)
	}

	return formatted, nil
}

// MaskPhoneNumber hides the middle digits of a canonical number for display,
// keeping the first six and the trailing digits visible
func MaskPhoneNumber(phone string) string {
	if len(phone) < canonicalLength {
		return phone
	}
	return phone[:6] + "***" + phone[9:]
}
