package entity

import (
	"time"

	tport "github.com/djkraph/payment-processor/internal/domain/port/core"
)

// Status defines possible status values for a payment transaction
type Status string

// Transaction status constants. A transaction starts pending and moves to
// exactly one of the terminal states; there is no transition out of a
// terminal state.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether the status is one of the settled states
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// ExpiryWindow is how long a pending transaction stays payable before it is
// treated as expired on next observation
const ExpiryWindow = 2 * time.Minute

// Metadata carries opaque pass-through fields attached at initiation time.
// They are stored and optionally echoed, never interpreted.
type Metadata struct {
	Description string
	Remark      string
	UserAgent   string
}

// Transaction represents one STK push payment attempt, keyed by its
// checkout request ID
type Transaction struct {
	CheckoutRequestID  string         // Primary key, generated at push time
	Phone              string         // Canonical 254XXXXXXXXX number
	Amount             int64          // Whole currency units (KES)
	AccountReference   string         // Business reference attached to the push
	Status             Status         // Current state in the payment lifecycle
	CreatedAt          time.Time      // When the push was initiated
	ExpiresAt          time.Time      // CreatedAt + ExpiryWindow
	CompletedAt        *time.Time     // Set only on successful completion
	FailureReason      string         // Set only on failure
	MpesaReceiptNumber string         // Set only on successful completion
	PushResponse       map[string]any // Raw provider push response, kept for audit
	Metadata           Metadata       // Opaque pass-through
}

// NewTransaction creates a pending transaction with its expiry window set
// from the injected clock
func NewTransaction(
	checkoutRequestID string,
	phone string,
	amount int64,
	accountReference string,
	metadata Metadata,
	timeProvider tport.TimeProvider,
) *Transaction {
	now := timeProvider.Now()
	return &Transaction{
		CheckoutRequestID: checkoutRequestID,
		Phone:             phone,
		Amount:            amount,
		AccountReference:  accountReference,
		Status:            StatusPending,
		CreatedAt:         now,
		ExpiresAt:         now.Add(ExpiryWindow),
		Metadata:          metadata,
	}
}

// ExpiredAt reports whether the payment window has passed at the given
// instant while the transaction is still pending. Terminal transactions are
// never considered expired; they keep their settled state.
func (t *Transaction) ExpiredAt(now time.Time) bool {
	return t.Status == StatusPending && now.After(t.ExpiresAt)
}

// MaskedPhone returns the payer's number with the middle digits hidden
func (t *Transaction) MaskedPhone() string {
	return MaskPhoneNumber(t.Phone)
}

// Clone returns a deep-enough copy, so store snapshots can cross goroutine
// boundaries without sharing mutable state
func (t *Transaction) Clone() *Transaction {
	cp := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	if t.PushResponse != nil {
		raw := make(map[string]any, len(t.PushResponse))
		for k, v := range t.PushResponse {
			raw[k] = v
		}
		cp.PushResponse = raw
	}
	return &cp
}
