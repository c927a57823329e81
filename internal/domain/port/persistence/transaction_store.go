package persistence

import (
	"context"
	"time"

	"github.com/djkraph/payment-processor/internal/domain/entity"
)

// TransactionStore is the sole source of truth for payment status between
// the push request and its confirmation. Implementations must guard terminal
// transitions: Complete, Fail and Expire move a transaction out of pending
// only, so the polling path and the webhook path can race on the same record
// without lost updates. Each guarded method returns the post-call snapshot
// and whether this call performed the transition.
type TransactionStore interface {
	// Save stores a newly created transaction; ErrDuplicateTransaction if
	// the checkout request ID is already present
	Save(ctx context.Context, txn *entity.Transaction) error

	// Get returns a snapshot of the transaction, or ErrTransactionNotFound
	Get(ctx context.Context, checkoutRequestID string) (*entity.Transaction, error)

	// Complete transitions pending → completed, recording the receipt number
	// and completion time
	Complete(ctx context.Context, checkoutRequestID, receiptNumber string, at time.Time) (*entity.Transaction, bool, error)

	// Fail transitions pending → failed, recording the failure reason
	Fail(ctx context.Context, checkoutRequestID, reason string) (*entity.Transaction, bool, error)

	// Expire transitions pending → expired
	Expire(ctx context.Context, checkoutRequestID string) (*entity.Transaction, bool, error)
}
