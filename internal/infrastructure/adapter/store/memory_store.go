package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
	coreport "github.com/djkraph/payment-processor/internal/domain/port/core"
	"github.com/djkraph/payment-processor/internal/domain/port/persistence"
)

// MemoryTransactionStore keeps payment attempts in a process-local map.
// Lifecycle is bounded by the process; no persistence is claimed. Terminal
// transitions are compare-and-set under the lock: a transaction moves out of
// pending exactly once, so the polling path and the webhook path can race on
// the same record and whichever wins settles it, while the loser observes
// the already-settled snapshot.
type MemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]*entity.Transaction
	logger       coreport.Logger
}

// NewMemoryTransactionStore creates an empty in-memory store
func NewMemoryTransactionStore(logger coreport.Logger) *MemoryTransactionStore {
	return &MemoryTransactionStore{
		transactions: make(map[string]*entity.Transaction),
		logger:       logger,
	}
}

var _ persistence.TransactionStore = (*MemoryTransactionStore)(nil)

// Save stores a newly created transaction under its checkout request ID
func (s *MemoryTransactionStore) Save(_ context.Context, txn *entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[txn.CheckoutRequestID]; ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateTransaction, txn.CheckoutRequestID)
	}

	s.transactions[txn.CheckoutRequestID] = txn.Clone()
	return nil
}

// Get returns a snapshot of the transaction
func (s *MemoryTransactionStore) Get(_ context.Context, checkoutRequestID string) (*entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[checkoutRequestID]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	return txn.Clone(), nil
}

// Complete transitions pending → completed with the receipt number
func (s *MemoryTransactionStore) Complete(_ context.Context, checkoutRequestID, receiptNumber string, at time.Time) (*entity.Transaction, bool, error) {
	return s.transition(checkoutRequestID, func(txn *entity.Transaction) {
		txn.Status = entity.StatusCompleted
		txn.MpesaReceiptNumber = receiptNumber
		completedAt := at
		txn.CompletedAt = &completedAt
	})
}

// Fail transitions pending → failed with the failure reason
func (s *MemoryTransactionStore) Fail(_ context.Context, checkoutRequestID, reason string) (*entity.Transaction, bool, error) {
	return s.transition(checkoutRequestID, func(txn *entity.Transaction) {
		txn.Status = entity.StatusFailed
		txn.FailureReason = reason
	})
}

// Expire transitions pending → expired
func (s *MemoryTransactionStore) Expire(_ context.Context, checkoutRequestID string) (*entity.Transaction, bool, error) {
	return s.transition(checkoutRequestID, func(txn *entity.Transaction) {
		txn.Status = entity.StatusExpired
	})
}

// transition applies a terminal mutation only when the transaction is still
// pending, returning the post-call snapshot and whether this call won
func (s *MemoryTransactionStore) transition(checkoutRequestID string, mutate func(*entity.Transaction)) (*entity.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[checkoutRequestID]
	if !ok {
		return nil, false, errs.ErrTransactionNotFound
	}

	if txn.Status.Terminal() {
		return txn.Clone(), false, nil
	}

	mutate(txn)
	return txn.Clone(), true, nil
}

// Len reports how many transactions the store currently holds
func (s *MemoryTransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}
