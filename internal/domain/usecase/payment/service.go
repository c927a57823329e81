package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
	coreport "github.com/djkraph/payment-processor/internal/domain/port/core"
	"github.com/djkraph/payment-processor/internal/domain/port/gateway"
	"github.com/djkraph/payment-processor/internal/domain/port/persistence"
)

// Provider result codes. Code 1050 is the only code the provider taxonomy
// documents as terminal failure (payer cancelled the prompt); every other
// nonzero code is treated as still pending.
const (
	ResultCodeSuccess   = "0"
	ResultCodeCancelled = "1050"
)

// Config carries business defaults for the payment service
type Config struct {
	BusinessShortCode string
	AccountReference  string // Prefix for generated references
	TransactionDesc   string
	MinAmount         int64
	MaxAmount         int64
}

// Service orchestrates payment initiation, status reconciliation and
// webhook callbacks over a shared transaction store. It is constructed once
// at process start and passed by reference to request handlers.
type Service struct {
	store        persistence.TransactionStore
	gateway      gateway.Gateway
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	validator    *Validator
	cfg          Config
}

// NewService creates a new payment service
func NewService(
	store persistence.TransactionStore,
	gw gateway.Gateway,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	if cfg.AccountReference == "" {
		cfg.AccountReference = "DJKRAPH"
	}
	if cfg.TransactionDesc == "" {
		cfg.TransactionDesc = "DJ Kraph Music Purchase"
	}

	return &Service{
		store:        store,
		gateway:      gw,
		timeProvider: timeProvider,
		logger:       logger,
		validator:    NewValidator(cfg.MinAmount, cfg.MaxAmount),
		cfg:          cfg,
	}
}

// GetTransaction returns a snapshot of the transaction for inspection
func (s *Service) GetTransaction(ctx context.Context, checkoutRequestID string) (*entity.Transaction, error) {
	return s.store.Get(ctx, checkoutRequestID)
}

// statusCodeFor maps domain errors to the HTTP status each endpoint reports
func statusCodeFor(err error) int {
	switch {
	case errs.IsValidationError(err):
		return http.StatusBadRequest
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errs.IsUpstreamAuthError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// timestamp14 renders the provider's 14-digit wall-clock timestamp format
func timestamp14(t time.Time) string {
	return t.Format("20060102150405")
}
