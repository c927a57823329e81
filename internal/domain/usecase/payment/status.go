package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
)

// StatusResult represents the normalized outcome of a status check
type StatusResult struct {
	Success       bool
	Status        entity.Status
	ReceiptNumber string
	Message       string
	Amount        float64
	CompletedAt   *time.Time
	StatusCode    int
}

// CheckStatus resolves the current status of a transaction. Terminal
// transactions are answered from the store without any external call, so
// settled results stay idempotent and the provider is never queried twice
// for the same outcome. Pending transactions past their expiry window are
// transitioned to expired; otherwise the provider is queried and its result
// code interpreted.
func (s *Service) CheckStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	txn, err := s.store.Get(ctx, checkoutRequestID)
	if err != nil {
		return &StatusResult{
			Success:    false,
			Message:    "Transaction not found",
			StatusCode: statusCodeFor(err),
		}, err
	}

	now := s.timeProvider.Now()

	if txn.ExpiredAt(now) {
		snap, transitioned, err := s.store.Expire(ctx, checkoutRequestID)
		if err != nil {
			return s.statusError(checkoutRequestID, err), err
		}
		if transitioned {
			s.logger.Info("Transaction expired", map[string]any{
				"checkout_request_id": checkoutRequestID,
			})
		}
		return s.terminalResult(snap), nil
	}

	if txn.Status.Terminal() {
		return s.terminalResult(txn), nil
	}

	resp, err := s.gateway.STKQuery(ctx, checkoutRequestID)
	if err != nil {
		// Transient; transaction state is left untouched so the caller can retry
		if !errs.IsStatusCheckError(err) && !errs.IsUpstreamAuthError(err) {
			err = fmt.Errorf("%w: %s", errs.ErrStatusCheckFailed, err.Error())
		}
		return s.statusError(checkoutRequestID, err), err
	}

	switch resp.ResultCode {
	case ResultCodeSuccess:
		snap, transitioned, err := s.store.Complete(ctx, checkoutRequestID, resp.MpesaReceiptNumber, now)
		if err != nil {
			return s.statusError(checkoutRequestID, err), err
		}
		if transitioned {
			s.logger.Info("Payment completed via status query", map[string]any{
				"checkout_request_id": checkoutRequestID,
				"receipt_number":      resp.MpesaReceiptNumber,
			})
		}
		result := s.terminalResult(snap)
		result.Amount = resp.Amount
		return result, nil

	case ResultCodeCancelled:
		snap, transitioned, err := s.store.Fail(ctx, checkoutRequestID, resp.ResultDesc)
		if err != nil {
			return s.statusError(checkoutRequestID, err), err
		}
		if transitioned {
			s.logger.Info("Payment failed", map[string]any{
				"checkout_request_id": checkoutRequestID,
				"reason":              resp.ResultDesc,
			})
		}
		return s.terminalResult(snap), nil

	default:
		// No result code yet, or a code outside the documented taxonomy
		return &StatusResult{
			Success:    true,
			Status:     entity.StatusPending,
			Message:    "Waiting for user to complete payment",
			StatusCode: http.StatusOK,
		}, nil
	}
}

// terminalResult renders a settled transaction snapshot as a status result.
// Repeated calls produce the identical payload.
func (s *Service) terminalResult(txn *entity.Transaction) *StatusResult {
	result := &StatusResult{
		Status:      txn.Status,
		CompletedAt: txn.CompletedAt,
		StatusCode:  http.StatusOK,
	}

	switch txn.Status {
	case entity.StatusCompleted:
		result.Success = true
		result.ReceiptNumber = txn.MpesaReceiptNumber
		result.Message = "Payment completed"
	case entity.StatusFailed:
		result.Message = txn.FailureReason
		if result.Message == "" {
			result.Message = "Payment was not completed"
		}
	case entity.StatusExpired:
		result.Message = "Payment timeout - please try again"
	default:
		result.Success = true
		result.Message = "Waiting for user to complete payment"
	}

	return result
}

// statusError builds the failure result for a status check
func (s *Service) statusError(checkoutRequestID string, err error) *StatusResult {
	statusCode := statusCodeFor(err)
	s.logger.Error("Status check failed", map[string]any{
		"checkout_request_id": checkoutRequestID,
		"error":               err.Error(),
		"status_code":         statusCode,
	})
	return &StatusResult{
		Success:    false,
		Message:    err.Error(),
		StatusCode: statusCode,
	}
}
