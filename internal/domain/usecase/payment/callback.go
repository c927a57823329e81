package payment

import (
	"context"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
)

// CallbackEvent is the domain-level view of a provider webhook notification
type CallbackEvent struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
}

// HandleCallback applies an asynchronous provider notification to the
// transaction store. It never signals failure to the webhook transport;
// the HTTP adapter acknowledges with a fixed envelope regardless, so all
// outcomes here are logged, not propagated. A callback arriving after the
// polling path already settled the transaction is an idempotent no-op.
func (s *Service) HandleCallback(ctx context.Context, ev CallbackEvent) {
	if ev.CheckoutRequestID == "" {
		s.logger.Warn("Callback without checkout request ID", nil)
		return
	}

	if ev.ResultCode != 0 {
		s.logger.Info("Callback reported unsuccessful payment", map[string]any{
			"checkout_request_id": ev.CheckoutRequestID,
			"result_code":         ev.ResultCode,
			"result_desc":         ev.ResultDesc,
		})
		return
	}

	snap, transitioned, err := s.store.Complete(ctx, ev.CheckoutRequestID, ev.ReceiptNumber, s.timeProvider.Now())
	if err != nil {
		if errs.IsNotFoundError(err) {
			// Unknown id: never created here, or the process restarted
			s.logger.Warn("Callback for unknown transaction", map[string]any{
				"checkout_request_id": ev.CheckoutRequestID,
			})
			return
		}
		s.logger.Error("Callback processing failed", map[string]any{
			"checkout_request_id": ev.CheckoutRequestID,
			"error":               err.Error(),
		})
		return
	}

	if transitioned {
		s.logger.Info("Payment completed via callback", map[string]any{
			"checkout_request_id": ev.CheckoutRequestID,
			"receipt_number":      ev.ReceiptNumber,
		})
		return
	}

	if snap.Status != entity.StatusCompleted {
		// Already failed or expired before the callback arrived; no mutation
		s.logger.Info("Callback ignored for settled transaction", map[string]any{
			"checkout_request_id": ev.CheckoutRequestID,
			"status":              string(snap.Status),
		})
	}
}
