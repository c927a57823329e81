package payclient

import (
	"context"
	"fmt"
	"time"
)

// Poll outcomes. Completed, Failed and Expired reflect the server-side
// transaction state; Timeout is a client-side give-up after the attempt
// budget, with no state mutation behind it.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeExpired   = "expired"
	OutcomeTimeout   = "timeout"
)

// Default polling budget, matching the browser payment manager
const (
	DefaultMaxAttempts  = 10
	DefaultPollInterval = 3 * time.Second
)

// PollResult is the settled outcome of a polling loop
type PollResult struct {
	Success       bool
	Status        string
	ReceiptNumber string
	Message       string
	Attempts      int
}

// PaymentResult is the outcome of the full initiate-then-poll flow
type PaymentResult struct {
	Success           bool
	Stage             string // "initiation" or "completion"
	Status            string
	CheckoutRequestID string
	ReceiptNumber     string
	Message           string
}

// PollUntilSettled repeatedly checks the payment status on a fixed interval
// until it settles, the attempt budget is exhausted, or ctx is cancelled.
// Individual check failures (network errors) count as attempts and are
// retried on the same schedule. Cancelling ctx stops the ticker immediately,
// so an abandoned poll leaks no timers.
func (c *Client) PollUntilSettled(ctx context.Context, checkoutRequestID string, maxAttempts int, interval time.Duration) (*PollResult, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++

		resp, err := c.CheckStatus(ctx, checkoutRequestID)
		if err == nil {
			switch resp.Status {
			case OutcomeCompleted:
				receipt := resp.TransactionID
				if receipt == "" {
					receipt = resp.MpesaReceiptNumber
				}
				return &PollResult{
					Success:       true,
					Status:        OutcomeCompleted,
					ReceiptNumber: receipt,
					Attempts:      attempts,
				}, nil
			case OutcomeFailed, OutcomeExpired:
				message := resp.Message
				if message == "" {
					message = "Payment was not completed"
				}
				return &PollResult{
					Status:   resp.Status,
					Message:  message,
					Attempts: attempts,
				}, nil
			}
			// Still pending; keep polling
		}

		if attempts >= maxAttempts {
			return &PollResult{
				Status:   OutcomeTimeout,
				Message:  "Payment timeout. Please try again.",
				Attempts: attempts,
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessPayment runs the complete flow: initiate the STK push, then poll
// until the payment settles. The four outcomes (completed, failed, expired,
// timeout) stay distinguishable in the result.
func (c *Client) ProcessPayment(ctx context.Context, req InitiateRequest) (*PaymentResult, error) {
	initResp, err := c.InitiateSTKPush(ctx, req)
	if err != nil {
		return &PaymentResult{
			Stage:   "initiation",
			Message: err.Error(),
		}, fmt.Errorf("initiation failed: %w", err)
	}

	pollResult, err := c.PollUntilSettled(ctx, initResp.CheckoutRequestID, DefaultMaxAttempts, DefaultPollInterval)
	if err != nil {
		return &PaymentResult{
			Stage:             "completion",
			CheckoutRequestID: initResp.CheckoutRequestID,
			Message:           err.Error(),
		}, err
	}

	return &PaymentResult{
		Success:           pollResult.Success,
		Stage:             "completion",
		Status:            pollResult.Status,
		CheckoutRequestID: initResp.CheckoutRequestID,
		ReceiptNumber:     pollResult.ReceiptNumber,
		Message:           pollResult.Message,
	}, nil
}
