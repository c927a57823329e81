package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
	"github.com/djkraph/payment-processor/internal/domain/port/gateway"

	"github.com/google/uuid"
)

// InitiateRequest represents a request to start an STK push payment. Amount
// arrives as a float because JSON carries no integer type; validation
// rejects fractional values.
type InitiateRequest struct {
	Phone            string
	Amount           float64
	Description      string
	AccountReference string
	TransactionType  string
	Remark           string
	UserAgent        string
}

// InitiateResult represents the response after an initiation attempt
type InitiateResult struct {
	Success           bool
	CheckoutRequestID string
	Message           string
	StatusCode        int
}

// Initiate validates the request, acquires provider credentials, sends the
// STK push and stores a pending transaction. The returned checkout request
// ID is the sole handle for subsequent status queries.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	// Fail fast before any external call
	amount, err := s.validator.ValidateAmount(req.Amount)
	if err != nil {
		return s.initiateError(err, req), err
	}

	phone, err := s.validator.ValidatePhone(req.Phone)
	if err != nil {
		return s.initiateError(err, req), err
	}

	if !s.gateway.Configured() {
		err := errs.ErrConfigurationMissing
		return s.initiateError(err, req), err
	}

	now := s.timeProvider.Now()
	checkoutRequestID := s.newCheckoutRequestID(now)

	accountReference := req.AccountReference
	if accountReference == "" {
		accountReference = s.cfg.AccountReference + "_" + timestamp14(now)
	}
	transactionType := req.TransactionType
	if transactionType == "" {
		transactionType = "CustomerPayBillOnline"
	}
	description := req.Description
	if description == "" {
		description = s.cfg.TransactionDesc
	}

	resp, err := s.gateway.STKPush(ctx, gateway.PushRequest{
		PhoneNumber:      phone,
		Amount:           amount,
		AccountReference: accountReference,
		TransactionType:  transactionType,
		TransactionDesc:  description,
	})
	if err != nil {
		return s.initiateError(err, req), err
	}

	if resp.ResponseCode != ResultCodeSuccess {
		pushErr := errs.NewPushError(checkoutRequestID, phone, amount,
			resp.ResponseCode, resp.ResponseDescription)
		return s.initiateError(pushErr, req), pushErr
	}

	txn := entity.NewTransaction(checkoutRequestID, phone, amount, accountReference, entity.Metadata{
		Description: description,
		Remark:      req.Remark,
		UserAgent:   req.UserAgent,
	}, s.timeProvider)
	txn.PushResponse = resp.Raw

	if err := s.store.Save(ctx, txn); err != nil {
		s.logger.Error("Failed to store transaction after push acceptance", map[string]any{
			"checkout_request_id": checkoutRequestID,
			"error":               err.Error(),
		})
		return s.initiateError(errs.ErrInternalServer, req), err
	}

	s.logger.Info("STK push initiated", map[string]any{
		"checkout_request_id": checkoutRequestID,
		"phone":               entity.MaskPhoneNumber(phone),
		"amount":              amount,
		"account_reference":   accountReference,
	})

	return &InitiateResult{
		Success:           true,
		CheckoutRequestID: checkoutRequestID,
		Message:           "STK push sent successfully. Check your phone for the payment prompt.",
		StatusCode:        http.StatusOK,
	}, nil
}

// newCheckoutRequestID builds a process-unique identifier from the
// shortcode, the initiation timestamp and a random suffix. Collisions are
// treated as negligible; there is no uniqueness retry.
func (s *Service) newCheckoutRequestID(now time.Time) string {
	return s.cfg.BusinessShortCode + timestamp14(now) + uuid.NewString()[:8]
}

// initiateError builds the failure result for an initiation attempt and
// logs it with enough detail for diagnostics
func (s *Service) initiateError(err error, req InitiateRequest) *InitiateResult {
	statusCode := statusCodeFor(err)

	fields := map[string]any{
		"error":       err.Error(),
		"status_code": statusCode,
		"amount":      req.Amount,
	}
	if lf, ok := err.(interface{ LogFields() map[string]any }); ok {
		fields = lf.LogFields()
		fields["status_code"] = statusCode
	}
	s.logger.Error("STK push initiation failed", fields)

	return &InitiateResult{
		Success:    false,
		Message:    err.Error(),
		StatusCode: statusCode,
	}
}
