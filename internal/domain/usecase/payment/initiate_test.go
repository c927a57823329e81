package payment

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djkraph/payment-processor/internal/domain/entity"
	errs "github.com/djkraph/payment-processor/internal/domain/error"
	"github.com/djkraph/payment-processor/internal/domain/port/gateway"
)

func TestInitiateSuccess(t *testing.T) {
	svc, gw, clock, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Initiate(ctx, InitiateRequest{
		Phone:  "0712345678",
		Amount: 500,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.Message, "STK push sent successfully")
	assert.Equal(t, 1, gw.pushCalls)

	// Id carries shortcode and initiation timestamp plus a random suffix
	assert.True(t, strings.HasPrefix(result.CheckoutRequestID, "174379"+timestamp14(clock.Now())))
	assert.Len(t, result.CheckoutRequestID, len("174379")+14+8)

	txn, err := svc.GetTransaction(ctx, result.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, txn.Status)
	assert.Equal(t, "254712345678", txn.Phone)
	assert.Equal(t, int64(500), txn.Amount)
	assert.Equal(t, clock.Now().Add(entity.ExpiryWindow), txn.ExpiresAt)
	assert.Equal(t, "0", txn.PushResponse["ResponseCode"])
}

func TestInitiateDefaults(t *testing.T) {
	svc, _, clock, _ := newTestService()

	result, err := svc.Initiate(context.Background(), InitiateRequest{
		Phone:  "254712345678",
		Amount: 100,
	})
	require.NoError(t, err)

	txn, err := svc.GetTransaction(context.Background(), result.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, "DJKRAPH_"+timestamp14(clock.Now()), txn.AccountReference)
	assert.Equal(t, "DJ Kraph Music Purchase", txn.Metadata.Description)
}

func TestInitiateExplicitFieldsOverrideDefaults(t *testing.T) {
	svc, _, _, _ := newTestService()

	result, err := svc.Initiate(context.Background(), InitiateRequest{
		Phone:            "254712345678",
		Amount:           100,
		Description:      "Single track",
		AccountReference: "ORDER-42",
		Remark:           "web checkout",
	})
	require.NoError(t, err)

	txn, err := svc.GetTransaction(context.Background(), result.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-42", txn.AccountReference)
	assert.Equal(t, "Single track", txn.Metadata.Description)
	assert.Equal(t, "web checkout", txn.Metadata.Remark)
}

func TestInitiateInvalidAmount(t *testing.T) {
	svc, gw, _, _ := newTestService()

	tests := []struct {
		name   string
		amount float64
	}{
		{name: "Zero", amount: 0},
		{name: "Negative", amount: -50},
		{name: "Above Maximum", amount: 200000},
		{name: "Fractional", amount: 500.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Initiate(context.Background(), InitiateRequest{
				Phone:  "254712345678",
				Amount: tt.amount,
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidAmount)
			assert.False(t, result.Success)
			assert.Equal(t, http.StatusBadRequest, result.StatusCode)
		})
	}

	// Validation failures never reach the provider
	assert.Equal(t, 0, gw.pushCalls)
}

func TestInitiateInvalidPhone(t *testing.T) {
	svc, gw, _, _ := newTestService()

	result, err := svc.Initiate(context.Background(), InitiateRequest{
		Phone:  "12345",
		Amount: 500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidPhoneNumber)
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.Equal(t, 0, gw.pushCalls)
}

func TestInitiateMissingCredentials(t *testing.T) {
	svc, gw, _, _ := newTestService()
	gw.configured = false

	result, err := svc.Initiate(context.Background(), InitiateRequest{
		Phone:  "254712345678",
		Amount: 500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfigurationMissing)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.Equal(t, 0, gw.pushCalls)
}

func TestInitiatePushRejected(t *testing.T) {
	svc, gw, _, st := newTestService()
	gw.pushResp = &gateway.PushResponse{
		ResponseCode:        "1",
		ResponseDescription: "Insufficient funds on the utility account",
	}

	result, err := svc.Initiate(context.Background(), InitiateRequest{
		Phone:  "254712345678",
		Amount: 500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPushRejected)
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)

	// Rejected pushes leave no transaction behind
	assert.Equal(t, 0, st.Len())
}

func TestInitiateTokenFailure(t *testing.T) {
	svc, gw, _, st := newTestService()
	gw.pushErr = errs.ErrTokenAcquisitionFailed

	result, err := svc.Initiate(context.Background(), InitiateRequest{
		Phone:  "0712345678",
		Amount: 500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTokenAcquisitionFailed)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.Equal(t, 0, st.Len())
}
