package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djkraph/payment-processor/internal/domain/port/gateway"
	"github.com/djkraph/payment-processor/internal/domain/usecase/payment"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/handler"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/routes"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/store"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// scriptedGateway returns canned provider responses
type scriptedGateway struct {
	configured bool
	pushResp   *gateway.PushResponse
	queryResp  *gateway.QueryResponse
}

func (g *scriptedGateway) Configured() bool { return g.configured }

func (g *scriptedGateway) STKPush(context.Context, gateway.PushRequest) (*gateway.PushResponse, error) {
	return g.pushResp, nil
}

func (g *scriptedGateway) STKQuery(context.Context, string) (*gateway.QueryResponse, error) {
	return g.queryResp, nil
}

func newTestRouter() (*gin.Engine, *scriptedGateway, *fixedClock) {
	gin.SetMode(gin.TestMode)

	gw := &scriptedGateway{
		configured: true,
		pushResp: &gateway.PushResponse{
			ResponseCode: "0",
			Raw:          map[string]any{"ResponseCode": "0"},
		},
		queryResp: &gateway.QueryResponse{ResponseCode: "0"},
	}
	clock := &fixedClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	noop := logger.NewNoopLogger()

	svc := payment.NewService(
		store.NewMemoryTransactionStore(noop),
		gw,
		clock,
		noop,
		payment.Config{BusinessShortCode: "174379"},
	)

	router := gin.New()
	routes.SetupRoutes(router, handler.NewPaymentHandler(svc, clock, noop))
	return router, gw, clock
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestInitiateSTKPushEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":500}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["checkoutRequestId"])
	assert.Contains(t, body["message"], "STK push sent successfully")
	assert.NotEmpty(t, body["timestamp"])
}

func TestInitiateSTKPushMissingFields(t *testing.T) {
	router, _, _ := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "Empty Body", body: `{}`},
		{name: "Missing Amount", body: `{"phone":"0712345678"}`},
		{name: "Missing Phone", body: `{"amount":500}`},
		{name: "Not JSON", body: `phone=0712345678`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/stkpush", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Phone and amount are required", body["message"])
		})
	}
}

func TestInitiateSTKPushInvalidAmount(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":200000}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "amount must be between 1 and 150000")
}

func TestInitiateSTKPushFractionalAmount(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":500.5}`)

	// A fractional amount is an amount problem, not a malformed request
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(4002), body["code"])
	assert.Contains(t, body["message"], "amount must be between 1 and 150000")
}

func TestInitiateSTKPushUnconfigured(t *testing.T) {
	router, gw, _ := newTestRouter()
	gw.configured = false

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":500}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCheckStatusEndpoint(t *testing.T) {
	router, gw, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":500}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["checkoutRequestId"].(string)

	// Still pending
	w = doJSON(router, http.MethodPost, "/stkpush/status", fmt.Sprintf(`{"checkoutRequestId":%q}`, id))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "pending", body["status"])

	// Provider reports success
	gw.queryResp = &gateway.QueryResponse{
		ResponseCode:       "0",
		ResultCode:         "0",
		MpesaReceiptNumber: "NLJ7RT61SV",
		Amount:             500,
	}
	w = doJSON(router, http.MethodPost, "/stkpush/status", fmt.Sprintf(`{"checkoutRequestId":%q}`, id))
	assert.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "NLJ7RT61SV", body["MpesaReceiptNumber"])
	assert.Equal(t, float64(500), body["amount"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCheckStatusUnknownTransaction(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush/status", `{"checkoutRequestId":"missing"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Transaction not found", body["message"])
}

func TestCheckStatusMissingID(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush/status", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Checkout request ID is required", body["message"])
}

func TestCallbackEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":500}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["checkoutRequestId"].(string)

	callback := fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 500.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20240601120130},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`, id)

	w = doJSON(router, http.MethodPost, "/mpesa/callback", callback)
	assert.Equal(t, http.StatusOK, w.Code)
	ack := decodeBody(t, w)
	assert.Equal(t, float64(0), ack["ResultCode"])
	assert.Equal(t, "Callback received", ack["ResultDesc"])

	// The transaction is now settled with the receipt from the metadata
	w = doJSON(router, http.MethodPost, "/stkpush/status", fmt.Sprintf(`{"checkoutRequestId":%q}`, id))
	body := decodeBody(t, w)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "NLJ7RT61SV", body["MpesaReceiptNumber"])
}

func TestCallbackAlwaysAcked(t *testing.T) {
	router, _, _ := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "Malformed JSON", body: `{not json`},
		{name: "Empty Envelope", body: `{}`},
		{name: "Unknown Transaction", body: `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_unknown","ResultCode":0}}}`},
		{name: "Failed Payment", body: `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_x","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/mpesa/callback", tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			ack := decodeBody(t, w)
			assert.Equal(t, float64(0), ack["ResultCode"])
		})
	}
}

func TestGetTransactionEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodPost, "/stkpush", `{"phone":"0712345678","amount":500}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["checkoutRequestId"].(string)

	w = doJSON(router, http.MethodGet, "/transaction/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, id, body["checkoutRequestId"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(500), body["amount"])

	// Phone is masked in the inspection view
	assert.Equal(t, "254712***678", body["phone"])
}

func TestGetTransactionNotFound(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodGet, "/transaction/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Transaction not found", body["error"])
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	w := doJSON(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "DJ Kraph M-Pesa Payment Server", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}
