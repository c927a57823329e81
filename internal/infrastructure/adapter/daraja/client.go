package daraja

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "github.com/djkraph/payment-processor/internal/domain/error"
	coreport "github.com/djkraph/payment-processor/internal/domain/port/core"
	"github.com/djkraph/payment-processor/internal/domain/port/gateway"
)

// Config carries the provider endpoints and merchant credentials
type Config struct {
	ConsumerKey       string
	ConsumerSecret    string
	BusinessShortCode string
	Passkey           string
	CallbackURL       string
	OAuthURL          string
	STKPushURL        string
	STKQueryURL       string
	RequestTimeout    time.Duration // Push and query calls
	TokenTimeout      time.Duration // Token endpoint calls
}

// Client implements the Daraja gateway port over HTTP. It owns the
// credential scheme (password + timestamp per request) and the bounded
// per-call timeouts.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	tokens       *TokenCache
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewClient creates a Daraja API client with its own token cache
func NewClient(cfg Config, timeProvider coreport.TimeProvider, logger coreport.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		tokens:       NewTokenCache(cfg.OAuthURL, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.TokenTimeout, logger),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ gateway.Gateway = (*Client)(nil)

// Configured reports whether provider credentials are present
func (c *Client) Configured() bool {
	return c.cfg.ConsumerKey != "" && c.cfg.ConsumerSecret != ""
}

// stkPushPayload is the provider's push request body
type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// stkQueryPayload is the provider's status query body
type stkQueryPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// STKPush sends the payment prompt request to the provider
func (c *Client) STKPush(ctx context.Context, req gateway.PushRequest) (*gateway.PushResponse, error) {
	if !c.Configured() {
		return nil, errs.ErrConfigurationMissing
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := Timestamp(c.timeProvider.Now())
	payload := stkPushPayload{
		BusinessShortCode: c.cfg.BusinessShortCode,
		Password:          GeneratePassword(c.cfg.BusinessShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   req.TransactionType,
		Amount:            req.Amount,
		PartyA:            req.PhoneNumber,
		PartyB:            c.cfg.BusinessShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.TransactionDesc,
	}

	raw, err := c.post(ctx, c.cfg.STKPushURL, token, payload, errs.ErrPushRejected)
	if err != nil {
		return nil, err
	}

	resp := &gateway.PushResponse{
		MerchantRequestID:   stringField(raw, "MerchantRequestID"),
		CheckoutRequestID:   stringField(raw, "CheckoutRequestID"),
		ResponseCode:        stringField(raw, "ResponseCode"),
		ResponseDescription: stringField(raw, "ResponseDescription"),
		CustomerMessage:     stringField(raw, "CustomerMessage"),
		Raw:                 raw,
	}

	c.logger.Debug("STK push response received", map[string]any{
		"response_code":       resp.ResponseCode,
		"checkout_request_id": resp.CheckoutRequestID,
	})

	return resp, nil
}

// STKQuery asks the provider for the outcome of an earlier push
func (c *Client) STKQuery(ctx context.Context, checkoutRequestID string) (*gateway.QueryResponse, error) {
	if !c.Configured() {
		return nil, errs.ErrConfigurationMissing
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := Timestamp(c.timeProvider.Now())
	payload := stkQueryPayload{
		BusinessShortCode: c.cfg.BusinessShortCode,
		Password:          GeneratePassword(c.cfg.BusinessShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	raw, err := c.post(ctx, c.cfg.STKQueryURL, token, payload, errs.ErrStatusCheckFailed)
	if err != nil {
		return nil, err
	}

	resp := &gateway.QueryResponse{
		ResponseCode:       stringField(raw, "ResponseCode"),
		ResultCode:         stringField(raw, "ResultCode"),
		ResultDesc:         stringField(raw, "ResultDesc"),
		MpesaReceiptNumber: stringField(raw, "MpesaReceiptNumber"),
		Amount:             floatField(raw, "Amount"),
	}

	c.logger.Debug("STK query response received", map[string]any{
		"checkout_request_id": checkoutRequestID,
		"result_code":         resp.ResultCode,
	})

	return resp, nil
}

// post sends an authorized JSON request and decodes the response body into
// a generic map. Non-2xx responses are wrapped in the given sentinel.
func (c *Client) post(ctx context.Context, url, token string, payload any, failure error) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", failure, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", failure, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", failure, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", failure, err.Error())
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed response body", failure)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		desc := stringField(raw, "errorMessage")
		if desc == "" {
			desc = string(data)
		}
		return nil, fmt.Errorf("%w: status %d: %s", failure, resp.StatusCode, desc)
	}

	return raw, nil
}

// stringField reads a field that the provider may send as a string or a
// number
func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// floatField reads a numeric field, tolerating a string rendering
func floatField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case string:
		var f float64
		_, _ = fmt.Sscanf(v, "%f", &f)
		return f
	default:
		return 0
	}
}
