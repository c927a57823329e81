// Package payclient is the Go client for the payment API. It mirrors what
// the browser payment manager does: initiate an STK push, then poll the
// status endpoint until the payment settles or the attempt budget runs out.
package payclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// InitiateRequest is the body for the initiation endpoint
type InitiateRequest struct {
	Phone            string `json:"phone"`
	Amount           int64  `json:"amount"`
	Description      string `json:"description,omitempty"`
	AccountReference string `json:"accountReference,omitempty"`
	TransactionType  string `json:"transactionType,omitempty"`
	Remark           string `json:"remark,omitempty"`
}

// InitiateResponse is the server's answer to an initiation request
type InitiateResponse struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkoutRequestId"`
	Message           string `json:"message"`
	Timestamp         string `json:"timestamp"`
}

// StatusResponse is the server's answer to a status check
type StatusResponse struct {
	Success            bool    `json:"success"`
	Status             string  `json:"status"`
	TransactionID      string  `json:"transaction_id"`
	MpesaReceiptNumber string  `json:"MpesaReceiptNumber"`
	Amount             float64 `json:"amount"`
	Message            string  `json:"message"`
}

// Client talks to the payment server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a payment API client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitiateSTKPush starts a payment and returns the checkout request ID used
// for all subsequent status checks
func (c *Client) InitiateSTKPush(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	var resp InitiateResponse
	if err := c.postJSON(ctx, "/stkpush", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("stk push not accepted: %s", resp.Message)
	}
	return &resp, nil
}

// CheckStatus asks the server for the current payment status
func (c *Client) CheckStatus(ctx context.Context, checkoutRequestID string) (*StatusResponse, error) {
	body := map[string]string{"checkoutRequestId": checkoutRequestID}
	var resp StatusResponse
	if err := c.postJSON(ctx, "/stkpush/status", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// postJSON sends a JSON body and decodes the JSON response. Error-status
// responses still carry the API's JSON shape, so they are decoded rather
// than rejected.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed response (status %d): %w", resp.StatusCode, err)
	}

	return nil
}
