package gateway

import "context"

// PushRequest carries the domain-level fields of an STK push. The adapter
// fills in the provider credential scheme (shortcode, password, timestamp)
// and the configured callback URL.
type PushRequest struct {
	PhoneNumber      string
	Amount           int64
	AccountReference string
	TransactionType  string
	TransactionDesc  string
}

// PushResponse is the provider's answer to a push request
type PushResponse struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
	Raw                 map[string]any // Full response body, kept for audit
}

// QueryResponse is the provider's answer to a status query. ResultCode is
// empty while the payer has not acted on the prompt yet.
type QueryResponse struct {
	ResponseCode       string
	ResultCode         string
	ResultDesc         string
	MpesaReceiptNumber string
	Amount             float64
}

// Gateway is the outbound port to the M-Pesa Daraja API. Implementations
// own token acquisition, the credential scheme and per-call timeouts, and
// translate transport failures into the domain error taxonomy.
type Gateway interface {
	// Configured reports whether provider credentials are present; callers
	// surface ErrConfigurationMissing before attempting any external call
	Configured() bool

	// STKPush sends the payment prompt to the payer's phone
	STKPush(ctx context.Context, req PushRequest) (*PushResponse, error)

	// STKQuery asks the provider for the outcome of an earlier push
	STKQuery(ctx context.Context, checkoutRequestID string) (*QueryResponse, error)
}
