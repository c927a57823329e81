package dto

// STKPushRequest represents the API request to initiate a payment. Amount
// binds as a float so fractional values reach the validator and fail as
// invalid amounts, not as a malformed request.
type STKPushRequest struct {
	Phone            string  `json:"phone" binding:"required"`
	Amount           float64 `json:"amount" binding:"required"`
	Description      string  `json:"description"`
	AccountReference string  `json:"accountReference"`
	TransactionType  string  `json:"transactionType"`
	Remark           string  `json:"remark"`
}

// STKPushResponse represents a successful initiation
type STKPushResponse struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkoutRequestId"`
	Message           string `json:"message"`
	Timestamp         string `json:"timestamp"`
}

// StatusRequest represents the API request to check payment status
type StatusRequest struct {
	CheckoutRequestID string `json:"checkoutRequestId" binding:"required"`
}

// StatusResponse represents the outcome of a status check. The field names
// mirror what the browser client already consumes.
type StatusResponse struct {
	Success            bool    `json:"success"`
	Status             string  `json:"status"`
	TransactionID      string  `json:"transaction_id,omitempty"`
	MpesaReceiptNumber string  `json:"MpesaReceiptNumber,omitempty"`
	Amount             float64 `json:"amount,omitempty"`
	Message            string  `json:"message,omitempty"`
	Timestamp          string  `json:"timestamp,omitempty"`
}

// TransactionDetail represents the masked inspection view of a transaction
type TransactionDetail struct {
	CheckoutRequestID string  `json:"checkoutRequestId"`
	Phone             string  `json:"phone"`
	Amount            int64   `json:"amount"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"createdAt"`
	CompletedAt       *string `json:"completedAt,omitempty"`
}

// HealthResponse represents the health check body
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}
