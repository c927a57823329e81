package dto

// CallbackEnvelope is the provider-defined nested webhook body:
// {Body:{stkCallback:{CheckoutRequestID, ResultCode, CallbackMetadata:{Item:[...]}}}}
type CallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []CallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// CallbackItem is one named value in the callback metadata list
type CallbackItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// ReceiptNumber extracts the M-Pesa receipt from the metadata item list
func (e *CallbackEnvelope) ReceiptNumber() string {
	for _, item := range e.Body.StkCallback.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			if s, ok := item.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// CallbackAck is the fixed acknowledgement the provider expects. It is sent
// regardless of internal outcome.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
