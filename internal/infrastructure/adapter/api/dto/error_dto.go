package dto

// ErrorResponse represents a standardized error response for the API. The
// stable contract is success:false plus message; the numeric code is a
// diagnostic extra.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}
