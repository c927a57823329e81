package handler

import (
	"net/http"
	"time"

	domainerr "github.com/djkraph/payment-processor/internal/domain/error"
	coreport "github.com/djkraph/payment-processor/internal/domain/port/core"
	"github.com/djkraph/payment-processor/internal/domain/usecase/payment"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/dto"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *payment.Service
	timeProvider   coreport.TimeProvider
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(
	paymentService *payment.Service,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// InitiateSTKPush handles the POST /stkpush endpoint
func (h *PaymentHandler) InitiateSTKPush(c *gin.Context) {
	var req dto.STKPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid STK push request format", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Phone and amount are required",
		})
		return
	}

	result, err := h.paymentService.Initiate(c.Request.Context(), payment.InitiateRequest{
		Phone:            req.Phone,
		Amount:           req.Amount,
		Description:      req.Description,
		AccountReference: req.AccountReference,
		TransactionType:  req.TransactionType,
		Remark:           req.Remark,
		UserAgent:        c.Request.UserAgent(),
	})
	if err != nil {
		c.JSON(result.StatusCode, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: result.Message,
		})
		return
	}

	c.JSON(http.StatusOK, dto.STKPushResponse{
		Success:           true,
		CheckoutRequestID: result.CheckoutRequestID,
		Message:           result.Message,
		Timestamp:         h.timeProvider.Now().Format(time.RFC3339),
	})
}

// CheckStatus handles the POST /stkpush/status endpoint
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Checkout request ID is required",
		})
		return
	}

	result, err := h.paymentService.CheckStatus(c.Request.Context(), req.CheckoutRequestID)
	if err != nil {
		c.JSON(result.StatusCode, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: result.Message,
		})
		return
	}

	resp := dto.StatusResponse{
		Success:            result.Success,
		Status:             string(result.Status),
		TransactionID:      result.ReceiptNumber,
		MpesaReceiptNumber: result.ReceiptNumber,
		Amount:             result.Amount,
		Message:            result.Message,
	}
	if result.CompletedAt != nil {
		resp.Timestamp = result.CompletedAt.Format(time.RFC3339)
	}

	c.JSON(result.StatusCode, resp)
}

// HandleCallback handles the POST /mpesa/callback endpoint. The provider is
// always acknowledged with the fixed success envelope; a non-2xx or delayed
// response would trigger duplicate notifications.
func (h *PaymentHandler) HandleCallback(c *gin.Context) {
	ack := dto.CallbackAck{ResultCode: 0, ResultDesc: "Callback received"}

	var envelope dto.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.Warn("Malformed M-Pesa callback payload", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusOK, ack)
		return
	}

	cb := envelope.Body.StkCallback
	h.paymentService.HandleCallback(c.Request.Context(), payment.CallbackEvent{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		ReceiptNumber:     envelope.ReceiptNumber(),
	})

	c.JSON(http.StatusOK, ack)
}

// GetTransaction handles the GET /transaction/:id endpoint
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	txn, err := h.paymentService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	detail := dto.TransactionDetail{
		CheckoutRequestID: txn.CheckoutRequestID,
		Phone:             txn.MaskedPhone(),
		Amount:            txn.Amount,
		Status:            string(txn.Status),
		CreatedAt:         txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.CompletedAt != nil {
		completedAt := txn.CompletedAt.Format(time.RFC3339)
		detail.CompletedAt = &completedAt
	}

	c.JSON(http.StatusOK, detail)
}

// Health handles the GET /health endpoint
func (h *PaymentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: h.timeProvider.Now().Format(time.RFC3339),
		Service:   "DJ Kraph M-Pesa Payment Server",
	})
}
