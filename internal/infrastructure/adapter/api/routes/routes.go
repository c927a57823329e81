package routes

import (
	coreport "github.com/djkraph/payment-processor/internal/domain/port/core"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/handler"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, paymentHandler *handler.PaymentHandler) {
	// GET /health
	router.GET("/health", paymentHandler.Health)

	// POST /stkpush
	router.POST("/stkpush", paymentHandler.InitiateSTKPush)

	// POST /stkpush/status
	router.POST("/stkpush/status", paymentHandler.CheckStatus)

	// POST /mpesa/callback: provider webhook, always acked
	router.POST("/mpesa/callback", paymentHandler.HandleCallback)

	// GET /transaction/:id: masked inspection view
	router.GET("/transaction/:id", paymentHandler.GetTransaction)
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, frontendURL string) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(frontendURL))
}
