package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/djkraph/payment-processor/internal/domain/port/core"
	"github.com/djkraph/payment-processor/internal/domain/usecase/payment"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/handler"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/api/routes"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/daraja"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/store"
	timeProvider "github.com/djkraph/payment-processor/internal/infrastructure/adapter/time"
	"github.com/djkraph/payment-processor/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(parseLogLevel(cfg.Logger.Level))

	// Missing credentials are reported per request as 503, never as a
	// startup crash, so the rest of the API stays inspectable
	if cfg.Mpesa.ConsumerKey == "" || cfg.Mpesa.ConsumerSecret == "" {
		appLogger.Warn("M-Pesa credentials not configured; payment endpoints will return 503", nil)
	}

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Daraja API client with its token cache
	darajaClient := daraja.NewClient(daraja.Config{
		ConsumerKey:       cfg.Mpesa.ConsumerKey,
		ConsumerSecret:    cfg.Mpesa.ConsumerSecret,
		BusinessShortCode: cfg.Mpesa.BusinessShortCode,
		Passkey:           cfg.Mpesa.Passkey,
		CallbackURL:       cfg.Mpesa.CallbackURL,
		OAuthURL:          cfg.Mpesa.OAuthURL,
		STKPushURL:        cfg.Mpesa.STKPushURL,
		STKQueryURL:       cfg.Mpesa.STKQueryURL,
		RequestTimeout:    cfg.Mpesa.RequestTimeout,
		TokenTimeout:      cfg.Mpesa.TokenTimeout,
	}, tp, appLogger)

	// In-memory transaction store; lifecycle bounded by the process
	transactionStore := store.NewMemoryTransactionStore(appLogger)

	// Payment service
	paymentService := payment.NewService(transactionStore, darajaClient, tp, appLogger, payment.Config{
		BusinessShortCode: cfg.Mpesa.BusinessShortCode,
		AccountReference:  cfg.Payment.AccountReference,
		TransactionDesc:   cfg.Payment.TransactionDesc,
		MinAmount:         cfg.Payment.MinAmount,
		MaxAmount:         cfg.Payment.MaxAmount,
	})

	// Initialize API handler
	paymentHandler := handler.NewPaymentHandler(paymentService, tp, appLogger)

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares and routes
	routes.SetupMiddlewares(router, appLogger, cfg.Server.FrontendURL)
	routes.SetupRoutes(router, paymentHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port":      cfg.Server.Port,
			"env":       cfg.Environment,
			"shortcode": cfg.Mpesa.BusinessShortCode,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	_ = appLogger.Flush()
	appLogger.Info("Server exited gracefully", nil)
}

// parseLogLevel maps the configured level name to a logger level, falling
// back to info on unknown values
func parseLogLevel(level string) core.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return core.LogLevelDebug
	case "warn":
		return core.LogLevelWarn
	case "error":
		return core.LogLevelError
	default:
		return core.LogLevelInfo
	}
}

// validateConfig ensures all required configuration values are present.
// M-Pesa credentials are deliberately NOT required here; their absence is a
// per-request 503, not a startup failure.
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Mpesa.BusinessShortCode == "" {
		missingConfigs = append(missingConfigs, "mpesa.businessShortCode")
	}
	if cfg.Mpesa.OAuthURL == "" {
		missingConfigs = append(missingConfigs, "mpesa.oauthUrl")
	}
	if cfg.Mpesa.STKPushURL == "" {
		missingConfigs = append(missingConfigs, "mpesa.stkPushUrl")
	}
	if cfg.Mpesa.STKQueryURL == "" {
		missingConfigs = append(missingConfigs, "mpesa.stkQueryUrl")
	}

	if cfg.Payment.MaxAmount == 0 {
		missingConfigs = append(missingConfigs, "payment.maxAmount")
	}

	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production && cfg.Mpesa.CallbackURL == "" {
		log.Printf("Warning: mpesa.callbackUrl is empty; the provider cannot deliver webhooks")
	}

	return nil
}
