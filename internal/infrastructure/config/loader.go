package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"./configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Run on defaults + environment when no config file is present
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file values
	v.SetEnvPrefix("DK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 30)      // seconds; status checks hold the connection while querying upstream
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds
	v.SetDefault("server.frontendUrl", "http://localhost:3000")

	// Daraja sandbox defaults; production deployments override via config
	// file or environment
	v.SetDefault("mpesa.businessShortCode", "174379")
	v.SetDefault("mpesa.oauthUrl", "https://sandbox.safaricom.co.ke/oauth/v1/generate")
	v.SetDefault("mpesa.stkPushUrl", "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest")
	v.SetDefault("mpesa.stkQueryUrl", "https://sandbox.safaricom.co.ke/mpesa/stkpushquery/v1/query")
	v.SetDefault("mpesa.requestTimeout", 15) // seconds
	v.SetDefault("mpesa.tokenTimeout", 10)   // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")

	// Payment defaults
	v.SetDefault("payment.minAmount", 1)
	v.SetDefault("payment.maxAmount", 150000)
	v.SetDefault("payment.accountReference", "DJKRAPH")
	v.SetDefault("payment.transactionDesc", "DJ Kraph Music Purchase")
}

// getEnvironment determines the environment based on DK_ENV
func getEnvironment() string {
	env := os.Getenv("DK_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides maps the provider's conventional environment variable
// names onto config keys, prioritized over file values
func processEnvOverrides(v *viper.Viper) {
	if key := os.Getenv("MPESA_CONSUMER_KEY"); key != "" {
		v.Set("mpesa.consumerKey", key)
	}
	if secret := os.Getenv("MPESA_CONSUMER_SECRET"); secret != "" {
		v.Set("mpesa.consumerSecret", secret)
	}
	if shortcode := os.Getenv("MPESA_BUSINESS_SHORTCODE"); shortcode != "" {
		v.Set("mpesa.businessShortCode", shortcode)
	}
	if passkey := os.Getenv("MPESA_PASSKEY"); passkey != "" {
		v.Set("mpesa.passkey", passkey)
	}
	if callback := os.Getenv("CALLBACK_URL"); callback != "" {
		v.Set("mpesa.callbackUrl", callback)
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		v.Set("server.frontendUrl", frontend)
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", n)
		}
	}
	if logLevel := os.Getenv("DK_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}
}

// processDurations converts duration fields from raw second counts
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Mpesa.RequestTimeout = time.Duration(config.Mpesa.RequestTimeout) * time.Second
	config.Mpesa.TokenTimeout = time.Duration(config.Mpesa.TokenTimeout) * time.Second
}
