package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Mpesa       MpesaConfig   `mapstructure:"mpesa"`
	Logger      LoggerConfig  `mapstructure:"logger"`
	Payment     PaymentConfig `mapstructure:"payment"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
	FrontendURL       string        `mapstructure:"frontendUrl"`
}

// MpesaConfig contains Daraja API credentials and endpoints. Consumer key
// and secret come from the environment; their absence is surfaced per
// request as a configuration error, never as a startup crash.
type MpesaConfig struct {
	ConsumerKey       string        `mapstructure:"consumerKey"`
	ConsumerSecret    string        `mapstructure:"consumerSecret"`
	BusinessShortCode string        `mapstructure:"businessShortCode"`
	Passkey           string        `mapstructure:"passkey"`
	CallbackURL       string        `mapstructure:"callbackUrl"`
	OAuthURL          string        `mapstructure:"oauthUrl"`
	STKPushURL        string        `mapstructure:"stkPushUrl"`
	STKQueryURL       string        `mapstructure:"stkQueryUrl"`
	RequestTimeout    time.Duration `mapstructure:"requestTimeout"` // seconds
	TokenTimeout      time.Duration `mapstructure:"tokenTimeout"`   // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// PaymentConfig contains payment processing settings
type PaymentConfig struct {
	MinAmount        int64  `mapstructure:"minAmount"`
	MaxAmount        int64  `mapstructure:"maxAmount"`
	AccountReference string `mapstructure:"accountReference"`
	TransactionDesc  string `mapstructure:"transactionDesc"`
}
