package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/ups"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port           int     `envconfig:"PORT" default:"8080"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`

	// UPS
	UPSEnabled        bool          `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock        bool          `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSClientID       string        `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret   string        `envconfig:"UPS_CLIENT_SECRET"`
	UPSAccountNumber  string        `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSBaseURL        string        `envconfig:"UPS_API_BASE_URL" default:"https://onlinetools.ups.com/api"`
	UPSOAuthURL       string        `envconfig:"UPS_OAUTH_URL" default:"https://onlinetools.ups.com/security/v1/oauth/token"`
	UPSTransactionSrc string        `envconfig:"UPS_TRANSACTION_SRC" default:"testing"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"ratebridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded values. UPS credentials are only required
// when the live UPS client is enabled.
func (c Config) Validate() error {
	live := c.UPSEnabled && !c.UPSUseMock

	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error", "DEBUG", "INFO", "WARN", "ERROR")),
		validation.Field(&c.RateLimitRPS, validation.Min(0.0)),
		validation.Field(&c.RateLimitBurst, validation.Min(0)),
		validation.Field(&c.UPSClientID, validation.When(live, validation.Required)),
		validation.Field(&c.UPSClientSecret, validation.When(live, validation.Required)),
		validation.Field(&c.UPSAccountNumber, validation.When(live, validation.Required)),
		validation.Field(&c.UPSBaseURL, validation.When(live, validation.Required, is.URL)),
		validation.Field(&c.UPSOAuthURL, validation.When(live, is.URL)),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.OTELEndpoint, validation.When(c.OTELEnabled, validation.Required, is.URL)),
	)
}

// UPSCarrierConfig returns the UPS credentials and endpoints.
func (c *Config) UPSCarrierConfig() shipper.CarrierConfig {
	return shipper.CarrierConfig{
		ClientID:      c.UPSClientID,
		ClientSecret:  c.UPSClientSecret,
		AccountNumber: c.UPSAccountNumber,
		BaseURL:       c.UPSBaseURL,
		AuthURL:       c.UPSOAuthURL,
		Extra:         map[string]string{ups.SettingTransactionSrc: c.UPSTransactionSrc},
	}
}

// UPS returns the UPS client configuration.
func (c *Config) UPS() ups.Config {
	return ups.Config{
		CarrierConfig: c.UPSCarrierConfig(),
		Timeout:       c.HTTPTimeout,
		UseMock:       c.UPSUseMock,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("ups.mock", c.UPSUseMock),
	}
}
