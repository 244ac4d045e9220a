// Package ups provides integration with the UPS Rating API.
package ups

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/transport"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName         = "UPS"
	fallbackServiceName = carrierName + " Service"

	ratePath              = "/rating/v1/Shop"
	defaultAuthPath       = "/security/v1/oauth/token"
	defaultTransactionSrc = "testing"

	// SettingTransactionSrc is the CarrierConfig.Extra key for the transactionSrc header.
	SettingTransactionSrc = "transactionSrc"
)

// Config holds UPS configuration.
type Config struct {
	shipper.CarrierConfig
	Timeout time.Duration
	UseMock bool
	Now     func() time.Time
}

// Client is the UPS carrier.
type Client struct {
	config    Config
	transport transport.Doer
	auth      shipper.AuthProvider
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a new UPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var doer transport.Doer

	if cfg.UseMock {
		doer = NewMockTransport()
	} else {
		doer = transport.New(transport.Config{
			Carrier: carrierName,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	}

	return NewWithTransport(cfg, doer, logger, tracer)
}

// NewWithTransport creates a new UPS client with a custom transport.
func NewWithTransport(cfg Config, doer transport.Doer, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/ratebridge/pkg/shipper/ups")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	auth := NewTokenProvider(TokenProviderConfig{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		AccountNumber: cfg.AccountNumber,
		AuthURL:       authURL(cfg.CarrierConfig),
		Now:           now,
	}, doer, logger, tracer)

	return &Client{
		config:    cfg,
		transport: doer,
		auth:      auth,
		logger:    logger,
		tracer:    tracer,
		now:       now,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Auth returns the token provider used by the client.
func (c *Client) Auth() shipper.AuthProvider {
	return c.auth
}

// GetRates returns quotes for every UPS service level.
func (c *Client) GetRates(ctx context.Context, req *shipper.RateRequest) (*shipper.RateResponse, error) {
	ctx, span := c.tracer.Start(ctx, "ups.GetRates")
	defer span.End()

	// 1. Validate input
	if violations := shipper.ValidateRateRequest(req); len(violations) > 0 {
		err := shipper.NewValidationError(carrierName, "Invalid rate request", violations)
		c.fail(ctx, span, "invalid rate request", err)
		return nil, err
	}

	c.logger.Ctx(ctx).Info("Getting UPS rates",
		zap.String("origin_postal", req.Origin.PostalCode),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Int("package_count", len(req.Packages)),
	)
	span.SetAttributes(attribute.Int("ups.package_count", len(req.Packages)))

	// 2. Get access token
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		c.fail(ctx, span, "authentication failed", err)
		return nil, err
	}

	// 3. Map to wire request
	wireReq := ToWireRequest(req)

	// 4. Call the Rating API
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("transactionSrc", c.config.Setting(SettingTransactionSrc, defaultTransactionSrc))

	body, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    ratePath,
		Header: header,
		Body:   wireReq,
	})
	if err != nil {
		var apiErr *shipper.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.auth.InvalidateToken()
		}
		c.fail(ctx, span, "rate request failed", err)
		return nil, err
	}

	// 5. Validate the wire response
	wireResp, violations := ParseRateResponse(body)
	if len(violations) > 0 {
		err := shipper.NewValidationError(carrierName, "Invalid response from "+carrierName, violations)
		c.fail(ctx, span, "invalid rate response", err)
		return nil, err
	}

	// 6. Map to domain response
	resp := ToDomainResponse(wireResp, *req, c.now())
	span.SetAttributes(attribute.Int("ups.quote_count", len(resp.Quotes)))
	return resp, nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	c.logger.Ctx(ctx).Error("UPS API error",
		zap.String("stage", msg),
		zap.String("code", shipper.ErrorCode(err)),
		zap.Error(err),
	)
}

func authURL(cfg shipper.CarrierConfig) string {
	if cfg.AuthURL != "" {
		return cfg.AuthURL
	}
	return strings.TrimRight(cfg.BaseURL, "/") + defaultAuthPath
}

var _ shipper.Carrier = (*Client)(nil)
