package ups

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/transport"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// tokenSkew is how long before the actual expiry a token is refreshed.
const tokenSkew = 5 * time.Minute

// TokenProviderConfig holds the OAuth client-credentials settings.
type TokenProviderConfig struct {
	ClientID      string
	ClientSecret  string
	AccountNumber string
	AuthURL       string
	Now           func() time.Time
}

// TokenProvider caches one bearer token and refreshes it through the
// transport when it is within tokenSkew of expiry. Concurrent callers
// during a refresh share a single token request.
type TokenProvider struct {
	config    TokenProviderConfig
	transport transport.Doer
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu         sync.Mutex
	token      string
	expiresAt  time.Time
	generation uint64

	refresh singleflight.Group
}

// NewTokenProvider creates a token provider.
func NewTokenProvider(cfg TokenProviderConfig, doer transport.Doer, logger *otelzap.Logger, tracer trace.Tracer) *TokenProvider {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/ratebridge/pkg/shipper/ups")
	}
	return &TokenProvider{
		config:    cfg,
		transport: doer,
		logger:    logger,
		tracer:    tracer,
		now:       now,
	}
}

// AccessToken returns the cached token while it is fresh, otherwise it
// fetches a new one. The shared refresh is not tied to any single caller's
// context; each caller stops waiting when its own context is done.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	token, gen, ok := p.cached()
	if ok {
		p.logger.Ctx(ctx).Debug("Reusing cached UPS access token")
		return token, nil
	}

	ch := p.refresh.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		// Another caller may have refreshed while we waited for the group.
		if token, _, ok := p.cached(); ok {
			return token, nil
		}
		return p.refreshToken(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return "", p.wrapError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// InvalidateToken clears the cached token so the next call refreshes.
// A refresh already in flight does not repopulate the cache.
func (p *TokenProvider) InvalidateToken() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.expiresAt = time.Time{}
	p.generation++
}

func (p *TokenProvider) cached() (string, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", p.generation, false
	}
	if !p.now().Before(p.expiresAt.Add(-tokenSkew)) {
		return "", p.generation, false
	}
	return p.token, p.generation, true
}

func (p *TokenProvider) refreshToken(ctx context.Context, gen uint64) (string, error) {
	ctx, span := p.tracer.Start(ctx, "ups.refreshToken")
	defer span.End()

	credentials := base64.StdEncoding.EncodeToString([]byte(p.config.ClientID + ":" + p.config.ClientSecret))
	header := http.Header{}
	header.Set("Authorization", "Basic "+credentials)
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("x-merchant-id", p.config.AccountNumber)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	body, err := p.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    p.config.AuthURL,
		Header: header,
		Body:   form.Encode(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token request failed")
		return "", p.wrapError(err)
	}

	tr, violations := ParseTokenResponse(body)
	if len(violations) > 0 {
		err := shipper.NewValidationError(carrierName, "Invalid token response from "+carrierName, violations)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid token response")
		return "", err
	}

	expiresAt := p.now().Add(time.Duration(tr.ExpiresInSeconds()) * time.Second)

	p.mu.Lock()
	stored := p.generation == gen
	if stored {
		p.token = tr.AccessToken
		p.expiresAt = expiresAt
	}
	p.mu.Unlock()

	if !stored {
		p.logger.Ctx(ctx).Debug("Token invalidated during refresh, not caching")
	}

	span.SetAttributes(attribute.Int64("ups.token.expires_in", tr.ExpiresInSeconds()))
	p.logger.Ctx(ctx).Info("Refreshed UPS access token", zap.Time("expires_at", expiresAt))
	return tr.AccessToken, nil
}

// wrapError turns any transport failure into an AuthenticationError.
// Schema violations keep their own class.
func (p *TokenProvider) wrapError(err error) error {
	var vErr *shipper.ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return shipper.NewAuthenticationError(carrierName, "failed to retrieve access token", err)
}

var _ shipper.AuthProvider = (*TokenProvider)(nil)
