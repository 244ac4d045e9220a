// Package transport is the HTTP collaborator used by carrier clients. It
// owns the base URL and timeout and classifies failures into the shipper
// error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
)

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 10 << 20

// Doer performs a carrier HTTP call and returns the raw response body.
type Doer interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
}

// Request describes one carrier call.
type Request struct {
	Method string
	// URL is either a path joined to the base URL or an absolute URL.
	URL    string
	Header http.Header
	// Body is sent as-is when it is []byte or string, otherwise JSON encoded.
	Body any
}

// Config holds configuration for the HTTP client.
type Config struct {
	Carrier    string
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client is the production Doer.
type Client struct {
	carrier    string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates a new HTTP client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ratebridge/1.0"
	}

	return &Client{
		carrier:    cfg.Carrier,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// Do performs the request. Failures are returned as *shipper.NetworkError,
// *shipper.RateLimitError, *shipper.APIError, or *shipper.CarrierError with
// code UNKNOWN_ERROR. Bodies larger than MaxResponseBytes are rejected.
func (c *Client) Do(ctx context.Context, req *Request) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, shipper.NewCarrierError(c.carrier, shipper.CodeUnknown, "an unknown error occurred").WithCause(err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, shipper.NewNetworkError(c.carrier, "no response received", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, shipper.NewNetworkError(c.carrier, "failed to read response body", err)
	}
	if len(body) > MaxResponseBytes {
		return nil, shipper.NewCarrierError(c.carrier, shipper.CodeUnknown,
			fmt.Sprintf("response body exceeds %d bytes", MaxResponseBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.classify(resp, body)
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, req *Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	contentType := ""
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		bodyReader = bytes.NewReader(b)
	case string:
		bodyReader = strings.NewReader(b)
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.URL), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	return httpReq, nil
}

func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if target != "" && !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

func (c *Client) classify(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return shipper.NewRateLimitError(c.carrier, resp.Header.Get("Retry-After"))
	}
	return shipper.NewAPIError(c.carrier, resp.StatusCode, string(body))
}

var _ Doer = (*Client)(nil)
