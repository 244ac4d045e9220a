// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
)

// Client is a mock carrier for testing.
type Client struct {
	name string

	// Err, when set, is returned from GetRates instead of quotes.
	Err error
	// Delay blocks GetRates until it elapses or the context is done.
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name}
}

// NewFailing creates a mock carrier whose GetRates always returns err.
func NewFailing(name string, err error) *Client {
	return &Client{name: name, Err: err}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Calls returns how many times GetRates was invoked.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// GetRates returns two fixed quotes.
func (c *Client) GetRates(ctx context.Context, req *shipper.RateRequest) (*shipper.RateResponse, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, shipper.NewNetworkError(c.name, "no response received", ctx.Err())
		case <-time.After(c.Delay):
		}
	}

	if c.Err != nil {
		return nil, c.Err
	}
	if violations := shipper.ValidateRateRequest(req); len(violations) > 0 {
		return nil, shipper.NewValidationError(c.name, "Invalid rate request", violations)
	}

	standardDays, expressDays := 5, 2
	return &shipper.RateResponse{
		Request: *req,
		Quotes: []shipper.RateQuote{
			{
				Carrier:     c.name,
				Service:     c.name + " Standard",
				ServiceCode: "STANDARD",
				TotalCost:   shipper.Money{Amount: 15.82, Currency: "USD"},
				TransitDays: &standardDays,
			},
			{
				Carrier:     c.name,
				Service:     c.name + " Express",
				ServiceCode: "EXPRESS",
				TotalCost:   shipper.Money{Amount: 29.95, Currency: "USD"},
				TransitDays: &expressDays,
			},
		},
		Timestamp: time.Now(),
	}, nil
}

var _ shipper.Carrier = (*Client)(nil)
