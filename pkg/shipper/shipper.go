// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// Carrier defines the interface that all shipping carriers must implement.
type Carrier interface {
	// Name returns the carrier identifier (e.g., "UPS").
	Name() string

	// GetRates returns shop-all-services rate quotes for a shipment.
	GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error)
}

// AuthProvider supplies bearer tokens for carrier API calls.
type AuthProvider interface {
	// AccessToken returns a usable token, refreshing it when stale.
	AccessToken(ctx context.Context) (string, error)

	// InvalidateToken forces the next AccessToken call to refresh.
	InvalidateToken()
}
