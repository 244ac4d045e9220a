package ups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/transport"
)

const kgToLb = 2.20462

// MockTransport is a transport.Doer answering the UPS token and Shop
// endpoints without network access.
type MockTransport struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnToken func(ctx context.Context, req *transport.Request) ([]byte, error)
	OnRate  func(ctx context.Context, req *transport.Request) ([]byte, error)

	mu         sync.Mutex
	tokenCalls int
	rateCalls  int
	requests   []*transport.Request
}

// NewMockTransport creates a new mock transport with default behavior.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Do routes the request to the token or rate handler.
func (m *MockTransport) Do(ctx context.Context, req *transport.Request) ([]byte, error) {
	if m.SimulateLatency > 0 {
		select {
		case <-ctx.Done():
			return nil, shipper.NewNetworkError(carrierName, "no response received", ctx.Err())
		case <-time.After(m.SimulateLatency):
		}
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	switch {
	case strings.Contains(req.URL, "oauth"):
		m.mu.Lock()
		m.tokenCalls++
		m.mu.Unlock()
		if m.OnToken != nil {
			return m.OnToken(ctx, req)
		}
		if m.SimulateErrors {
			return nil, shipper.NewAPIError(carrierName, http.StatusUnauthorized, `{"response":{"errors":[{"code":"250002","message":"Invalid Authentication Information."}]}}`)
		}
		return []byte(`{"access_token":"mock_token","expires_in":"14399","token_type":"Bearer","status":"approved"}`), nil

	case strings.Contains(req.URL, "/rating/"):
		m.mu.Lock()
		m.rateCalls++
		m.mu.Unlock()
		if m.OnRate != nil {
			return m.OnRate(ctx, req)
		}
		if m.SimulateErrors {
			return nil, shipper.NewAPIError(carrierName, http.StatusInternalServerError, `{"response":{"errors":[{"code":"999","message":"Simulated API error"}]}}`)
		}
		return mockRates(req)
	}

	return nil, shipper.NewAPIError(carrierName, http.StatusNotFound, "unknown mock endpoint: "+req.URL)
}

// TokenCalls returns the number of token endpoint calls.
func (m *MockTransport) TokenCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenCalls
}

// RateCalls returns the number of rate endpoint calls.
func (m *MockTransport) RateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rateCalls
}

// Requests returns every request seen so far.
func (m *MockTransport) Requests() []*transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*transport.Request(nil), m.requests...)
}

// mockRates prices three services from the weight of the first package:
// Ground $5 + $2/lb, 2nd Day Air $15 + $5/lb, Next Day Air $30 + $10/lb.
func mockRates(req *transport.Request) ([]byte, error) {
	weight := 5.0
	if env, ok := req.Body.(*RateRequestEnvelope); ok && len(env.RateRequest.Shipment.Package) > 0 {
		pw := env.RateRequest.Shipment.Package[0].PackageWeight
		if w, err := strconv.ParseFloat(pw.Weight, 64); err == nil {
			weight = w
			if pw.UnitOfMeasurement.Code == string(shipper.WeightKGS) {
				weight = w * kgToLb
			}
		}
	}

	shipment := func(code, name string, base, perLb float64, days int) map[string]any {
		return map[string]any{
			"Service":            map[string]any{"Code": code, "Description": name},
			"TotalCharges":       map[string]any{"CurrencyCode": "USD", "MonetaryValue": fmt.Sprintf("%.2f", base+weight*perLb)},
			"GuaranteedDelivery": map[string]any{"BusinessDaysInTransit": strconv.Itoa(days)},
		}
	}

	return json.Marshal(map[string]any{
		"RateResponse": map[string]any{
			"Response": map[string]any{
				"ResponseStatus": map[string]any{"Code": "1", "Description": "Success"},
			},
			"RatedShipment": []any{
				shipment("03", "UPS Ground", 5, 2, 5),
				shipment("02", "UPS 2nd Day Air", 15, 5, 2),
				shipment("01", "UPS Next Day Air", 30, 10, 1),
			},
		},
	})
}

var _ transport.Doer = (*MockTransport)(nil)
