package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ratebridge/internal/server"
	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/mock"
	"github.com/tournevent/ratebridge/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, cfg server.Config) http.Handler {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	registry := shipper.NewRegistry(logger)
	registry.Register(ups.New(ups.Config{UseMock: true}, logger, nil))
	registry.Register(mock.New("test-carrier"))

	return server.New(cfg, registry, logger).Handler()
}

func postGraphQL(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, server.Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_RequestID(t *testing.T) {
	h := newTestServer(t, server.Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(server.RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(server.RequestIDHeader))
}

func TestServer_GraphQL_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, server.Config{})

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	errors, ok := decode(t, rec)["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errors, 1)
}

func TestServer_GraphQL_InvalidJSON(t *testing.T) {
	h := newTestServer(t, server.Config{})

	rec := postGraphQL(t, h, "invalid json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GraphQL_HealthQuery(t *testing.T) {
	h := newTestServer(t, server.Config{})

	rec := postGraphQL(t, h, `{"query": "query { health carriers }"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	data, ok := decode(t, rec)["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ok", data["health"])
	assert.Equal(t, []interface{}{"UPS", "test-carrier"}, data["carriers"])
}

func TestServer_GraphQL_UnknownField(t *testing.T) {
	h := newTestServer(t, server.Config{})

	rec := postGraphQL(t, h, `{"query": "{ shipments }"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["errors"])
}

func TestServer_GraphQL_Rates(t *testing.T) {
	h := newTestServer(t, server.Config{})

	body := `{
  "query": "query R($input: RateRequestInput!) { rates(input: $input, carriers: [\"UPS\"]) { quotes { service totalCost { amount } } errors { code } } }",
  "variables": {"input": {
    "origin": {"name": "A", "street1": "1 Main", "city": "Timonium", "stateProvince": "MD", "postalCode": "21093", "countryCode": "US"},
    "destination": {"name": "B", "street1": "2 Main", "city": "Atlanta", "stateProvince": "GA", "postalCode": "30328", "countryCode": "US"},
    "packages": [{"weight": 10, "weightUnit": "LBS", "length": 10, "width": 10, "height": 10, "dimensionUnit": "IN"}]
  }}
}`
	rec := postGraphQL(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	assert.Nil(t, resp["errors"])

	rates := resp["data"].(map[string]interface{})["rates"].(map[string]interface{})
	quotes := rates["quotes"].([]interface{})
	require.Len(t, quotes, 3)
	first := quotes[0].(map[string]interface{})
	assert.Equal(t, "UPS Ground", first["service"])
	assert.Equal(t, 25.0, first["totalCost"].(map[string]interface{})["amount"])
	assert.Empty(t, rates["errors"])
}

func TestServer_Metrics(t *testing.T) {
	h := newTestServer(t, server.Config{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_RateLimit(t *testing.T) {
	h := newTestServer(t, server.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})

	first := postGraphQL(t, h, `{"query": "{ health }"}`)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postGraphQL(t, h, `{"query": "{ health }"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// Health is not rate limited.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_New_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		newTestServer(t, server.Config{})
		newTestServer(t, server.Config{})
	})
}
