package shipper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/mock"
)

func TestRegistry_Register(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	registry.Register(mock.New("test-carrier"))

	got, err := registry.Get("test-carrier")
	require.NoError(t, err, "carrier should be registered")
	assert.Equal(t, "test-carrier", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	first := mock.New("test-carrier")
	second := mock.New("test-carrier")
	registry.Register(first)
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(second)
	assert.Equal(t, 1, registry.Count())

	got, err := registry.Get("test-carrier")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered carrier")
	assert.True(t, errors.Is(err, shipper.ErrCarrierNotFound))
}

func TestRegistry_AllAndNames(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("fedex"))
	registry.Register(mock.New("dhl"))

	assert.Len(t, registry.All(), 3)
	assert.Equal(t, []string{"dhl", "fedex", "ups"}, registry.Names())
	assert.Equal(t, "dhl", registry.All()[0].Name())
}

func TestRegistry_Count(t *testing.T) {
	registry := shipper.NewRegistry(nil)
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("carrier-a"))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("carrier-b"))
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_GetAllRates(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("fedex"))

	results, err := registry.GetAllRates(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, results, 2, "should have results from both carriers")

	assert.Equal(t, "fedex", results[0].Carrier)
	assert.Equal(t, "ups", results[1].Carrier)
	for _, result := range results {
		assert.NoError(t, result.Err)
		require.NotNil(t, result.Response)
		assert.NotEmpty(t, result.Response.Quotes)
	}
}

func TestRegistry_GetAllRates_Empty(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	results, err := registry.GetAllRates(context.Background(), validRequest())

	assert.Empty(t, results, "should return empty results for empty registry")
	assert.ErrorIs(t, err, shipper.ErrCarrierNotFound)
}

func TestRegistry_GetAllRates_PartialFailure(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	registry.Register(mock.New("fedex"))
	registry.Register(mock.NewFailing("ups", shipper.NewRateLimitError("ups", "10")))

	results, err := registry.GetAllRates(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Response)

	assert.Nil(t, results[1].Response)
	var rateErr *shipper.RateLimitError
	require.ErrorAs(t, results[1].Err, &rateErr)
	assert.Equal(t, "10", rateErr.RetryAfter)
}

func TestRegistry_GetRatesFromCarriers_Subset(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	ups := mock.New("ups")
	fedex := mock.New("fedex")
	dhl := mock.New("dhl")
	registry.Register(ups)
	registry.Register(fedex)
	registry.Register(dhl)

	// Only request rates from 2 carriers
	results, err := registry.GetRatesFromCarriers(context.Background(), validRequest(), []string{"ups", "dhl"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	assert.Equal(t, 1, ups.Calls())
	assert.Equal(t, 1, dhl.Calls())
	assert.Equal(t, 0, fedex.Calls())
}

func TestRegistry_GetRatesFromCarriers_EmptyCarriers(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("fedex"))

	// Empty carriers list should get all rates
	results, err := registry.GetRatesFromCarriers(context.Background(), validRequest(), nil)
	require.NoError(t, err)
	assert.Len(t, results, 2, "should get rates from all carriers when empty list")
}

func TestRegistry_GetRatesFromCarriers_NotFound(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	registry.Register(mock.New("ups"))

	results, err := registry.GetRatesFromCarriers(context.Background(), validRequest(), []string{"nonexistent"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "nonexistent", results[0].Carrier)
	assert.True(t, errors.Is(results[0].Err, shipper.ErrCarrierNotFound))
}

func TestRegistry_GetRatesFromCarriers_RunsInParallel(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	for _, name := range []string{"a", "b", "c"} {
		c := mock.New(name)
		c.Delay = 100 * time.Millisecond
		registry.Register(c)
	}

	start := time.Now()
	results, err := registry.GetAllRates(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestRegistry_GetRatesFromCarriers_MeasuresEachCarrier(t *testing.T) {
	registry := shipper.NewRegistry(nil)

	slow := mock.New("slow")
	slow.Delay = 150 * time.Millisecond
	registry.Register(slow)
	registry.Register(mock.New("fast"))

	results, err := registry.GetAllRates(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "fast", results[0].Carrier)
	assert.Less(t, results[0].Duration, 100*time.Millisecond)
	assert.Equal(t, "slow", results[1].Carrier)
	assert.GreaterOrEqual(t, results[1].Duration, 150*time.Millisecond)
}
