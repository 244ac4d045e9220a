package ups_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tournevent/ratebridge/pkg/shipper"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func validRequest() *shipper.RateRequest {
	return &shipper.RateRequest{
		Origin: shipper.Address{
			Name:          "John Doe",
			Street1:       "123 Origin St",
			City:          "Timonium",
			StateProvince: "MD",
			PostalCode:    "21093",
			CountryCode:   "US",
		},
		Destination: shipper.Address{
			Name:          "Jane Doe",
			Street1:       "456 Dest St",
			City:          "Timonium",
			StateProvince: "MD",
			PostalCode:    "21093",
			CountryCode:   "US",
		},
		Packages: []shipper.Package{
			{
				Weight:     shipper.Weight{Value: 10, Unit: shipper.WeightLBS},
				Dimensions: shipper.Dimensions{Length: 10, Width: 10, Height: 10, Unit: shipper.DimensionIN},
			},
		},
	}
}
