package shipper_test

import "github.com/tournevent/ratebridge/pkg/shipper"

func validRequest() *shipper.RateRequest {
	return &shipper.RateRequest{
		Origin: shipper.Address{
			Name:          "Sender",
			Street1:       "123 Main St",
			City:          "Timonium",
			StateProvince: "MD",
			PostalCode:    "21093",
			CountryCode:   "US",
		},
		Destination: shipper.Address{
			Name:          "Receiver",
			Street1:       "456 Oak Ave",
			City:          "Atlanta",
			StateProvince: "GA",
			PostalCode:    "30328",
			CountryCode:   "US",
		},
		Packages: []shipper.Package{
			{
				Weight:     shipper.Weight{Value: 5, Unit: shipper.WeightLBS},
				Dimensions: shipper.Dimensions{Length: 10, Width: 10, Height: 10, Unit: shipper.DimensionIN},
			},
		},
	}
}
