package ups_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ratebridge/pkg/shipper"
	"github.com/tournevent/ratebridge/pkg/shipper/ups"
)

func TestToWireRequest(t *testing.T) {
	req := validRequest()
	wire := ups.ToWireRequest(req)

	rr := wire.RateRequest
	assert.Equal(t, "Shop", rr.Request.RequestOption)
	assert.Equal(t, rr.Shipment.Shipper, rr.Shipment.ShipFrom)
	assert.Equal(t, []string{"123 Origin St"}, rr.Shipment.Shipper.Address.AddressLine)
	assert.Equal(t, "Timonium", rr.Shipment.ShipTo.Address.City)
	assert.Equal(t, "MD", rr.Shipment.ShipTo.Address.StateProvinceCode)
	assert.Empty(t, rr.Shipment.ShipTo.Address.ResidentialAddressIndicator)

	require.Len(t, rr.Shipment.Package, 1)
	pkg := rr.Shipment.Package[0]
	assert.Equal(t, "02", pkg.PackagingType.Code)
	assert.Equal(t, "10", pkg.PackageWeight.Weight)
	assert.Equal(t, "LBS", pkg.PackageWeight.UnitOfMeasurement.Code)
	require.NotNil(t, pkg.Dimensions)
	assert.Equal(t, "IN", pkg.Dimensions.UnitOfMeasurement.Code)
	assert.Equal(t, "10", pkg.Dimensions.Length)
}

func TestToWireRequest_SerializedNumbersAreStrings(t *testing.T) {
	req := validRequest()
	req.Packages[0].Weight.Value = 2.5

	body, err := json.Marshal(ups.ToWireRequest(req))
	require.NoError(t, err)

	assert.Contains(t, string(body), `"Weight":"2.5"`)
	assert.Contains(t, string(body), `"Length":"10"`)
	assert.Contains(t, string(body), `"RequestOption":"Shop"`)
	assert.NotContains(t, string(body), "ResidentialAddressIndicator")
}

func TestToWireRequest_StreetLinesAndResidential(t *testing.T) {
	req := validRequest()
	req.Destination.Street2 = "Suite 400"
	req.Destination.IsResidential = true

	to := ups.ToWireRequest(req).RateRequest.Shipment.ShipTo.Address
	assert.Equal(t, []string{"456 Dest St", "Suite 400"}, to.AddressLine)
	assert.Equal(t, "Y", to.ResidentialAddressIndicator)
}

func TestToWireRequest_MultiplePackagesKeepOrder(t *testing.T) {
	req := validRequest()
	req.Packages = append(req.Packages, shipper.Package{
		Weight:     shipper.Weight{Value: 3, Unit: shipper.WeightKGS},
		Dimensions: shipper.Dimensions{Length: 20, Width: 15.5, Height: 5, Unit: shipper.DimensionCM},
	})

	pkgs := ups.ToWireRequest(req).RateRequest.Shipment.Package
	require.Len(t, pkgs, 2)
	assert.Equal(t, "10", pkgs[0].PackageWeight.Weight)
	assert.Equal(t, "3", pkgs[1].PackageWeight.Weight)
	assert.Equal(t, "KGS", pkgs[1].PackageWeight.UnitOfMeasurement.Code)
	assert.Equal(t, "15.5", pkgs[1].Dimensions.Width)
}

func TestToDomainResponse(t *testing.T) {
	wire, violations := ups.ParseRateResponse(fixture(t, "rate_response.json"))
	require.Empty(t, violations)

	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	req := validRequest()
	resp := ups.ToDomainResponse(wire, *req, now)

	assert.Equal(t, *req, resp.Request)
	assert.Equal(t, now, resp.Timestamp)
	require.Len(t, resp.Quotes, 2)

	ground := resp.Quotes[0]
	assert.Equal(t, "UPS", ground.Carrier)
	assert.Equal(t, "UPS Ground", ground.Service)
	assert.Equal(t, "03", ground.ServiceCode)
	assert.Equal(t, shipper.Money{Amount: 15.00, Currency: "USD"}, ground.TotalCost)
	require.NotNil(t, ground.TransitDays)
	assert.Equal(t, 3, *ground.TransitDays)
	assert.Equal(t, []string{"110971: Your invoice may vary from the displayed reference rates"}, ground.Meta["alerts"])

	second := resp.Quotes[1]
	assert.Equal(t, "02", second.ServiceCode)
	assert.InDelta(t, 32.50, second.TotalCost.Amount, 0.0001)
	assert.Equal(t, "11:00 P.M.", second.Meta["deliveryByTime"])
	assert.NotContains(t, second.Meta, "alerts")
}

func TestToDomainResponse_OptionalFields(t *testing.T) {
	wire := &ups.RateResponseEnvelope{
		RateResponse: ups.WireRateResponse{
			RatedShipment: []ups.RatedShipment{
				{
					Service:      ups.CodeDescription{Code: "14"},
					TotalCharges: ups.Charges{CurrencyCode: "CAD", MonetaryValue: "-1.25"},
				},
				{
					Service:            ups.CodeDescription{Code: "12", Description: "UPS 3 Day Select"},
					TotalCharges:       ups.Charges{CurrencyCode: "USD", MonetaryValue: "20"},
					GuaranteedDelivery: &ups.GuaranteedDelivery{DeliveryByTime: "End of Day"},
				},
			},
		},
	}

	resp := ups.ToDomainResponse(wire, *validRequest(), time.Now())
	require.Len(t, resp.Quotes, 2)

	assert.Equal(t, "UPS Service", resp.Quotes[0].Service)
	assert.Equal(t, -1.25, resp.Quotes[0].TotalCost.Amount)
	assert.Nil(t, resp.Quotes[0].TransitDays)
	assert.Nil(t, resp.Quotes[0].Meta)

	assert.Nil(t, resp.Quotes[1].TransitDays)
	assert.Equal(t, "End of Day", resp.Quotes[1].Meta["deliveryByTime"])
}

func TestToDomainResponse_SingleAndListAgree(t *testing.T) {
	now := time.Now()
	req := *validRequest()

	single, violations := ups.ParseRateResponse(fixture(t, "rate_response_single.json"))
	require.Empty(t, violations)
	list, violations := ups.ParseRateResponse(fixture(t, "rate_response.json"))
	require.Empty(t, violations)

	fromSingle := ups.ToDomainResponse(single, req, now)
	fromList := ups.ToDomainResponse(list, req, now)

	require.Len(t, fromSingle.Quotes, 1)
	assert.Equal(t, fromList.Quotes[0].Service, fromSingle.Quotes[0].Service)
	assert.Equal(t, fromList.Quotes[0].TotalCost, fromSingle.Quotes[0].TotalCost)
	assert.Equal(t, fromList.Quotes[0].TransitDays, fromSingle.Quotes[0].TransitDays)
}

func TestToDomainResponse_EmptyShipments(t *testing.T) {
	resp := ups.ToDomainResponse(&ups.RateResponseEnvelope{}, *validRequest(), time.Now())
	assert.NotNil(t, resp.Quotes)
	assert.Empty(t, resp.Quotes)
}
