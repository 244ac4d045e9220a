package ups

import (
	"strconv"
	"strings"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipper"
)

const (
	requestOptionShop    = "Shop"
	packagingTypeDefault = "02" // Customer supplied package
	residentialIndicator = "Y"
)

// ToWireRequest maps a domain rate request to a UPS Shop request.
// Shipper and ShipFrom are both the origin.
func ToWireRequest(req *shipper.RateRequest) *RateRequestEnvelope {
	packages := make([]Package, len(req.Packages))
	for i, pkg := range req.Packages {
		packages[i] = toWirePackage(pkg)
	}

	return &RateRequestEnvelope{
		RateRequest: WireRateRequest{
			Request: RequestInfo{
				RequestOption: requestOptionShop,
			},
			Shipment: Shipment{
				Shipper:  toWireParty(req.Origin),
				ShipFrom: toWireParty(req.Origin),
				ShipTo:   toWireParty(req.Destination),
				Package:  packages,
			},
		},
	}
}

// ToDomainResponse maps a normalized UPS response to the domain response.
// Quote order follows RatedShipment order.
func ToDomainResponse(resp *RateResponseEnvelope, original shipper.RateRequest, now time.Time) *shipper.RateResponse {
	shipments := resp.RateResponse.RatedShipment
	quotes := make([]shipper.RateQuote, len(shipments))
	for i, s := range shipments {
		quotes[i] = toDomainQuote(s)
	}

	return &shipper.RateResponse{
		Request:   original,
		Quotes:    quotes,
		Timestamp: now,
	}
}

// ============================================================================
// Conversion helpers
// ============================================================================

func toWireParty(addr shipper.Address) Party {
	return Party{
		Name:    addr.Name,
		Address: toWireAddress(addr),
	}
}

func toWireAddress(addr shipper.Address) Address {
	lines := []string{addr.Street1}
	if addr.Street2 != "" {
		lines = append(lines, addr.Street2)
	}

	wire := Address{
		AddressLine:       lines,
		City:              addr.City,
		StateProvinceCode: addr.StateProvince,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.CountryCode,
	}
	if addr.IsResidential {
		wire.ResidentialAddressIndicator = residentialIndicator
	}
	return wire
}

func toWirePackage(pkg shipper.Package) Package {
	return Package{
		PackagingType: CodeDescription{Code: packagingTypeDefault},
		Dimensions: &Dimensions{
			UnitOfMeasurement: CodeDescription{Code: string(pkg.Dimensions.Unit)},
			Length:            formatDecimal(pkg.Dimensions.Length),
			Width:             formatDecimal(pkg.Dimensions.Width),
			Height:            formatDecimal(pkg.Dimensions.Height),
		},
		PackageWeight: PackageWeight{
			UnitOfMeasurement: CodeDescription{Code: string(pkg.Weight.Unit)},
			Weight:            formatDecimal(pkg.Weight.Value),
		},
	}
}

func toDomainQuote(s RatedShipment) shipper.RateQuote {
	service := s.Service.Description
	if strings.TrimSpace(service) == "" {
		service = fallbackServiceName
	}

	amount, _ := strconv.ParseFloat(s.TotalCharges.MonetaryValue, 64)

	quote := shipper.RateQuote{
		Carrier:     carrierName,
		Service:     service,
		ServiceCode: s.Service.Code,
		TotalCost: shipper.Money{
			Amount:   amount,
			Currency: s.TotalCharges.CurrencyCode,
		},
	}

	if gd := s.GuaranteedDelivery; gd != nil {
		if gd.BusinessDaysInTransit != "" {
			if days, err := strconv.Atoi(gd.BusinessDaysInTransit); err == nil {
				quote.TransitDays = &days
			}
		}
		if gd.DeliveryByTime != "" {
			quote.Meta = withMeta(quote.Meta, "deliveryByTime", gd.DeliveryByTime)
		}
	}

	if len(s.RatedShipmentAlert) > 0 {
		alerts := make([]string, len(s.RatedShipmentAlert))
		for i, a := range s.RatedShipmentAlert {
			alerts[i] = a.Code + ": " + a.Description
		}
		quote.Meta = withMeta(quote.Meta, "alerts", alerts)
	}

	return quote
}

func withMeta(meta map[string]any, key string, value any) map[string]any {
	if meta == nil {
		meta = make(map[string]any)
	}
	meta[key] = value
	return meta
}

// formatDecimal renders the shortest decimal form: 10 -> "10", 10.5 -> "10.5".
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
