package shipper

import (
	"time"
)

// WeightUnit represents weight measurement unit, using carrier wire codes.
type WeightUnit string

const (
	WeightLBS WeightUnit = "LBS"
	WeightKGS WeightUnit = "KGS"
)

// DimensionUnit represents dimension measurement unit, using carrier wire codes.
type DimensionUnit string

const (
	DimensionIN DimensionUnit = "IN"
	DimensionCM DimensionUnit = "CM"
)

// Address represents a shipping address.
type Address struct {
	Name          string `json:"name"`
	Street1       string `json:"street1"`
	Street2       string `json:"street2,omitempty"`
	City          string `json:"city"`
	StateProvince string `json:"stateProvince"`
	PostalCode    string `json:"postalCode"`
	CountryCode   string `json:"countryCode"` // ISO 3166-1 alpha-2, e.g., "US", "CA"
	IsResidential bool   `json:"isResidential,omitempty"`
}

// Weight is a package weight.
type Weight struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

// Dimensions are the outer package dimensions.
type Dimensions struct {
	Length float64       `json:"length"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Unit   DimensionUnit `json:"unit"`
}

// Package represents a package to be shipped.
type Package struct {
	Weight     Weight     `json:"weight"`
	Dimensions Dimensions `json:"dimensions"`
}

// Money represents a monetary amount.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// RateRequest is the request for getting shipping rates.
type RateRequest struct {
	Origin       Address    `json:"origin"`
	Destination  Address    `json:"destination"`
	Packages     []Package  `json:"packages"`
	ServiceLevel string     `json:"serviceLevel,omitempty"`
	PickupDate   *time.Time `json:"pickupDate,omitempty"`
}

// RateQuote is a single priced service level returned by a carrier.
type RateQuote struct {
	Carrier      string         `json:"carrier"`
	Service      string         `json:"service"`
	ServiceCode  string         `json:"serviceCode"`
	TotalCost    Money          `json:"totalCost"`
	TransitDays  *int           `json:"transitDays,omitempty"`
	DeliveryDate string         `json:"deliveryDate,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// RateResponse is the normalized response from getting rates.
// Quotes keep the carrier's return order.
type RateResponse struct {
	Request   RateRequest `json:"request"`
	Quotes    []RateQuote `json:"quotes"`
	Timestamp time.Time   `json:"timestamp"`
}

// CarrierConfig holds the credentials and endpoints of one carrier.
// It is treated as immutable once a carrier is constructed.
type CarrierConfig struct {
	ClientID      string
	ClientSecret  string
	AccountNumber string
	BaseURL       string
	AuthURL       string
	Extra         map[string]string // Carrier-specific settings
}

// Setting returns an Extra value, or def when it is unset.
func (c CarrierConfig) Setting(key, def string) string {
	if v, ok := c.Extra[key]; ok && v != "" {
		return v
	}
	return def
}
