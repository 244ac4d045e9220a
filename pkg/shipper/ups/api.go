package ups

// ============================================================================
// Rating API wire types (match the UPS JSON Rating API structure)
// ============================================================================

// CodeDescription is the UPS code/description pair used across the API.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// RateRequestEnvelope is the body of POST /rating/v1/Shop.
type RateRequestEnvelope struct {
	RateRequest WireRateRequest `json:"RateRequest"`
}

// WireRateRequest is the UPS rate request.
type WireRateRequest struct {
	Request  RequestInfo `json:"Request"`
	Shipment Shipment    `json:"Shipment"`
}

// RequestInfo carries the request option ("Shop" for all services).
type RequestInfo struct {
	RequestOption        string                `json:"RequestOption"`
	TransactionReference *TransactionReference `json:"TransactionReference,omitempty"`
}

// TransactionReference is echoed back by UPS.
type TransactionReference struct {
	CustomerContext string `json:"CustomerContext"`
}

// Shipment describes who ships what to whom.
type Shipment struct {
	Shipper  Party            `json:"Shipper"`
	ShipTo   Party            `json:"ShipTo"`
	ShipFrom Party            `json:"ShipFrom"`
	Package  []Package        `json:"Package"`
	Service  *CodeDescription `json:"Service,omitempty"`
}

// Party is a named address.
type Party struct {
	Name    string  `json:"Name"`
	Address Address `json:"Address"`
}

// Address is a UPS address.
type Address struct {
	AddressLine                 []string `json:"AddressLine"`
	City                        string   `json:"City"`
	StateProvinceCode           string   `json:"StateProvinceCode"`
	PostalCode                  string   `json:"PostalCode"`
	CountryCode                 string   `json:"CountryCode"`
	ResidentialAddressIndicator string   `json:"ResidentialAddressIndicator,omitempty"`
}

// Package is a UPS package. Numeric values are decimal strings.
type Package struct {
	PackagingType CodeDescription `json:"PackagingType"`
	Dimensions    *Dimensions     `json:"Dimensions,omitempty"`
	PackageWeight PackageWeight   `json:"PackageWeight"`
}

// Dimensions are package dimensions.
type Dimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// PackageWeight is a package weight.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// RateResponseEnvelope is the normalized body returned by the Shop call.
type RateResponseEnvelope struct {
	RateResponse WireRateResponse `json:"RateResponse"`
}

// WireRateResponse always holds a list of rated shipments after normalization.
type WireRateResponse struct {
	Response      ResponseInfo    `json:"Response"`
	RatedShipment []RatedShipment `json:"RatedShipment"`
}

// ResponseInfo carries the response status and top-level alerts.
type ResponseInfo struct {
	ResponseStatus *CodeDescription  `json:"ResponseStatus"`
	Alert          []CodeDescription `json:"Alert,omitempty"`
}

// RatedShipment is one priced service.
type RatedShipment struct {
	Service            CodeDescription     `json:"Service"`
	RatedShipmentAlert []CodeDescription   `json:"RatedShipmentAlert,omitempty"`
	TotalCharges       Charges             `json:"TotalCharges"`
	GuaranteedDelivery *GuaranteedDelivery `json:"GuaranteedDelivery,omitempty"`
}

// Charges is a monetary amount as returned by UPS.
type Charges struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// GuaranteedDelivery holds optional delivery commitments.
type GuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit,omitempty"`
	DeliveryByTime        string `json:"DeliveryByTime,omitempty"`
}

// ============================================================================
// OAuth wire types
// ============================================================================

// TokenResponse is the body returned by the OAuth token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"` // Decimal seconds, e.g. "14399"
	TokenType   string `json:"token_type"`
	Status      string `json:"status,omitempty"`
	IssuedAt    string `json:"issued_at,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
}
